package dto

// Media Upload DTOs
type MediaUploadResponse struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
}

type UploadExpressionResponse struct {
	Expression ExpressionResponse  `json:"expression"`
	Upload     MediaUploadResponse `json:"upload"`
}
