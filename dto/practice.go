package dto

// ==================== PRACTICE SESSION DTOs ====================

type StartPracticeRequest struct {
	ItemCount int `json:"item_count,omitempty" validate:"omitempty,gt=0,max=20" example:"5"`
}

func (s StartPracticeRequest) Validate() error {
	return GetValidator().Struct(s)
}

type StartPracticeResponse struct {
	SessionID  string `json:"session_id"`
	Feature    string `json:"feature"`
	TotalItems int    `json:"total_items"`
}

// CurrentItemResponse never carries answer-bearing fields; Content is the
// image URL for the expression quiz and the scenario text otherwise.
type CurrentItemResponse struct {
	Done         bool   `json:"done"`
	CurrentIndex int    `json:"current_index,omitempty"`
	TotalItems   int    `json:"total_items,omitempty"`
	Content      string `json:"content,omitempty"`
}

type SubmitAnswerRequest struct {
	Answer string `json:"answer" validate:"required" example:"laughing"`
}

func (s SubmitAnswerRequest) Validate() error {
	return GetValidator().Struct(s)
}

type SubmitAnswerResponse struct {
	Done          bool   `json:"done"`
	Correct       bool   `json:"correct"`
	Attempts      int    `json:"attempts"`
	CurrentIndex  int    `json:"current_index"`
	TotalItems    int    `json:"total_items"`
	Points        int    `json:"points"`
	PointsAwarded int    `json:"points_awarded"`
	Feedback      string `json:"feedback,omitempty"`
}

type ClosePracticeResponse struct {
	AlreadyClosed bool   `json:"already_closed"`
	Points        int    `json:"points"`
	FinalSummary  string `json:"final_summary"`
}
