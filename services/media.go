package services

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	"github.com/spectrum-bridge/spectrum_api/dto"
	"github.com/spectrum-bridge/spectrum_api/model"
	"github.com/spectrum-bridge/spectrum_api/shared"
	log "github.com/sirupsen/logrus"
)

// MediaService stores uploaded expression images in object storage and
// registers them in the expression corpus.
type MediaService struct {
	context.DefaultService

	sqlSvc   *PostgresService
	minioSvc *MinIOService
	baseURL  string
}

const MEDIA_SVC = "media_svc"

func (svc MediaService) Id() string {
	return MEDIA_SVC
}

func (svc *MediaService) Configure(ctx *context.Context) error {
	svc.baseURL = os.Getenv("BASE_URL")
	if svc.baseURL == "" {
		svc.baseURL = "http://localhost:8000"
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *MediaService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.minioSvc = svc.Service(MINIO_SVC).(*MinIOService)
	return nil
}

// UploadExpression uploads an expression image and creates its corpus
// entry. The label is what the quiz accepts as the correct answer.
func (svc *MediaService) UploadExpression(label string, file *multipart.FileHeader) (*dto.UploadExpressionResponse, error) {
	label = strings.TrimSpace(strings.ToLower(label))
	if label == "" {
		return nil, shared.NewBadRequestError(nil, "Expression label is required")
	}

	if !svc.isValidImageFile(file.Filename) {
		return nil, shared.NewBadRequestError(nil, "Invalid image file format. Supported: JPG, PNG, WEBP")
	}

	if file.Size > 5*1024*1024 {
		return nil, shared.NewBadRequestError(nil, "Image file too large. Maximum size: 5MB")
	}

	upload, objectName, err := svc.uploadFile(file, label)
	if err != nil {
		return nil, err
	}

	expression := &model.Expression{
		Label:    label,
		ImageURL: upload.URL,
	}

	created, err := svc.sqlSvc.CreateExpression(expression)
	if err != nil {
		// Clean up the object if the corpus entry cannot be written
		svc.minioSvc.DeleteFile(objectName)
		return nil, shared.NewInternalError(err, "Failed to save expression")
	}

	return &dto.UploadExpressionResponse{
		Expression: dto.ExpressionResponse{
			ID:       created.ID,
			Label:    created.Label,
			ImageURL: created.ImageURL,
		},
		Upload: *upload,
	}, nil
}

func (svc *MediaService) uploadFile(file *multipart.FileHeader, label string) (*dto.MediaUploadResponse, string, error) {
	ext := filepath.Ext(file.Filename)
	fileName := fmt.Sprintf("%s_%d%s", label, time.Now().Unix(), ext)
	objectName := fmt.Sprintf("expressions/%s", fileName)

	src, err := file.Open()
	if err != nil {
		return nil, "", shared.NewInternalError(err, "Failed to open uploaded file")
	}
	defer src.Close()

	uploadInfo, err := svc.minioSvc.UploadFile(objectName, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		return nil, "", shared.NewInternalError(err, "Failed to upload file to storage")
	}

	fileURL, err := svc.minioSvc.GetFileURL(objectName, 24*time.Hour)
	if err != nil {
		log.Printf("Failed to generate presigned URL: %v", err)
		fileURL = fmt.Sprintf("%s/%s/%s", svc.baseURL, svc.minioSvc.GetBucketName(), objectName)
	}

	id, _ := uuid.NewV7()

	log.Printf("Successfully uploaded file %s to MinIO: %s", fileName, uploadInfo.Key)

	return &dto.MediaUploadResponse{
		ID:       id.String(),
		URL:      fileURL,
		FileName: fileName,
		FileSize: file.Size,
	}, objectName, nil
}

func (svc *MediaService) isValidImageFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	validExts := []string{".jpg", ".jpeg", ".png", ".webp", ".gif"}

	for _, validExt := range validExts {
		if ext == validExt {
			return true
		}
	}
	return false
}
