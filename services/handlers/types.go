package handlers

import (
	gocontext "context"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/spectrum-bridge/spectrum_api/dto"
)

type AuthServiceInterface interface {
	Register(req dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(req dto.LoginRequest, clientIP string) (*dto.LoginResponse, error)
	RequiredAuth() fiber.Handler
	RequireRole(roles ...string) fiber.Handler
}

type UserServiceInterface interface {
	GetProfile(userID string) (*dto.UserProfileResponse, error)
	UpdateProfile(userID string, req dto.UpdateProfileRequest) (*dto.UserProfileResponse, error)
	LinkRelatedUser(userID string, req dto.LinkRelatedUserRequest) error
}

type PracticeServiceInterface interface {
	StartSession(ctx gocontext.Context, userID, feature string, req dto.StartPracticeRequest) (*dto.StartPracticeResponse, error)
	GetCurrentItem(userID, sessionID string) (*dto.CurrentItemResponse, error)
	SubmitAnswer(ctx gocontext.Context, userID, sessionID string, req dto.SubmitAnswerRequest) (*dto.SubmitAnswerResponse, error)
	CloseSession(ctx gocontext.Context, userID, sessionID string) (*dto.ClosePracticeResponse, error)
}

type DialogueServiceInterface interface {
	StartConversation(userID, scenarioID string, restart bool) (*dto.StartDialogueResponse, error)
	StartTherapy(userID string) (*dto.StartDialogueResponse, error)
	SendMessage(ctx gocontext.Context, userID string, req dto.DialogueMessageRequest) (*dto.DialogueMessageResponse, error)
	CloseDialogue(ctx gocontext.Context, userID, sessionID string) (*dto.CloseDialogueResponse, error)
	GetReports(requesterID, requesterRole, targetUserID, feature string) ([]dto.DialogueReportResponse, error)
}

type ContentServiceInterface interface {
	GetExpressions() (*dto.ExpressionCollectionResponse, error)
	GetScenarios() (*dto.ScenarioCollectionResponse, error)
	GetScenario(scenarioID string) (*dto.ScenarioResponse, error)
	GetSkillProgress(userID, scenarioID string) (*dto.SkillProgressResponse, error)
	UpdateSkillProgress(userID, scenarioID string, req dto.UpdateSkillProgressRequest) (*dto.SkillProgressResponse, error)
}

type MediaServiceInterface interface {
	UploadExpression(label string, file *multipart.FileHeader) (*dto.UploadExpressionResponse, error)
}
