package dto

import "time"

// ==================== DIALOGUE SESSION DTOs ====================

type StartDialogueResponse struct {
	SessionID string        `json:"session_id"`
	Resumed   bool          `json:"resumed"`
	Messages  []ChatMessage `json:"messages,omitempty"`
}

type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type DialogueMessageRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	Message   string `json:"message" validate:"required,max=4000"`
}

func (d DialogueMessageRequest) Validate() error {
	return GetValidator().Struct(d)
}

type DialogueMessageResponse struct {
	SessionID string                 `json:"session_id"`
	Reply     string                 `json:"reply"`
	Progress  *SkillProgressResponse `json:"skill_progress,omitempty"`
}

type CloseDialogueRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

func (c CloseDialogueRequest) Validate() error {
	return GetValidator().Struct(c)
}

type CloseDialogueResponse struct {
	Report string `json:"report"`
}

type DialogueReportResponse struct {
	SessionID string        `json:"session_id"`
	Feature   string        `json:"feature"`
	Report    string        `json:"report"`
	Messages  []ChatMessage `json:"messages"`
	ClosedAt  *time.Time    `json:"closed_at"`
}
