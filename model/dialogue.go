package model

import (
	"encoding/json"
	"time"
)

// DialogueSession is a chat-style session: the conversation coach and the
// virtual therapist. Unlike PracticeSession there is no item cursor; the
// session advances by transcript length.
type DialogueSession struct {
	ID         string          `json:"id" gorm:"primaryKey"`
	UserID     string          `json:"user_id" gorm:"not null;index"`
	Feature    string          `json:"feature" gorm:"not null;index"` // conversation, therapy
	ScenarioID string          `json:"scenario_id" gorm:"index"`      // empty for therapy
	Messages   json.RawMessage `json:"messages" gorm:"type:jsonb"`
	IsOpen     bool            `json:"is_open" gorm:"default:true;not null"`
	Report     string          `json:"report" gorm:"type:text"`
	ClosedAt   *time.Time      `json:"closed_at"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type ChatMessage struct {
	Role      string    `json:"role"` // system, user, assistant
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *DialogueSession) DecodeMessages() ([]ChatMessage, error) {
	var messages []ChatMessage
	if len(s.Messages) == 0 {
		return messages, nil
	}
	if err := json.Unmarshal(s.Messages, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *DialogueSession) EncodeMessages(messages []ChatMessage) error {
	raw, err := json.Marshal(messages)
	if err != nil {
		return err
	}
	s.Messages = raw
	return nil
}
