package model

import (
	"encoding/json"
	"time"
)

// PracticeSession is one run of an itemized practice feature (expression
// quiz, AI scenarios, social drills) for a user. Items are stored as a JSON
// sub-document, mirroring how lesson questions are embedded rather than
// normalized into their own table.
type PracticeSession struct {
	ID           string          `json:"id" gorm:"primaryKey"`
	UserID       string          `json:"user_id" gorm:"not null;index"`
	Feature      string          `json:"feature" gorm:"not null;index"`
	Items        json.RawMessage `json:"items" gorm:"type:jsonb"`
	CurrentIndex int             `json:"current_index" gorm:"default:0;not null"`
	Points       int             `json:"points" gorm:"default:0;not null"`
	IsOpen       bool            `json:"is_open" gorm:"default:true;not null"`
	FinalSummary string          `json:"final_summary" gorm:"type:text"`

	// Version guards concurrent submissions: every save is conditional on
	// the version read, so overlapping writers cannot interleave attempts
	// and points silently.
	Version int `json:"version" gorm:"default:0;not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PracticeItem is one item within a session plus the user's submission
// history against it. Exactly one of CorrectAnswer / EvaluationContext is
// set, depending on whether the feature scores by exact match or by judged
// evaluation.
type PracticeItem struct {
	Content           string `json:"content"`
	CorrectAnswer     string `json:"correct_answer,omitempty"`
	EvaluationContext string `json:"evaluation_context,omitempty"`
	UserResponse      string `json:"user_response"`
	Attempts          int    `json:"attempts"`
	IsCorrect         bool   `json:"is_correct"`
}

func (s *PracticeSession) DecodeItems() ([]PracticeItem, error) {
	var items []PracticeItem
	if len(s.Items) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(s.Items, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *PracticeSession) EncodeItems(items []PracticeItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	s.Items = raw
	return nil
}
