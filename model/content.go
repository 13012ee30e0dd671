package model

import (
	"encoding/json"
	"time"
)

// Expression is one entry in the facial-expression corpus used by the quiz.
type Expression struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Label     string    `json:"label" gorm:"not null;index"` // e.g. "laughing", "sad"
	ImageURL  string    `json:"image_url" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Scenario is a conversation-coach scenario: a system prompt plus optional
// difficulty stages the coach walks the user through.
type Scenario struct {
	ID               string          `json:"id" gorm:"primaryKey"`
	ScenarioID       string          `json:"scenario_id" gorm:"uniqueIndex;not null"` // e.g. "job_interview"
	Title            string          `json:"title" gorm:"not null"`
	Description      string          `json:"description" gorm:"type:text"`
	SystemPrompt     string          `json:"system_prompt" gorm:"type:text;not null"`
	DifficultyStages json.RawMessage `json:"difficulty_stages" gorm:"type:jsonb"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type DifficultyStage struct {
	StageNumber       int    `json:"stage_number"`
	StageDescription  string `json:"stage_description"`
	SystemPromptAddon string `json:"system_prompt_addon,omitempty"`
}

// SkillProgress tracks per-(user, scenario) coach usage: attempts, earned
// badges and the difficulty stage the user is on.
type SkillProgress struct {
	ID           string          `json:"id" gorm:"primaryKey"`
	UserID       string          `json:"user_id" gorm:"not null;index:idx_skill_user_scenario,unique"`
	ScenarioID   string          `json:"scenario_id" gorm:"not null;index:idx_skill_user_scenario,unique"`
	Attempts     int             `json:"attempts" gorm:"default:0;not null"`
	Badges       json.RawMessage `json:"badges" gorm:"type:jsonb"`
	CurrentStage int             `json:"current_stage" gorm:"default:1;not null"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (p *SkillProgress) DecodeBadges() ([]string, error) {
	var badges []string
	if len(p.Badges) == 0 {
		return badges, nil
	}
	if err := json.Unmarshal(p.Badges, &badges); err != nil {
		return nil, err
	}
	return badges, nil
}

func (p *SkillProgress) EncodeBadges(badges []string) error {
	raw, err := json.Marshal(badges)
	if err != nil {
		return err
	}
	p.Badges = raw
	return nil
}
