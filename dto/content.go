package dto

// ==================== CONTENT DTOs ====================

type ExpressionResponse struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	ImageURL string `json:"image_url"`
}

type ExpressionCollectionResponse struct {
	Expressions []ExpressionResponse `json:"expressions"`
	Total       int                  `json:"total"`
}

type ScenarioResponse struct {
	ScenarioID       string                   `json:"scenario_id"`
	Title            string                   `json:"title"`
	Description      string                   `json:"description"`
	DifficultyStages []DifficultyStageResponse `json:"difficulty_stages,omitempty"`
}

type DifficultyStageResponse struct {
	StageNumber      int    `json:"stage_number"`
	StageDescription string `json:"stage_description"`
}

type ScenarioCollectionResponse struct {
	Scenarios []ScenarioResponse `json:"scenarios"`
	Total     int                `json:"total"`
}

type SkillProgressResponse struct {
	ScenarioID   string   `json:"scenario_id"`
	Attempts     int      `json:"attempts"`
	Badges       []string `json:"badges"`
	CurrentStage int      `json:"current_stage"`
}

type UpdateSkillProgressRequest struct {
	IncrementAttempts bool   `json:"increment_attempts,omitempty"`
	AddBadge          string `json:"add_badge,omitempty"`
	SetStage          *int   `json:"set_stage,omitempty" validate:"omitempty,gt=0"`
}

func (u UpdateSkillProgressRequest) Validate() error {
	return GetValidator().Struct(u)
}
