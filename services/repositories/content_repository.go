package repositories

import (
	"errors"

	"github.com/google/uuid"
	"github.com/spectrum-bridge/spectrum_api/model"
	"gorm.io/gorm"
)

type ContentRepository struct {
	*BaseRepository
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *ContentRepository) CreateExpression(expression *model.Expression) (*model.Expression, error) {
	if expression.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, err
		}
		expression.ID = id.String()
	}

	if err := r.db.Create(expression).Error; err != nil {
		return nil, err
	}
	return expression, nil
}

func (r *ContentRepository) CountExpressions() (int64, error) {
	var count int64
	err := r.db.Model(&model.Expression{}).Count(&count).Error
	return count, err
}

func (r *ContentRepository) GetExpressions() ([]model.Expression, error) {
	var expressions []model.Expression
	err := r.db.Order("label ASC").Find(&expressions).Error
	if err != nil {
		return nil, err
	}
	return expressions, nil
}

// SampleExpressions returns up to limit expressions in random order.
func (r *ContentRepository) SampleExpressions(limit int) ([]model.Expression, error) {
	var expressions []model.Expression
	err := r.db.Order("RANDOM()").Limit(limit).Find(&expressions).Error
	if err != nil {
		return nil, err
	}
	return expressions, nil
}

func (r *ContentRepository) CreateScenario(scenario *model.Scenario) (*model.Scenario, error) {
	if scenario.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, err
		}
		scenario.ID = id.String()
	}

	if err := r.db.Create(scenario).Error; err != nil {
		return nil, err
	}
	return scenario, nil
}

func (r *ContentRepository) GetScenarios() ([]model.Scenario, error) {
	var scenarios []model.Scenario
	err := r.db.Order("scenario_id ASC").Find(&scenarios).Error
	if err != nil {
		return nil, err
	}
	return scenarios, nil
}

func (r *ContentRepository) GetScenario(scenarioID string) (*model.Scenario, error) {
	var scenario model.Scenario
	err := r.db.Where("scenario_id = ?", scenarioID).First(&scenario).Error
	if err != nil {
		return nil, err
	}
	return &scenario, nil
}

func (r *ContentRepository) CountScenarios() (int64, error) {
	var count int64
	err := r.db.Model(&model.Scenario{}).Count(&count).Error
	return count, err
}

func (r *ContentRepository) GetOrCreateSkillProgress(userID, scenarioID string) (*model.SkillProgress, error) {
	var progress model.SkillProgress
	err := r.db.Where("user_id = ? AND scenario_id = ?", userID, scenarioID).First(&progress).Error
	if err == nil {
		return &progress, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	progress = model.SkillProgress{
		ID:           id.String(),
		UserID:       userID,
		ScenarioID:   scenarioID,
		CurrentStage: 1,
	}
	if err := r.db.Create(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *ContentRepository) UpdateSkillProgress(progress *model.SkillProgress) error {
	return r.db.Save(progress).Error
}
