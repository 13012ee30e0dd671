package services

import (
	"errors"

	"github.com/alphabatem/common/context"
	"github.com/spectrum-bridge/spectrum_api/dto"
	"github.com/spectrum-bridge/spectrum_api/model"
	"github.com/spectrum-bridge/spectrum_api/shared"
	"gorm.io/gorm"
)

// ContentService serves the practice content catalog: the expression corpus
// and the conversation scenarios, plus per-user skill progress.
type ContentService struct {
	context.DefaultService

	sqlSvc *PostgresService
}

const CONTENT_SVC = "content_svc"

func (svc ContentService) Id() string {
	return CONTENT_SVC
}

func (svc *ContentService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	return nil
}

func (svc *ContentService) GetExpressions() (*dto.ExpressionCollectionResponse, error) {
	expressions, err := svc.sqlSvc.GetExpressions()
	if err != nil {
		return nil, shared.NewInternalError(err, "failed to load expressions")
	}

	out := make([]dto.ExpressionResponse, 0, len(expressions))
	for _, e := range expressions {
		out = append(out, dto.ExpressionResponse{
			ID:       e.ID,
			Label:    e.Label,
			ImageURL: e.ImageURL,
		})
	}

	return &dto.ExpressionCollectionResponse{
		Expressions: out,
		Total:       len(out),
	}, nil
}

func (svc *ContentService) GetScenarios() (*dto.ScenarioCollectionResponse, error) {
	scenarios, err := svc.sqlSvc.GetScenarios()
	if err != nil {
		return nil, shared.NewInternalError(err, "failed to load scenarios")
	}

	out := make([]dto.ScenarioResponse, 0, len(scenarios))
	for i := range scenarios {
		resp, err := svc.toScenarioResponse(&scenarios[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}

	return &dto.ScenarioCollectionResponse{
		Scenarios: out,
		Total:     len(out),
	}, nil
}

func (svc *ContentService) GetScenario(scenarioID string) (*dto.ScenarioResponse, error) {
	scenario, err := svc.sqlSvc.GetScenario(scenarioID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "scenario not found")
		}
		return nil, shared.NewInternalError(err, "failed to load scenario")
	}

	return svc.toScenarioResponse(scenario)
}

func (svc *ContentService) GetSkillProgress(userID, scenarioID string) (*dto.SkillProgressResponse, error) {
	if _, err := svc.sqlSvc.GetScenario(scenarioID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "scenario not found")
		}
		return nil, shared.NewInternalError(err, "failed to load scenario")
	}

	progress, err := svc.sqlSvc.GetOrCreateSkillProgress(userID, scenarioID)
	if err != nil {
		return nil, shared.NewInternalError(err, "failed to load skill progress")
	}

	badges, err := progress.DecodeBadges()
	if err != nil {
		return nil, shared.NewInternalError(err, "failed to decode badges")
	}

	return &dto.SkillProgressResponse{
		ScenarioID:   progress.ScenarioID,
		Attempts:     progress.Attempts,
		Badges:       badges,
		CurrentStage: progress.CurrentStage,
	}, nil
}

func (svc *ContentService) UpdateSkillProgress(userID, scenarioID string, req dto.UpdateSkillProgressRequest) (*dto.SkillProgressResponse, error) {
	progress, err := svc.sqlSvc.GetOrCreateSkillProgress(userID, scenarioID)
	if err != nil {
		return nil, shared.NewInternalError(err, "failed to load skill progress")
	}

	if req.IncrementAttempts {
		progress.Attempts++
	}

	badges, err := progress.DecodeBadges()
	if err != nil {
		return nil, shared.NewInternalError(err, "failed to decode badges")
	}
	if req.AddBadge != "" && !hasBadge(badges, req.AddBadge) {
		badges = append(badges, req.AddBadge)
		if err := progress.EncodeBadges(badges); err != nil {
			return nil, shared.NewInternalError(err, "failed to encode badges")
		}
	}

	if req.SetStage != nil {
		progress.CurrentStage = *req.SetStage
	}

	if err := svc.sqlSvc.UpdateSkillProgress(progress); err != nil {
		return nil, shared.NewInternalError(err, "failed to save skill progress")
	}

	return &dto.SkillProgressResponse{
		ScenarioID:   progress.ScenarioID,
		Attempts:     progress.Attempts,
		Badges:       badges,
		CurrentStage: progress.CurrentStage,
	}, nil
}

func (svc *ContentService) toScenarioResponse(scenario *model.Scenario) (*dto.ScenarioResponse, error) {
	stages, err := decodeStages(scenario)
	if err != nil {
		return nil, shared.NewInternalError(err, "failed to decode scenario stages")
	}

	stageResponses := make([]dto.DifficultyStageResponse, 0, len(stages))
	for _, s := range stages {
		stageResponses = append(stageResponses, dto.DifficultyStageResponse{
			StageNumber:      s.StageNumber,
			StageDescription: s.StageDescription,
		})
	}

	return &dto.ScenarioResponse{
		ScenarioID:       scenario.ScenarioID,
		Title:            scenario.Title,
		Description:      scenario.Description,
		DifficultyStages: stageResponses,
	}, nil
}
