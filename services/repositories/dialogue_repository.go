package repositories

import (
	"github.com/google/uuid"
	"github.com/spectrum-bridge/spectrum_api/model"
	"gorm.io/gorm"
)

type DialogueRepository struct {
	*BaseRepository
}

func NewDialogueRepository(db *gorm.DB) *DialogueRepository {
	return &DialogueRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *DialogueRepository) Create(session *model.DialogueSession) (*model.DialogueSession, error) {
	if session.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, err
		}
		session.ID = id.String()
	}

	if err := r.db.Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

func (r *DialogueRepository) GetForUser(userID, sessionID string) (*model.DialogueSession, error) {
	var session model.DialogueSession
	err := r.db.Where("id = ? AND user_id = ?", sessionID, userID).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *DialogueRepository) GetOpenByFeature(userID, feature string) (*model.DialogueSession, error) {
	var session model.DialogueSession
	err := r.db.Where("user_id = ? AND feature = ? AND is_open = ?", userID, feature, true).
		Order("created_at DESC").
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *DialogueRepository) GetByScenario(userID, scenarioID string) (*model.DialogueSession, error) {
	var session model.DialogueSession
	err := r.db.Where("user_id = ? AND scenario_id = ?", userID, scenarioID).
		Order("created_at DESC").
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *DialogueRepository) Update(session *model.DialogueSession) error {
	return r.db.Save(session).Error
}

// DeleteByScenario discards open sessions only; closed sessions keep their
// reports.
func (r *DialogueRepository) DeleteByScenario(userID, scenarioID string) error {
	return r.db.Where("user_id = ? AND scenario_id = ? AND is_open = ?", userID, scenarioID, true).
		Delete(&model.DialogueSession{}).Error
}

func (r *DialogueRepository) GetClosedByFeature(userID, feature string) ([]model.DialogueSession, error) {
	var sessions []model.DialogueSession
	err := r.db.Where("user_id = ? AND feature = ? AND is_open = ?", userID, feature, false).
		Order("closed_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}
