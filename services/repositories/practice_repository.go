package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spectrum-bridge/spectrum_api/model"
	"gorm.io/gorm"
)

// ErrVersionConflict is returned when a versioned update loses a race
// against a concurrent write to the same session row.
var ErrVersionConflict = fmt.Errorf("session was modified concurrently")

type PracticeRepository struct {
	*BaseRepository
}

func NewPracticeRepository(db *gorm.DB) *PracticeRepository {
	return &PracticeRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *PracticeRepository) Create(session *model.PracticeSession) (*model.PracticeSession, error) {
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

func (r *PracticeRepository) GetForUser(userID, sessionID string) (*model.PracticeSession, error) {
	var session model.PracticeSession
	err := r.db.Where("id = ? AND user_id = ?", sessionID, userID).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// UpdateVersioned persists the session only if nobody else wrote it since
// it was read. The version column increments on every successful write.
func (r *PracticeRepository) UpdateVersioned(session *model.PracticeSession) error {
	currentVersion := session.Version
	session.Version = currentVersion + 1

	result := r.db.Model(&model.PracticeSession{}).
		Where("id = ? AND version = ?", session.ID, currentVersion).
		Updates(map[string]interface{}{
			"items":         session.Items,
			"current_index": session.CurrentIndex,
			"points":        session.Points,
			"is_open":       session.IsOpen,
			"final_summary": session.FinalSummary,
			"version":       session.Version,
		})

	if result.Error != nil {
		session.Version = currentVersion
		return result.Error
	}
	if result.RowsAffected == 0 {
		session.Version = currentVersion
		return ErrVersionConflict
	}
	return nil
}
