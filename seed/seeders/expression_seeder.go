package seeders

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/spectrum-bridge/spectrum_api/model"
	"gorm.io/gorm"
)

// ExpressionSeeder populates the facial expression corpus used by the
// emotion recognition quiz.
type ExpressionSeeder struct {
	db *gorm.DB
}

func NewExpressionSeeder(db *gorm.DB) *ExpressionSeeder {
	return &ExpressionSeeder{db: db}
}

func (s *ExpressionSeeder) SeedExpressions() error {
	var count int64
	if err := s.db.Model(&model.Expression{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Printf("Expressions already seeded (%d rows), skipping", count)
		return nil
	}

	labels := []string{
		"happy",
		"sad",
		"angry",
		"surprised",
		"scared",
		"laughing",
		"crying",
		"confused",
		"bored",
		"excited",
		"tired",
		"proud",
		"embarrassed",
		"worried",
		"calm",
	}

	for _, label := range labels {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}

		expression := model.Expression{
			ID:       id.String(),
			Label:    label,
			ImageURL: fmt.Sprintf("/assets/expressions/%s.png", label),
		}

		if err := s.db.Create(&expression).Error; err != nil {
			return err
		}
	}

	log.Printf("Seeded %d expressions", len(labels))
	return nil
}
