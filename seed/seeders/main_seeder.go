package seeders

import (
	"log"

	"gorm.io/gorm"
)

// MainSeeder coordinates all seeding operations
type MainSeeder struct {
	db *gorm.DB
}

func NewMainSeeder(db *gorm.DB) *MainSeeder {
	return &MainSeeder{db: db}
}

// SeedAll runs all seeders
func (s *MainSeeder) SeedAll() error {
	log.Println("Starting database seeding...")

	expressionSeeder := NewExpressionSeeder(s.db)
	if err := expressionSeeder.SeedExpressions(); err != nil {
		log.Printf("Expression seeding failed: %v", err)
		return err
	}

	scenarioSeeder := NewScenarioSeeder(s.db)
	if err := scenarioSeeder.SeedScenarios(); err != nil {
		log.Printf("Scenario seeding failed: %v", err)
		return err
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

func (s *MainSeeder) SeedExpressionsOnly() error {
	return NewExpressionSeeder(s.db).SeedExpressions()
}

func (s *MainSeeder) SeedScenariosOnly() error {
	return NewScenarioSeeder(s.db).SeedScenarios()
}
