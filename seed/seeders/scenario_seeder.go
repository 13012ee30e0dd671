package seeders

import (
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/spectrum-bridge/spectrum_api/model"
	"gorm.io/gorm"
)

// ScenarioSeeder populates the conversation coach scenarios.
type ScenarioSeeder struct {
	db *gorm.DB
}

func NewScenarioSeeder(db *gorm.DB) *ScenarioSeeder {
	return &ScenarioSeeder{db: db}
}

type seedScenario struct {
	ScenarioID   string
	Title        string
	Description  string
	SystemPrompt string
	Stages       []model.DifficultyStage
}

func (s *ScenarioSeeder) SeedScenarios() error {
	var count int64
	if err := s.db.Model(&model.Scenario{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Printf("Scenarios already seeded (%d rows), skipping", count)
		return nil
	}

	scenarios := []seedScenario{
		{
			ScenarioID:  "child_chat",
			Title:       "Chatting with a friend",
			Description: "Practice a relaxed chat with a friendly peer about everyday things.",
			SystemPrompt: "You are a friendly peer of about the same age as the user. " +
				"Chat about everyday topics like hobbies, school, games and pets. " +
				"Keep your messages short and cheerful.",
			Stages: []model.DifficultyStage{
				{
					StageNumber:      1,
					StageDescription: "We'll start with simple questions and answers.",
					SystemPromptAddon: "Ask simple yes/no questions and react to every answer.",
				},
				{
					StageNumber:      2,
					StageDescription: "Now try keeping the conversation going yourself.",
					SystemPromptAddon: "Answer briefly and wait for the user to carry the conversation. Only prompt them if they stall.",
				},
				{
					StageNumber:      3,
					StageDescription: "Let's practice disagreeing politely.",
					SystemPromptAddon: "Occasionally state a harmless opinion the user may disagree with, so they can practice polite disagreement.",
				},
			},
		},
		{
			ScenarioID:  "job_interview",
			Title:       "Job interview",
			Description: "Practice answering common interview questions calmly and clearly.",
			SystemPrompt: "You are a kind interviewer for an entry-level job. " +
				"Ask one common interview question at a time, such as strengths, experience and why the candidate wants the job. " +
				"Acknowledge each answer before the next question.",
			Stages: []model.DifficultyStage{
				{
					StageNumber:      1,
					StageDescription: "A short, friendly screening call.",
					SystemPromptAddon: "Stay very encouraging and keep questions simple.",
				},
				{
					StageNumber:      2,
					StageDescription: "A full interview with follow-up questions.",
					SystemPromptAddon: "Ask one follow-up question after each answer.",
				},
			},
		},
		{
			ScenarioID:  "making_friends",
			Title:       "Making a new friend",
			Description: "Practice introducing yourself and finding shared interests.",
			SystemPrompt: "You are a new classmate the user has not met before. " +
				"Let the user introduce themselves, share a little about yourself, and look for shared interests. " +
				"Be warm and a little curious.",
			Stages: []model.DifficultyStage{
				{
					StageNumber:      1,
					StageDescription: "Say hello and introduce yourself.",
					SystemPromptAddon: "Open with a friendly greeting and an easy question.",
				},
				{
					StageNumber:      2,
					StageDescription: "Find something you both like.",
					SystemPromptAddon: "Mention a few of your interests and see if the user picks one up.",
				},
				{
					StageNumber:      3,
					StageDescription: "Make a plan to hang out.",
					SystemPromptAddon: "Steer towards making a concrete plan, like playing a game together.",
				},
			},
		},
	}

	for _, sc := range scenarios {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}

		stages, err := json.Marshal(sc.Stages)
		if err != nil {
			return err
		}

		scenario := model.Scenario{
			ID:               id.String(),
			ScenarioID:       sc.ScenarioID,
			Title:            sc.Title,
			Description:      sc.Description,
			SystemPrompt:     sc.SystemPrompt,
			DifficultyStages: stages,
		}

		if err := s.db.Create(&scenario).Error; err != nil {
			return err
		}
	}

	log.Printf("Seeded %d scenarios", len(scenarios))
	return nil
}
