package services

import (
	gocontext "context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"github.com/spectrum-bridge/spectrum_api/dto"
	"github.com/spectrum-bridge/spectrum_api/model"
	"github.com/spectrum-bridge/spectrum_api/services/repositories"
	"github.com/spectrum-bridge/spectrum_api/shared"
	"gorm.io/gorm"
)

// PracticeStore is the storage surface the practice engine depends on.
type PracticeStore interface {
	CreatePracticeSession(session *model.PracticeSession) (*model.PracticeSession, error)
	GetPracticeSession(userID, sessionID string) (*model.PracticeSession, error)
	UpdatePracticeSession(session *model.PracticeSession) error
	SampleExpressions(limit int) ([]model.Expression, error)
}

// FeatureConfig wires one practice feature to its selector, scorer and
// prompts. The engine itself is feature-agnostic.
type FeatureConfig struct {
	Selector ItemSelector
	Scorer   AnswerScorer

	// FeedbackPrompt, when set, is used to generate coaching feedback for
	// incorrect answers whose scorer produced none of its own.
	FeedbackPrompt string
	SummaryPrompt  string

	DefaultItemCount int
}

// PracticeService runs itemized practice sessions: pick items, walk the
// user through them one at a time, score answers and close with a summary.
type PracticeService struct {
	context.DefaultService

	sqlSvc        *PostgresService
	completionSvc *CompletionService

	store      PracticeStore
	provider   CompletionProvider
	summarizer *SessionSummarizer
	monitoring *MonitoringService

	features map[string]FeatureConfig

	firstTryPoints int
	retryPoints    int
}

const PRACTICE_SVC = "practice_svc"

func (svc PracticeService) Id() string {
	return PRACTICE_SVC
}

func (svc *PracticeService) Configure(ctx *context.Context) error {
	svc.firstTryPoints = envInt("POINTS_FIRST_TRY", 10)
	svc.retryPoints = envInt("POINTS_RETRY", 5)

	return svc.DefaultService.Configure(ctx)
}

func (svc *PracticeService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.completionSvc = svc.Service(COMPLETION_SVC).(*CompletionService)
	svc.monitoring, _ = svc.Service(MONITORING_SVC).(*MonitoringService)

	svc.store = svc.sqlSvc
	svc.provider = svc.completionSvc
	svc.summarizer = NewSessionSummarizer(svc.provider)
	svc.features = svc.buildFeatures()

	return nil
}

func (svc *PracticeService) buildFeatures() map[string]FeatureConfig {
	return map[string]FeatureConfig{
		shared.FeatureExpressionQuiz: {
			Selector:         NewRandomSampleSelector(svc.store),
			Scorer:           NewExactMatchScorer(),
			FeedbackPrompt:   quizFeedbackPrompt,
			SummaryPrompt:    practiceSummaryPrompt,
			DefaultItemCount: envInt("QUIZ_ITEM_COUNT", 5),
		},
		shared.FeatureAIScenario: {
			Selector:         NewGenerativeSelector(svc.provider, scenarioGenerationPrompt),
			Scorer:           NewJudgedScorer(svc.provider, judgedScoringPrompt),
			SummaryPrompt:    practiceSummaryPrompt,
			DefaultItemCount: envInt("SCENARIO_ITEM_COUNT", 3),
		},
		shared.FeatureSocialDrill: {
			Selector:         NewStaticSelector(socialDrillCorpus()),
			Scorer:           NewJudgedScorer(svc.provider, judgedScoringPrompt),
			SummaryPrompt:    practiceSummaryPrompt,
			DefaultItemCount: envInt("DRILL_ITEM_COUNT", 4),
		},
	}
}

// socialDrillCorpus is the built-in drill set. Each drill states the
// situation and what a good response should include.
func socialDrillCorpus() []model.PracticeItem {
	return []model.PracticeItem{
		{
			Content:           "A classmate says hello to you in the hallway.",
			EvaluationContext: "Greets the classmate back, for example with hello or hi.",
		},
		{
			Content:           "You accidentally bump into someone at the store.",
			EvaluationContext: "Apologises, for example says sorry or excuse me.",
		},
		{
			Content:           "A friend gives you a small gift for your birthday.",
			EvaluationContext: "Thanks the friend and shows appreciation.",
		},
		{
			Content:           "You want to join a group of people playing a game.",
			EvaluationContext: "Asks politely to join, for example can I play too.",
		},
		{
			Content:           "Someone asks you how your day was.",
			EvaluationContext: "Answers the question and optionally asks the same back.",
		},
		{
			Content:           "You need help finding a book at the library.",
			EvaluationContext: "Asks a librarian for help politely.",
		},
		{
			Content:           "A friend looks sad and is sitting alone.",
			EvaluationContext: "Checks in on the friend, for example asks if they are okay.",
		},
		{
			Content:           "You disagree with a friend about which movie to watch.",
			EvaluationContext: "Expresses their preference calmly and suggests a compromise.",
		},
	}
}

func (svc *PracticeService) featureConfig(feature string) (FeatureConfig, error) {
	cfg, ok := svc.features[feature]
	if !ok {
		return FeatureConfig{}, shared.NewNotFoundError(nil, "unknown practice feature")
	}
	return cfg, nil
}

// StartSession selects items for the feature and opens a new session.
// Selection failure means no session row is ever written.
func (svc *PracticeService) StartSession(ctx gocontext.Context, userID, feature string, req dto.StartPracticeRequest) (*dto.StartPracticeResponse, error) {
	cfg, err := svc.featureConfig(feature)
	if err != nil {
		return nil, err
	}

	count := req.ItemCount
	if count <= 0 {
		count = cfg.DefaultItemCount
	}

	items, err := cfg.Selector.Select(ctx, userID, count)
	if err != nil {
		return nil, err
	}

	session := &model.PracticeSession{
		UserID:  userID,
		Feature: feature,
		IsOpen:  true,
	}
	if err := session.EncodeItems(items); err != nil {
		return nil, shared.NewInternalError(err, "failed to encode session items")
	}

	created, err := svc.store.CreatePracticeSession(session)
	if err != nil {
		return nil, shared.NewInternalError(err, "failed to create practice session")
	}

	log.WithFields(log.Fields{
		"session_id": created.ID,
		"feature":    feature,
		"items":      len(items),
	}).Info("Practice session started")

	if svc.monitoring != nil {
		svc.monitoring.RecordSessionStarted(feature)
	}

	return &dto.StartPracticeResponse{
		SessionID:  created.ID,
		Feature:    feature,
		TotalItems: len(items),
	}, nil
}

// GetCurrentItem returns the item the user should answer next, with the
// expected answer stripped out.
func (svc *PracticeService) GetCurrentItem(userID, sessionID string) (*dto.CurrentItemResponse, error) {
	session, items, err := svc.loadSession(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsOpen {
		return nil, shared.NewInvalidStateError(nil, "session is already closed")
	}

	if session.CurrentIndex >= len(items) {
		return &dto.CurrentItemResponse{
			Done:         true,
			CurrentIndex: session.CurrentIndex,
			TotalItems:   len(items),
		}, nil
	}

	return &dto.CurrentItemResponse{
		CurrentIndex: session.CurrentIndex,
		TotalItems:   len(items),
		Content:      items[session.CurrentIndex].Content,
	}, nil
}

// SubmitAnswer scores the answer against the current item. Nothing is
// persisted until scoring and feedback generation have both succeeded, so
// a provider failure leaves the session untouched.
func (svc *PracticeService) SubmitAnswer(ctx gocontext.Context, userID, sessionID string, req dto.SubmitAnswerRequest) (*dto.SubmitAnswerResponse, error) {
	session, items, err := svc.loadSession(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsOpen {
		return nil, shared.NewInvalidStateError(nil, "session is already closed")
	}
	if session.CurrentIndex >= len(items) {
		// Exhausted but still open: an idempotent "no more items" read.
		return &dto.SubmitAnswerResponse{
			Done:         true,
			CurrentIndex: session.CurrentIndex,
			TotalItems:   len(items),
			Points:       session.Points,
		}, nil
	}

	cfg, err := svc.featureConfig(session.Feature)
	if err != nil {
		return nil, err
	}

	item := &items[session.CurrentIndex]

	correct, feedback, err := cfg.Scorer.Score(ctx, item, req.Answer)
	if err != nil {
		return nil, err
	}

	attempts := item.Attempts + 1

	awarded := 0
	if correct {
		if attempts == 1 {
			awarded = svc.firstTryPoints
		} else {
			awarded = svc.retryPoints
		}
	}

	if feedback == "" {
		if correct {
			feedback = "That's right, well done!"
		} else if cfg.FeedbackPrompt != "" {
			feedback, err = svc.coachFeedback(ctx, cfg.FeedbackPrompt, item, req.Answer)
			if err != nil {
				return nil, err
			}
		}
	}

	// All computation succeeded, now mutate and persist.
	item.Attempts = attempts
	item.UserResponse = req.Answer
	if correct {
		item.IsCorrect = true
		session.CurrentIndex++
		session.Points += awarded
	}

	if err := session.EncodeItems(items); err != nil {
		return nil, shared.NewInternalError(err, "failed to encode session items")
	}
	if err := svc.saveSession(session); err != nil {
		return nil, err
	}

	if svc.monitoring != nil {
		svc.monitoring.RecordAnswerSubmitted(session.Feature, correct)
	}

	return &dto.SubmitAnswerResponse{
		Done:          session.CurrentIndex >= len(items),
		Correct:       correct,
		Attempts:      attempts,
		CurrentIndex:  session.CurrentIndex,
		TotalItems:    len(items),
		Points:        session.Points,
		PointsAwarded: awarded,
		Feedback:      feedback,
	}, nil
}

// CloseSession finalizes the session. Closing an already closed session
// returns the stored outcome without regenerating the summary.
func (svc *PracticeService) CloseSession(ctx gocontext.Context, userID, sessionID string) (*dto.ClosePracticeResponse, error) {
	session, items, err := svc.loadSession(userID, sessionID)
	if err != nil {
		return nil, err
	}

	if !session.IsOpen {
		return &dto.ClosePracticeResponse{
			AlreadyClosed: true,
			Points:        session.Points,
			FinalSummary:  session.FinalSummary,
		}, nil
	}

	cfg, err := svc.featureConfig(session.Feature)
	if err != nil {
		return nil, err
	}

	summary := svc.summarizer.Summarize(ctx, cfg.SummaryPrompt, session, items)

	session.IsOpen = false
	session.FinalSummary = summary
	if err := svc.saveSession(session); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"session_id": session.ID,
		"points":     session.Points,
	}).Info("Practice session closed")

	return &dto.ClosePracticeResponse{
		Points:       session.Points,
		FinalSummary: summary,
	}, nil
}

func (svc *PracticeService) coachFeedback(ctx gocontext.Context, prompt string, item *model.PracticeItem, answer string) (string, error) {
	// The model needs the right answer to hint at it; the system prompt
	// forbids revealing it outright.
	turn := fmt.Sprintf("The user guessed %q, but the correct answer is %q.", answer, item.CorrectAnswer)
	if item.EvaluationContext != "" {
		turn += " A good answer includes: " + item.EvaluationContext
	}

	reply, err := svc.provider.Complete(ctx, []model.ChatMessage{
		{Role: shared.ChatRoleSystem, Content: prompt},
		{Role: shared.ChatRoleUser, Content: turn},
	})
	if err != nil {
		return "", err
	}
	return reply, nil
}

func (svc *PracticeService) loadSession(userID, sessionID string) (*model.PracticeSession, []model.PracticeItem, error) {
	session, err := svc.store.GetPracticeSession(userID, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, shared.NewNotFoundError(err, "practice session not found")
		}
		return nil, nil, shared.NewInternalError(err, "failed to load practice session")
	}

	items, err := session.DecodeItems()
	if err != nil {
		return nil, nil, shared.NewInternalError(err, "failed to decode session items")
	}
	return session, items, nil
}

func (svc *PracticeService) saveSession(session *model.PracticeSession) error {
	err := svc.store.UpdatePracticeSession(session)
	if err == nil {
		return nil
	}
	if errors.Is(err, repositories.ErrVersionConflict) {
		return shared.NewConflictError(err, "session was updated concurrently, retry")
	}
	return shared.NewInternalError(err, "failed to save practice session")
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
