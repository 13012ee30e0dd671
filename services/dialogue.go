package services

import (
	gocontext "context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"github.com/spectrum-bridge/spectrum_api/dto"
	"github.com/spectrum-bridge/spectrum_api/model"
	"github.com/spectrum-bridge/spectrum_api/shared"
	"gorm.io/gorm"
)

// Badges awarded for conversation practice volume.
const (
	badgeChatterbox      = "Chatterbox"
	badgeConversationPro = "Conversation Pro"

	chatterboxAttempts      = 5
	conversationProAttempts = 10
)

// FallbackReport is stored when the provider cannot produce a session
// report. Closing a dialogue never fails on report generation.
const FallbackReport = "The session ended normally. A detailed report could not be generated this time."

// DialogueStore is the storage surface the dialogue service depends on.
type DialogueStore interface {
	CreateDialogueSession(session *model.DialogueSession) (*model.DialogueSession, error)
	GetDialogueSession(userID, sessionID string) (*model.DialogueSession, error)
	GetOpenDialogueSession(userID, feature string) (*model.DialogueSession, error)
	GetDialogueSessionByScenario(userID, scenarioID string) (*model.DialogueSession, error)
	DeleteDialogueSessionByScenario(userID, scenarioID string) error
	UpdateDialogueSession(session *model.DialogueSession) error
	GetClosedDialogueSessions(userID, feature string) ([]model.DialogueSession, error)

	GetScenario(scenarioID string) (*model.Scenario, error)
	GetOrCreateSkillProgress(userID, scenarioID string) (*model.SkillProgress, error)
	UpdateSkillProgress(progress *model.SkillProgress) error

	GetUserByID(userID string) (*model.User, error)
}

// DialogueService runs the chat-style features: the conversation coach and
// the virtual therapy companion.
type DialogueService struct {
	context.DefaultService

	sqlSvc        *PostgresService
	completionSvc *CompletionService

	store    DialogueStore
	provider CompletionProvider
}

const DIALOGUE_SVC = "dialogue_svc"

func (svc DialogueService) Id() string {
	return DIALOGUE_SVC
}

func (svc *DialogueService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.completionSvc = svc.Service(COMPLETION_SVC).(*CompletionService)

	svc.store = svc.sqlSvc
	svc.provider = svc.completionSvc

	return nil
}

// StartConversation opens a coach session for a scenario, resuming the
// user's existing open session for that scenario if one exists. restart
// discards the open session first, keeping skill progress intact.
func (svc *DialogueService) StartConversation(userID, scenarioID string, restart bool) (*dto.StartDialogueResponse, error) {
	scenario, err := svc.store.GetScenario(scenarioID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "scenario not found")
		}
		return nil, shared.NewInternalError(err, "failed to load scenario")
	}

	if restart {
		if err := svc.store.DeleteDialogueSessionByScenario(userID, scenarioID); err != nil {
			return nil, shared.NewInternalError(err, "failed to discard open session")
		}
	}

	existing, err := svc.store.GetDialogueSessionByScenario(userID, scenarioID)
	if err == nil && existing.IsOpen {
		messages, decErr := existing.DecodeMessages()
		if decErr != nil {
			return nil, shared.NewInternalError(decErr, "failed to decode session messages")
		}
		return &dto.StartDialogueResponse{
			SessionID: existing.ID,
			Resumed:   true,
			Messages:  visibleMessages(messages),
		}, nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.NewInternalError(err, "failed to look up open session")
	}

	progress, err := svc.store.GetOrCreateSkillProgress(userID, scenarioID)
	if err != nil {
		return nil, shared.NewInternalError(err, "failed to load skill progress")
	}

	stages, err := decodeStages(scenario)
	if err != nil {
		return nil, shared.NewInternalError(err, "failed to decode scenario stages")
	}

	systemPrompt := conversationCoachPrompt + "\n\nScenario: " + scenario.SystemPrompt
	if addon := stageAddon(stages, progress.CurrentStage); addon != "" {
		systemPrompt += "\n" + addon
	}

	now := time.Now()
	messages := []model.ChatMessage{
		{Role: shared.ChatRoleSystem, Content: systemPrompt, Timestamp: now},
		{Role: shared.ChatRoleAssistant, Content: introMessage(scenario, stages, progress.CurrentStage), Timestamp: now},
	}

	session := &model.DialogueSession{
		UserID:     userID,
		Feature:    shared.DialogueConversation,
		ScenarioID: scenarioID,
		IsOpen:     true,
	}
	if err := session.EncodeMessages(messages); err != nil {
		return nil, shared.NewInternalError(err, "failed to encode session messages")
	}

	created, err := svc.store.CreateDialogueSession(session)
	if err != nil {
		return nil, shared.NewInternalError(err, "failed to create dialogue session")
	}

	log.WithFields(log.Fields{
		"session_id": created.ID,
		"scenario":   scenarioID,
		"stage":      progress.CurrentStage,
	}).Info("Conversation session started")

	return &dto.StartDialogueResponse{
		SessionID: created.ID,
		Messages:  visibleMessages(messages),
	}, nil
}

// StartTherapy opens the user's therapy session. A user has at most one
// open therapy session at a time; an existing one is always resumed.
func (svc *DialogueService) StartTherapy(userID string) (*dto.StartDialogueResponse, error) {
	existing, err := svc.store.GetOpenDialogueSession(userID, shared.DialogueTherapy)
	if err == nil {
		messages, decErr := existing.DecodeMessages()
		if decErr != nil {
			return nil, shared.NewInternalError(decErr, "failed to decode session messages")
		}
		return &dto.StartDialogueResponse{
			SessionID: existing.ID,
			Resumed:   true,
			Messages:  visibleMessages(messages),
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.NewInternalError(err, "failed to look up open session")
	}

	now := time.Now()
	messages := []model.ChatMessage{
		{Role: shared.ChatRoleSystem, Content: therapySystemPrompt, Timestamp: now},
		{Role: shared.ChatRoleAssistant, Content: "Hi, I'm glad you're here. How are you feeling right now?", Timestamp: now},
	}

	session := &model.DialogueSession{
		UserID:  userID,
		Feature: shared.DialogueTherapy,
		IsOpen:  true,
	}
	if err := session.EncodeMessages(messages); err != nil {
		return nil, shared.NewInternalError(err, "failed to encode session messages")
	}

	created, err := svc.store.CreateDialogueSession(session)
	if err != nil {
		return nil, shared.NewInternalError(err, "failed to create dialogue session")
	}

	return &dto.StartDialogueResponse{
		SessionID: created.ID,
		Messages:  visibleMessages(messages),
	}, nil
}

// SendMessage appends the user's message, gets the assistant reply and
// persists the grown transcript. For conversation sessions it also updates
// skill progress and may award badges.
func (svc *DialogueService) SendMessage(ctx gocontext.Context, userID string, req dto.DialogueMessageRequest) (*dto.DialogueMessageResponse, error) {
	session, err := svc.loadDialogue(userID, req.SessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsOpen {
		return nil, shared.NewInvalidStateError(nil, "session is already closed")
	}

	messages, err := session.DecodeMessages()
	if err != nil {
		return nil, shared.NewInternalError(err, "failed to decode session messages")
	}

	now := time.Now()
	messages = append(messages, model.ChatMessage{
		Role:      shared.ChatRoleUser,
		Content:   req.Message,
		Timestamp: now,
	})

	reply, err := svc.provider.Complete(ctx, messages)
	if err != nil {
		return nil, err
	}

	messages = append(messages, model.ChatMessage{
		Role:      shared.ChatRoleAssistant,
		Content:   reply,
		Timestamp: time.Now(),
	})

	if err := session.EncodeMessages(messages); err != nil {
		return nil, shared.NewInternalError(err, "failed to encode session messages")
	}
	if err := svc.store.UpdateDialogueSession(session); err != nil {
		return nil, shared.NewInternalError(err, "failed to save dialogue session")
	}

	resp := &dto.DialogueMessageResponse{
		SessionID: session.ID,
		Reply:     reply,
	}

	if session.Feature == shared.DialogueConversation && session.ScenarioID != "" {
		progress, progErr := svc.recordAttempt(userID, session.ScenarioID)
		if progErr != nil {
			// Progress tracking must not fail the exchange.
			log.WithFields(log.Fields{
				"session_id": session.ID,
				"error":      progErr,
			}).Warn("Failed to update skill progress")
		} else {
			resp.Progress = progress
		}
	}

	return resp, nil
}

// CloseDialogue ends the session and stores a report. Closing an already
// closed session returns the stored report without regenerating it.
func (svc *DialogueService) CloseDialogue(ctx gocontext.Context, userID, sessionID string) (*dto.CloseDialogueResponse, error) {
	session, err := svc.loadDialogue(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsOpen {
		return &dto.CloseDialogueResponse{Report: session.Report}, nil
	}

	messages, err := session.DecodeMessages()
	if err != nil {
		return nil, shared.NewInternalError(err, "failed to decode session messages")
	}

	report := svc.generateReport(ctx, messages)

	now := time.Now()
	session.IsOpen = false
	session.Report = report
	session.ClosedAt = &now

	if err := svc.store.UpdateDialogueSession(session); err != nil {
		return nil, shared.NewInternalError(err, "failed to save dialogue session")
	}

	log.WithFields(log.Fields{
		"session_id": session.ID,
		"feature":    session.Feature,
	}).Info("Dialogue session closed")

	return &dto.CloseDialogueResponse{Report: report}, nil
}

// GetReports returns the closed-session reports of targetUserID. Parents
// and healthcare providers may read reports of users linked to them.
func (svc *DialogueService) GetReports(requesterID, requesterRole, targetUserID, feature string) ([]dto.DialogueReportResponse, error) {
	if targetUserID == "" {
		targetUserID = requesterID
	}

	if targetUserID != requesterID {
		if requesterRole != shared.RoleParent && requesterRole != shared.RoleHealthcareProvider {
			return nil, shared.NewForbiddenError(nil, "not allowed to view this user's reports")
		}

		requester, err := svc.store.GetUserByID(requesterID)
		if err != nil {
			return nil, shared.NewInternalError(err, "failed to load requesting user")
		}
		if !isRelatedUser(requester, targetUserID) {
			return nil, shared.NewForbiddenError(nil, "user is not linked to your account")
		}
	}

	sessions, err := svc.store.GetClosedDialogueSessions(targetUserID, feature)
	if err != nil {
		return nil, shared.NewInternalError(err, "failed to load session reports")
	}

	reports := make([]dto.DialogueReportResponse, 0, len(sessions))
	for _, s := range sessions {
		messages, decErr := s.DecodeMessages()
		if decErr != nil {
			return nil, shared.NewInternalError(decErr, "failed to decode session messages")
		}
		reports = append(reports, dto.DialogueReportResponse{
			SessionID: s.ID,
			Feature:   s.Feature,
			Report:    s.Report,
			Messages:  visibleMessages(messages),
			ClosedAt:  s.ClosedAt,
		})
	}
	return reports, nil
}

func (svc *DialogueService) recordAttempt(userID, scenarioID string) (*dto.SkillProgressResponse, error) {
	progress, err := svc.store.GetOrCreateSkillProgress(userID, scenarioID)
	if err != nil {
		return nil, err
	}

	progress.Attempts++

	badges, err := progress.DecodeBadges()
	if err != nil {
		return nil, err
	}
	if progress.Attempts >= chatterboxAttempts && !hasBadge(badges, badgeChatterbox) {
		badges = append(badges, badgeChatterbox)
	}
	if progress.Attempts >= conversationProAttempts && !hasBadge(badges, badgeConversationPro) {
		badges = append(badges, badgeConversationPro)
	}
	if err := progress.EncodeBadges(badges); err != nil {
		return nil, err
	}

	// Difficulty steps up every five attempts until the scenario runs out
	// of stages.
	scenario, err := svc.store.GetScenario(scenarioID)
	if err == nil {
		stages, decErr := decodeStages(scenario)
		if decErr == nil && progress.CurrentStage < len(stages) &&
			progress.Attempts >= progress.CurrentStage*chatterboxAttempts {
			progress.CurrentStage++
		}
	}

	if err := svc.store.UpdateSkillProgress(progress); err != nil {
		return nil, err
	}

	return &dto.SkillProgressResponse{
		ScenarioID:   progress.ScenarioID,
		Attempts:     progress.Attempts,
		Badges:       badges,
		CurrentStage: progress.CurrentStage,
	}, nil
}

func (svc *DialogueService) generateReport(ctx gocontext.Context, messages []model.ChatMessage) string {
	transcript := ""
	for _, m := range messages {
		if m.Role == shared.ChatRoleSystem {
			continue
		}
		transcript += fmt.Sprintf("%s: %s\n", m.Role, m.Content)
	}

	report, err := svc.provider.Complete(ctx, []model.ChatMessage{
		{Role: shared.ChatRoleSystem, Content: therapyReportPrompt},
		{Role: shared.ChatRoleUser, Content: transcript},
	})
	if err != nil || report == "" {
		log.WithField("error", err).Warn("Falling back to canned dialogue report")
		return FallbackReport
	}
	return report
}

func (svc *DialogueService) loadDialogue(userID, sessionID string) (*model.DialogueSession, error) {
	session, err := svc.store.GetDialogueSession(userID, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "dialogue session not found")
		}
		return nil, shared.NewInternalError(err, "failed to load dialogue session")
	}
	return session, nil
}

func decodeStages(scenario *model.Scenario) ([]model.DifficultyStage, error) {
	var stages []model.DifficultyStage
	if len(scenario.DifficultyStages) == 0 {
		return stages, nil
	}
	if err := json.Unmarshal(scenario.DifficultyStages, &stages); err != nil {
		return nil, err
	}
	return stages, nil
}

func stageAddon(stages []model.DifficultyStage, current int) string {
	for _, s := range stages {
		if s.StageNumber == current {
			return s.SystemPromptAddon
		}
	}
	return ""
}

func introMessage(scenario *model.Scenario, stages []model.DifficultyStage, current int) string {
	intro := fmt.Sprintf("Let's practice: %s. %s", scenario.Title, scenario.Description)
	for _, s := range stages {
		if s.StageNumber == current && s.StageDescription != "" {
			intro += " " + s.StageDescription
			break
		}
	}
	return intro + " Whenever you're ready, say something to start!"
}

// visibleMessages strips system prompts out of a transcript before it is
// returned to a client.
func visibleMessages(messages []model.ChatMessage) []dto.ChatMessage {
	out := make([]dto.ChatMessage, 0, len(messages))
	for _, m := range messages {
		if m.Role == shared.ChatRoleSystem {
			continue
		}
		out = append(out, dto.ChatMessage{
			Role:      m.Role,
			Content:   m.Content,
			Timestamp: m.Timestamp,
		})
	}
	return out
}

func hasBadge(badges []string, badge string) bool {
	for _, b := range badges {
		if b == badge {
			return true
		}
	}
	return false
}

func isRelatedUser(user *model.User, targetID string) bool {
	if len(user.RelatedUserIDs) == 0 {
		return false
	}
	var ids []string
	if err := json.Unmarshal(user.RelatedUserIDs, &ids); err != nil {
		return false
	}
	for _, id := range ids {
		if id == targetID {
			return true
		}
	}
	return false
}
