package services

import (
	gocontext "context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/spectrum-bridge/spectrum_api/dto"
	"github.com/spectrum-bridge/spectrum_api/model"
	"github.com/spectrum-bridge/spectrum_api/shared"
	"gorm.io/gorm"
)

type fakeDialogueStore struct {
	sessions  map[string]*model.DialogueSession
	scenarios map[string]*model.Scenario
	progress  map[string]*model.SkillProgress
	users     map[string]*model.User
	nextID    int
}

func newFakeDialogueStore() *fakeDialogueStore {
	return &fakeDialogueStore{
		sessions:  make(map[string]*model.DialogueSession),
		scenarios: make(map[string]*model.Scenario),
		progress:  make(map[string]*model.SkillProgress),
		users:     make(map[string]*model.User),
	}
}

func (f *fakeDialogueStore) CreateDialogueSession(session *model.DialogueSession) (*model.DialogueSession, error) {
	f.nextID++
	session.ID = fmt.Sprintf("dialogue-%d", f.nextID)
	stored := *session
	f.sessions[session.ID] = &stored
	return session, nil
}

func (f *fakeDialogueStore) GetDialogueSession(userID, sessionID string) (*model.DialogueSession, error) {
	stored, ok := f.sessions[sessionID]
	if !ok || stored.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	out := *stored
	return &out, nil
}

func (f *fakeDialogueStore) GetOpenDialogueSession(userID, feature string) (*model.DialogueSession, error) {
	for _, s := range f.sessions {
		if s.UserID == userID && s.Feature == feature && s.IsOpen {
			out := *s
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDialogueStore) GetDialogueSessionByScenario(userID, scenarioID string) (*model.DialogueSession, error) {
	for _, s := range f.sessions {
		if s.UserID == userID && s.ScenarioID == scenarioID && s.IsOpen {
			out := *s
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDialogueStore) DeleteDialogueSessionByScenario(userID, scenarioID string) error {
	for id, s := range f.sessions {
		if s.UserID == userID && s.ScenarioID == scenarioID && s.IsOpen {
			delete(f.sessions, id)
		}
	}
	return nil
}

func (f *fakeDialogueStore) UpdateDialogueSession(session *model.DialogueSession) error {
	if _, ok := f.sessions[session.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *session
	f.sessions[session.ID] = &stored
	return nil
}

func (f *fakeDialogueStore) GetClosedDialogueSessions(userID, feature string) ([]model.DialogueSession, error) {
	var out []model.DialogueSession
	for _, s := range f.sessions {
		if s.UserID == userID && s.Feature == feature && !s.IsOpen {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeDialogueStore) GetScenario(scenarioID string) (*model.Scenario, error) {
	scenario, ok := f.scenarios[scenarioID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *scenario
	return &out, nil
}

func (f *fakeDialogueStore) GetOrCreateSkillProgress(userID, scenarioID string) (*model.SkillProgress, error) {
	key := userID + "/" + scenarioID
	if p, ok := f.progress[key]; ok {
		out := *p
		return &out, nil
	}
	p := &model.SkillProgress{
		ID:           key,
		UserID:       userID,
		ScenarioID:   scenarioID,
		CurrentStage: 1,
	}
	f.progress[key] = p
	out := *p
	return &out, nil
}

func (f *fakeDialogueStore) UpdateSkillProgress(progress *model.SkillProgress) error {
	stored := *progress
	f.progress[progress.UserID+"/"+progress.ScenarioID] = &stored
	return nil
}

func (f *fakeDialogueStore) GetUserByID(userID string) (*model.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *user
	return &out, nil
}

func (f *fakeDialogueStore) addScenario(scenarioID string, stageCount int) {
	stages := make([]model.DifficultyStage, 0, stageCount)
	for i := 1; i <= stageCount; i++ {
		stages = append(stages, model.DifficultyStage{
			StageNumber:       i,
			StageDescription:  fmt.Sprintf("Stage %d.", i),
			SystemPromptAddon: fmt.Sprintf("Difficulty level %d.", i),
		})
	}
	raw, _ := json.Marshal(stages)
	f.scenarios[scenarioID] = &model.Scenario{
		ID:               "row-" + scenarioID,
		ScenarioID:       scenarioID,
		Title:            "Job Interview",
		Description:      "Practice answering interview questions.",
		SystemPrompt:     "You are interviewing the user for a job.",
		DifficultyStages: raw,
	}
}

func newTestDialogueService(store *fakeDialogueStore, provider CompletionProvider) *DialogueService {
	return &DialogueService{store: store, provider: provider}
}

func TestStartConversationNewSession(t *testing.T) {
	store := newFakeDialogueStore()
	store.addScenario("job_interview", 2)
	svc := newTestDialogueService(store, &scriptedProvider{})

	resp, err := svc.StartConversation("user-1", "job_interview", false)
	if err != nil {
		t.Fatalf("StartConversation: %v", err)
	}
	if resp.Resumed {
		t.Error("fresh session reported as resumed")
	}
	if len(resp.Messages) != 1 || resp.Messages[0].Role != shared.ChatRoleAssistant {
		t.Fatalf("Messages = %+v, want one assistant intro", resp.Messages)
	}

	stored := store.sessions[resp.SessionID]
	messages, _ := stored.DecodeMessages()
	if len(messages) != 2 || messages[0].Role != shared.ChatRoleSystem {
		t.Fatalf("stored transcript = %+v, want system + assistant", messages)
	}
	if want := "Difficulty level 1."; !strings.Contains(messages[0].Content, want) {
		t.Errorf("system prompt missing stage addon %q", want)
	}
}

func TestStartConversationResumesOpenSession(t *testing.T) {
	store := newFakeDialogueStore()
	store.addScenario("job_interview", 2)
	svc := newTestDialogueService(store, &scriptedProvider{})

	first, err := svc.StartConversation("user-1", "job_interview", false)
	if err != nil {
		t.Fatalf("StartConversation: %v", err)
	}
	second, err := svc.StartConversation("user-1", "job_interview", false)
	if err != nil {
		t.Fatalf("second StartConversation: %v", err)
	}
	if !second.Resumed {
		t.Error("open session was not resumed")
	}
	if second.SessionID != first.SessionID {
		t.Errorf("resumed a different session: %s vs %s", second.SessionID, first.SessionID)
	}
}

func TestStartConversationRestart(t *testing.T) {
	store := newFakeDialogueStore()
	store.addScenario("job_interview", 2)
	svc := newTestDialogueService(store, &scriptedProvider{})

	first, err := svc.StartConversation("user-1", "job_interview", false)
	if err != nil {
		t.Fatalf("StartConversation: %v", err)
	}

	fresh, err := svc.StartConversation("user-1", "job_interview", true)
	if err != nil {
		t.Fatalf("restart StartConversation: %v", err)
	}
	if fresh.Resumed {
		t.Error("restart resumed the old session")
	}
	if fresh.SessionID == first.SessionID {
		t.Error("restart reused the old session id")
	}
	if _, ok := store.sessions[first.SessionID]; ok {
		t.Error("old open session survived the restart")
	}
}

func TestStartConversationUnknownScenario(t *testing.T) {
	svc := newTestDialogueService(newFakeDialogueStore(), &scriptedProvider{})

	_, err := svc.StartConversation("user-1", "missing", false)
	appErr, ok := shared.GetAppError(err)
	if !ok || appErr.Code != shared.CodeNotFound {
		t.Fatalf("error = %v, want %s", err, shared.CodeNotFound)
	}
}

func TestStartTherapySingleOpenSession(t *testing.T) {
	store := newFakeDialogueStore()
	svc := newTestDialogueService(store, &scriptedProvider{})

	first, err := svc.StartTherapy("user-1")
	if err != nil {
		t.Fatalf("StartTherapy: %v", err)
	}
	second, err := svc.StartTherapy("user-1")
	if err != nil {
		t.Fatalf("second StartTherapy: %v", err)
	}
	if !second.Resumed || second.SessionID != first.SessionID {
		t.Error("second start did not resume the open therapy session")
	}
	if len(store.sessions) != 1 {
		t.Errorf("session count = %d, want 1", len(store.sessions))
	}
}

func TestSendMessageGrowsTranscript(t *testing.T) {
	store := newFakeDialogueStore()
	provider := &scriptedProvider{replies: []string{"That sounds like a tough day. What happened?"}}
	svc := newTestDialogueService(store, provider)

	start, _ := svc.StartTherapy("user-1")

	resp, err := svc.SendMessage(gocontext.Background(), "user-1", dto.DialogueMessageRequest{
		SessionID: start.SessionID,
		Message:   "I had a bad day at school.",
	})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if resp.Reply != "That sounds like a tough day. What happened?" {
		t.Errorf("Reply = %q", resp.Reply)
	}
	if resp.Progress != nil {
		t.Error("therapy exchange reported skill progress")
	}

	stored := store.sessions[start.SessionID]
	messages, _ := stored.DecodeMessages()
	if len(messages) != 4 {
		t.Fatalf("transcript length = %d, want 4", len(messages))
	}
	if messages[2].Role != shared.ChatRoleUser || messages[3].Role != shared.ChatRoleAssistant {
		t.Errorf("transcript roles wrong: %+v", messages)
	}
}

func TestSendMessageClosedSession(t *testing.T) {
	store := newFakeDialogueStore()
	provider := &scriptedProvider{replies: []string{"report text"}}
	svc := newTestDialogueService(store, provider)

	start, _ := svc.StartTherapy("user-1")
	if _, err := svc.CloseDialogue(gocontext.Background(), "user-1", start.SessionID); err != nil {
		t.Fatalf("CloseDialogue: %v", err)
	}

	_, err := svc.SendMessage(gocontext.Background(), "user-1", dto.DialogueMessageRequest{
		SessionID: start.SessionID,
		Message:   "hello?",
	})
	appErr, ok := shared.GetAppError(err)
	if !ok || appErr.Code != shared.CodeInvalidState {
		t.Fatalf("error = %v, want %s", err, shared.CodeInvalidState)
	}
}

func TestConversationBadgesAndStages(t *testing.T) {
	store := newFakeDialogueStore()
	store.addScenario("job_interview", 2)
	provider := &scriptedProvider{replies: []string{"Good answer, tell me more."}}
	svc := newTestDialogueService(store, provider)

	start, _ := svc.StartConversation("user-1", "job_interview", false)

	var last *dto.DialogueMessageResponse
	for i := 0; i < chatterboxAttempts; i++ {
		resp, err := svc.SendMessage(gocontext.Background(), "user-1", dto.DialogueMessageRequest{
			SessionID: start.SessionID,
			Message:   "My greatest strength is attention to detail.",
		})
		if err != nil {
			t.Fatalf("SendMessage #%d: %v", i+1, err)
		}
		last = resp
	}

	if last.Progress == nil {
		t.Fatal("no skill progress on conversation exchange")
	}
	if last.Progress.Attempts != chatterboxAttempts {
		t.Errorf("Attempts = %d, want %d", last.Progress.Attempts, chatterboxAttempts)
	}
	if !hasBadge(last.Progress.Badges, badgeChatterbox) {
		t.Errorf("badges = %v, want %s", last.Progress.Badges, badgeChatterbox)
	}
	if hasBadge(last.Progress.Badges, badgeConversationPro) {
		t.Errorf("badges = %v, %s awarded too early", last.Progress.Badges, badgeConversationPro)
	}
	if last.Progress.CurrentStage != 2 {
		t.Errorf("CurrentStage = %d, want 2 after %d attempts", last.Progress.CurrentStage, chatterboxAttempts)
	}

	for i := chatterboxAttempts; i < conversationProAttempts; i++ {
		resp, err := svc.SendMessage(gocontext.Background(), "user-1", dto.DialogueMessageRequest{
			SessionID: start.SessionID,
			Message:   "I also work well in a team.",
		})
		if err != nil {
			t.Fatalf("SendMessage #%d: %v", i+1, err)
		}
		last = resp
	}

	if !hasBadge(last.Progress.Badges, badgeConversationPro) {
		t.Errorf("badges = %v, want %s", last.Progress.Badges, badgeConversationPro)
	}
	// Two stages only, so difficulty is capped.
	if last.Progress.CurrentStage != 2 {
		t.Errorf("CurrentStage = %d, want capped at 2", last.Progress.CurrentStage)
	}
}

func TestCloseDialogueIdempotent(t *testing.T) {
	store := newFakeDialogueStore()
	provider := &scriptedProvider{replies: []string{"The user opened up about school stress."}}
	svc := newTestDialogueService(store, provider)

	start, _ := svc.StartTherapy("user-1")

	first, err := svc.CloseDialogue(gocontext.Background(), "user-1", start.SessionID)
	if err != nil {
		t.Fatalf("CloseDialogue: %v", err)
	}
	if first.Report != "The user opened up about school stress." {
		t.Errorf("Report = %q", first.Report)
	}
	calls := provider.calls

	second, err := svc.CloseDialogue(gocontext.Background(), "user-1", start.SessionID)
	if err != nil {
		t.Fatalf("second CloseDialogue: %v", err)
	}
	if second.Report != first.Report {
		t.Error("second close changed the report")
	}
	if provider.calls != calls {
		t.Error("second close regenerated the report")
	}
}

func TestCloseDialogueReportFallback(t *testing.T) {
	store := newFakeDialogueStore()
	svc := newTestDialogueService(store, &scriptedProvider{err: errors.New("provider down")})

	start, _ := svc.StartTherapy("user-1")

	resp, err := svc.CloseDialogue(gocontext.Background(), "user-1", start.SessionID)
	if err != nil {
		t.Fatalf("CloseDialogue: %v", err)
	}
	if resp.Report != FallbackReport {
		t.Errorf("Report = %q, want fallback", resp.Report)
	}
	if store.sessions[start.SessionID].IsOpen {
		t.Error("session still open after close")
	}
}

func TestGetReportsAccessControl(t *testing.T) {
	store := newFakeDialogueStore()
	linked, _ := json.Marshal([]string{"child-1"})
	store.users["parent-1"] = &model.User{ID: "parent-1", Role: shared.RoleParent, RelatedUserIDs: linked}
	store.users["parent-2"] = &model.User{ID: "parent-2", Role: shared.RoleParent}

	provider := &scriptedProvider{replies: []string{"report"}}
	svc := newTestDialogueService(store, provider)

	start, _ := svc.StartTherapy("child-1")
	if _, err := svc.CloseDialogue(gocontext.Background(), "child-1", start.SessionID); err != nil {
		t.Fatalf("CloseDialogue: %v", err)
	}

	// Self access.
	reports, err := svc.GetReports("child-1", shared.RoleUser, "", shared.DialogueTherapy)
	if err != nil {
		t.Fatalf("self GetReports: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("len(reports) = %d, want 1", len(reports))
	}
	for _, m := range reports[0].Messages {
		if m.Role == shared.ChatRoleSystem {
			t.Error("report leaks system prompt")
		}
	}

	// Linked parent may read.
	if _, err := svc.GetReports("parent-1", shared.RoleParent, "child-1", shared.DialogueTherapy); err != nil {
		t.Errorf("linked parent GetReports: %v", err)
	}

	// Unlinked parent may not.
	_, err = svc.GetReports("parent-2", shared.RoleParent, "child-1", shared.DialogueTherapy)
	appErr, ok := shared.GetAppError(err)
	if !ok || appErr.Code != shared.CodeForbidden {
		t.Fatalf("unlinked parent error = %v, want %s", err, shared.CodeForbidden)
	}

	// Plain users never read others' reports.
	_, err = svc.GetReports("child-2", shared.RoleUser, "child-1", shared.DialogueTherapy)
	appErr, ok = shared.GetAppError(err)
	if !ok || appErr.Code != shared.CodeForbidden {
		t.Fatalf("plain user error = %v, want %s", err, shared.CodeForbidden)
	}
}
