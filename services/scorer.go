package services

import (
	gocontext "context"
	"encoding/json"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spectrum-bridge/spectrum_api/model"
	"github.com/spectrum-bridge/spectrum_api/shared"
)

// AnswerScorer decides whether a submitted answer is correct. Scorers may
// also return feedback text of their own; an empty string means the engine
// should produce feedback itself.
type AnswerScorer interface {
	Score(ctx gocontext.Context, item *model.PracticeItem, answer string) (correct bool, feedback string, err error)
}

// ExactMatchScorer compares the answer against the item's expected answer,
// ignoring case and surrounding whitespace. It never makes an external call.
type ExactMatchScorer struct{}

func NewExactMatchScorer() *ExactMatchScorer {
	return &ExactMatchScorer{}
}

func (s *ExactMatchScorer) Score(_ gocontext.Context, item *model.PracticeItem, answer string) (bool, string, error) {
	expected := strings.TrimSpace(item.CorrectAnswer)
	given := strings.TrimSpace(answer)
	return strings.EqualFold(expected, given), "", nil
}

// JudgedScorer asks the completion provider to evaluate a free-form answer
// against the item. If the verdict cannot be parsed the answer is treated
// as incorrect and the raw reply is surfaced as feedback, so a misbehaving
// model can never award points.
type JudgedScorer struct {
	provider CompletionProvider
	prompt   string
}

func NewJudgedScorer(provider CompletionProvider, prompt string) *JudgedScorer {
	return &JudgedScorer{provider: provider, prompt: prompt}
}

type judgedVerdict struct {
	Verdict string `json:"verdict"`
	Message string `json:"message"`
}

func (s *JudgedScorer) Score(ctx gocontext.Context, item *model.PracticeItem, answer string) (bool, string, error) {
	userContent := fmt.Sprintf("Situation: %s\n", item.Content)
	if item.EvaluationContext != "" {
		userContent += fmt.Sprintf("What to look for: %s\n", item.EvaluationContext)
	}
	userContent += fmt.Sprintf("The user responded: %s", answer)

	reply, err := s.provider.Complete(ctx, []model.ChatMessage{
		{Role: shared.ChatRoleSystem, Content: s.prompt},
		{Role: shared.ChatRoleUser, Content: userContent},
	})
	if err != nil {
		return false, "", err
	}

	verdict, parseErr := parseVerdict(reply)
	if parseErr != nil {
		// Fail closed on an unparseable verdict.
		log.WithField("reply_length", len(reply)).Warn("Failed to parse judged verdict")
		return false, strings.TrimSpace(reply), nil
	}

	correct := strings.EqualFold(strings.TrimSpace(verdict.Verdict), "correct")
	return correct, verdict.Message, nil
}

func parseVerdict(reply string) (*judgedVerdict, error) {
	cleaned := strings.TrimSpace(reply)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON object found in reply")
	}

	var verdict judgedVerdict
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &verdict); err != nil {
		return nil, err
	}
	if verdict.Verdict == "" {
		return nil, fmt.Errorf("verdict field missing")
	}
	return &verdict, nil
}
