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

// ItemSelector builds the item list for a new practice session. Selectors
// never return an empty list without an error.
type ItemSelector interface {
	Select(ctx gocontext.Context, userID string, count int) ([]model.PracticeItem, error)
}

// ExpressionStore is the slice of storage the random sample selector needs.
type ExpressionStore interface {
	SampleExpressions(limit int) ([]model.Expression, error)
}

// RandomSampleSelector draws a random subset of the expression corpus.
// The item content is the expression image URL and the expected answer is
// its label.
type RandomSampleSelector struct {
	store ExpressionStore
}

func NewRandomSampleSelector(store ExpressionStore) *RandomSampleSelector {
	return &RandomSampleSelector{store: store}
}

func (s *RandomSampleSelector) Select(_ gocontext.Context, _ string, count int) ([]model.PracticeItem, error) {
	expressions, err := s.store.SampleExpressions(count)
	if err != nil {
		return nil, shared.NewInternalError(err, "failed to load expressions")
	}
	if len(expressions) == 0 {
		return nil, shared.NewInsufficientDataError(nil, "no expressions available for a practice session")
	}

	items := make([]model.PracticeItem, 0, len(expressions))
	for _, e := range expressions {
		items = append(items, model.PracticeItem{
			Content:       e.ImageURL,
			CorrectAnswer: e.Label,
		})
	}
	return items, nil
}

// StaticSelector serves a fixed, ordered item list. Every session sees the
// same items in the same order; count only truncates the tail.
type StaticSelector struct {
	items []model.PracticeItem
}

func NewStaticSelector(items []model.PracticeItem) *StaticSelector {
	return &StaticSelector{items: items}
}

func (s *StaticSelector) Select(_ gocontext.Context, _ string, count int) ([]model.PracticeItem, error) {
	if len(s.items) == 0 {
		return nil, shared.NewInsufficientDataError(nil, "no items configured for this feature")
	}

	if count > len(s.items) {
		count = len(s.items)
	}

	items := make([]model.PracticeItem, count)
	copy(items, s.items[:count])
	return items, nil
}

// GenerativeSelector asks the completion provider for fresh items and
// parses them out of the reply. A reply that cannot be parsed into at
// least one item fails the whole selection, so no session is created from
// garbage output.
type GenerativeSelector struct {
	provider CompletionProvider
	prompt   string
}

func NewGenerativeSelector(provider CompletionProvider, prompt string) *GenerativeSelector {
	return &GenerativeSelector{provider: provider, prompt: prompt}
}

type generatedItem struct {
	Situation string `json:"situation"`
	Context   string `json:"context"`
}

func (s *GenerativeSelector) Select(ctx gocontext.Context, _ string, count int) ([]model.PracticeItem, error) {
	reply, err := s.provider.Complete(ctx, []model.ChatMessage{
		{Role: shared.ChatRoleSystem, Content: s.prompt},
		{Role: shared.ChatRoleUser, Content: fmt.Sprintf("Generate %d scenarios.", count)},
	})
	if err != nil {
		return nil, err
	}

	parsed, err := parseGeneratedItems(reply)
	if err != nil {
		log.WithField("reply_length", len(reply)).Warn("Failed to parse generated scenarios")
		return nil, shared.NewGenerationParseError(err, "could not parse generated scenarios")
	}
	if len(parsed) == 0 {
		return nil, shared.NewGenerationParseError(nil, "generated reply contained no scenarios")
	}

	if len(parsed) > count {
		parsed = parsed[:count]
	}

	items := make([]model.PracticeItem, 0, len(parsed))
	for _, g := range parsed {
		items = append(items, model.PracticeItem{
			Content:           g.Situation,
			EvaluationContext: g.Context,
		})
	}
	return items, nil
}

// parseGeneratedItems extracts a JSON array from a model reply, tolerating
// markdown code fences and prose around the array.
func parseGeneratedItems(reply string) ([]generatedItem, error) {
	cleaned := strings.TrimSpace(reply)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON array found in reply")
	}

	var items []generatedItem
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &items); err != nil {
		return nil, err
	}

	valid := items[:0]
	for _, it := range items {
		if strings.TrimSpace(it.Situation) == "" {
			continue
		}
		valid = append(valid, it)
	}
	return valid, nil
}
