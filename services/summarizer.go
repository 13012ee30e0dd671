package services

import (
	gocontext "context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spectrum-bridge/spectrum_api/model"
	"github.com/spectrum-bridge/spectrum_api/shared"
)

// FallbackSummary is stored when the completion provider cannot produce a
// closing summary. Closing a session never fails on summary generation.
const FallbackSummary = "Great work today! Your session is complete. Keep practicing to build your skills."

// SessionSummarizer turns a finished session into an encouraging summary.
type SessionSummarizer struct {
	provider CompletionProvider
}

func NewSessionSummarizer(provider CompletionProvider) *SessionSummarizer {
	return &SessionSummarizer{provider: provider}
}

// Transcript renders the session's items into a deterministic plain-text
// record of what happened.
func (s *SessionSummarizer) Transcript(session *model.PracticeSession, items []model.PracticeItem) string {
	var b strings.Builder
	for i, item := range items {
		outcome := "incorrect"
		if item.IsCorrect {
			outcome = "correct"
		}
		label := item.CorrectAnswer
		if label == "" {
			label = item.Content
		}
		fmt.Fprintf(&b, "Item #%d: %s, attempts: %d, %s\n", i+1, label, item.Attempts, outcome)
	}
	fmt.Fprintf(&b, "Total points: %d", session.Points)
	return b.String()
}

// Summarize asks the provider for a closing summary based on the session
// transcript. Provider failure falls back to a canned message rather than
// surfacing an error.
func (s *SessionSummarizer) Summarize(ctx gocontext.Context, prompt string, session *model.PracticeSession, items []model.PracticeItem) string {
	transcript := s.Transcript(session, items)

	reply, err := s.provider.Complete(ctx, []model.ChatMessage{
		{Role: shared.ChatRoleSystem, Content: prompt},
		{Role: shared.ChatRoleUser, Content: transcript},
	})
	if err != nil || strings.TrimSpace(reply) == "" {
		log.WithFields(log.Fields{
			"session_id": session.ID,
			"error":      err,
		}).Warn("Falling back to canned session summary")
		return FallbackSummary
	}
	return reply
}
