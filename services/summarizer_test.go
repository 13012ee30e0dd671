package services

import (
	gocontext "context"
	"errors"
	"testing"

	"github.com/spectrum-bridge/spectrum_api/model"
)

func summaryFixture() (*model.PracticeSession, []model.PracticeItem) {
	session := &model.PracticeSession{ID: "session-1", Points: 15}
	items := []model.PracticeItem{
		{Content: "/assets/expressions/happy.png", CorrectAnswer: "happy", Attempts: 1, IsCorrect: true},
		{Content: "/assets/expressions/sad.png", CorrectAnswer: "sad", Attempts: 2, IsCorrect: true},
		{Content: "A classmate says hello.", Attempts: 1},
	}
	return session, items
}

func TestTranscriptFormat(t *testing.T) {
	summarizer := NewSessionSummarizer(&scriptedProvider{})
	session, items := summaryFixture()

	got := summarizer.Transcript(session, items)
	want := "Item #1: happy, attempts: 1, correct\n" +
		"Item #2: sad, attempts: 2, correct\n" +
		"Item #3: A classmate says hello., attempts: 1, incorrect\n" +
		"Total points: 15"
	if got != want {
		t.Errorf("Transcript:\n%s\nwant:\n%s", got, want)
	}
}

func TestSummarizeUsesProviderReply(t *testing.T) {
	provider := &scriptedProvider{replies: []string{"You nailed both expressions today!"}}
	summarizer := NewSessionSummarizer(provider)
	session, items := summaryFixture()

	got := summarizer.Summarize(gocontext.Background(), practiceSummaryPrompt, session, items)
	if got != "You nailed both expressions today!" {
		t.Errorf("Summarize = %q", got)
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1", provider.calls)
	}
}

func TestSummarizeFallsBackOnError(t *testing.T) {
	summarizer := NewSessionSummarizer(&scriptedProvider{err: errors.New("provider down")})
	session, items := summaryFixture()

	if got := summarizer.Summarize(gocontext.Background(), practiceSummaryPrompt, session, items); got != FallbackSummary {
		t.Errorf("Summarize = %q, want fallback", got)
	}
}

func TestSummarizeFallsBackOnEmptyReply(t *testing.T) {
	summarizer := NewSessionSummarizer(&scriptedProvider{replies: []string{"   "}})
	session, items := summaryFixture()

	if got := summarizer.Summarize(gocontext.Background(), practiceSummaryPrompt, session, items); got != FallbackSummary {
		t.Errorf("Summarize = %q, want fallback", got)
	}
}
