package services

import (
	gocontext "context"
	"errors"
	"testing"

	"github.com/spectrum-bridge/spectrum_api/model"
)

func TestExactMatchScorer(t *testing.T) {
	scorer := NewExactMatchScorer()
	item := &model.PracticeItem{Content: "/assets/expressions/laughing.png", CorrectAnswer: "laughing"}

	cases := []struct {
		answer string
		want   bool
	}{
		{"laughing", true},
		{"Laughing", true},
		{"  LAUGHING  ", true},
		{"crying", false},
		{"", false},
		{"laughing out loud", false},
	}
	for _, tc := range cases {
		correct, feedback, err := scorer.Score(gocontext.Background(), item, tc.answer)
		if err != nil {
			t.Fatalf("Score(%q): %v", tc.answer, err)
		}
		if correct != tc.want {
			t.Errorf("Score(%q) = %v, want %v", tc.answer, correct, tc.want)
		}
		if feedback != "" {
			t.Errorf("Score(%q) produced feedback %q, want none", tc.answer, feedback)
		}
	}
}

func TestJudgedScorerCorrectVerdict(t *testing.T) {
	provider := &scriptedProvider{replies: []string{`{"verdict": "Correct", "message": "Nice greeting!"}`}}
	scorer := NewJudgedScorer(provider, judgedScoringPrompt)
	item := &model.PracticeItem{
		Content:           "A classmate says hello to you in the hallway.",
		EvaluationContext: "Greets the classmate back.",
	}

	correct, feedback, err := scorer.Score(gocontext.Background(), item, "Hi there!")
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if !correct {
		t.Error("correct verdict scored as incorrect")
	}
	if feedback != "Nice greeting!" {
		t.Errorf("feedback = %q", feedback)
	}
}

func TestJudgedScorerIncorrectVerdict(t *testing.T) {
	provider := &scriptedProvider{replies: []string{`{"verdict": "incorrect", "message": "Try greeting them back."}`}}
	scorer := NewJudgedScorer(provider, judgedScoringPrompt)
	item := &model.PracticeItem{Content: "A classmate says hello."}

	correct, feedback, err := scorer.Score(gocontext.Background(), item, "I walk away.")
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if correct {
		t.Error("incorrect verdict scored as correct")
	}
	if feedback != "Try greeting them back." {
		t.Errorf("feedback = %q", feedback)
	}
}

func TestJudgedScorerCodeFencedVerdict(t *testing.T) {
	provider := &scriptedProvider{replies: []string{"```json\n{\"verdict\": \"correct\", \"message\": \"Well done.\"}\n```"}}
	scorer := NewJudgedScorer(provider, judgedScoringPrompt)
	item := &model.PracticeItem{Content: "situation"}

	correct, _, err := scorer.Score(gocontext.Background(), item, "answer")
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if !correct {
		t.Error("fenced verdict not parsed")
	}
}

// An unparseable verdict must never award the answer.
func TestJudgedScorerFailsClosed(t *testing.T) {
	provider := &scriptedProvider{replies: []string{"Sure! That response sounds great to me."}}
	scorer := NewJudgedScorer(provider, judgedScoringPrompt)
	item := &model.PracticeItem{Content: "situation"}

	correct, feedback, err := scorer.Score(gocontext.Background(), item, "answer")
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if correct {
		t.Error("unparseable verdict awarded the answer")
	}
	if feedback != "Sure! That response sounds great to me." {
		t.Errorf("feedback = %q, want the raw reply", feedback)
	}
}

func TestJudgedScorerProviderError(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("timeout")}
	scorer := NewJudgedScorer(provider, judgedScoringPrompt)
	item := &model.PracticeItem{Content: "situation"}

	if _, _, err := scorer.Score(gocontext.Background(), item, "answer"); err == nil {
		t.Fatal("expected provider error to propagate")
	}
}

func TestParseVerdictMissingField(t *testing.T) {
	if _, err := parseVerdict(`{"message": "no verdict here"}`); err == nil {
		t.Error("expected error for missing verdict field")
	}
	if _, err := parseVerdict("no json at all"); err == nil {
		t.Error("expected error for reply without JSON")
	}
}
