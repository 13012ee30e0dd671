package services

import (
	gocontext "context"
	"testing"

	"github.com/spectrum-bridge/spectrum_api/model"
	"github.com/spectrum-bridge/spectrum_api/shared"
)

func TestRandomSampleSelectorMapsExpressions(t *testing.T) {
	store := newFakePracticeStore(testCorpus(2))
	selector := NewRandomSampleSelector(store)

	items, err := selector.Select(gocontext.Background(), "user-1", 5)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	for _, item := range items {
		if item.Content == "" || item.CorrectAnswer == "" {
			t.Errorf("item missing content or answer: %+v", item)
		}
		if item.EvaluationContext != "" {
			t.Errorf("quiz item carries evaluation context: %+v", item)
		}
	}
}

func TestRandomSampleSelectorEmptyCorpus(t *testing.T) {
	selector := NewRandomSampleSelector(newFakePracticeStore(nil))

	_, err := selector.Select(gocontext.Background(), "user-1", 5)
	appErr, ok := shared.GetAppError(err)
	if !ok || appErr.Code != shared.CodeInsufficientData {
		t.Fatalf("error = %v, want %s", err, shared.CodeInsufficientData)
	}
}

func TestStaticSelectorClampsCount(t *testing.T) {
	selector := NewStaticSelector(socialDrillCorpus())

	items, err := selector.Select(gocontext.Background(), "user-1", 100)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(items) != len(socialDrillCorpus()) {
		t.Errorf("len(items) = %d, want %d", len(items), len(socialDrillCorpus()))
	}

	items, err = selector.Select(gocontext.Background(), "user-1", 3)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("len(items) = %d, want 3", len(items))
	}
}

func TestStaticSelectorPreservesOrder(t *testing.T) {
	corpus := socialDrillCorpus()
	selector := NewStaticSelector(corpus)

	for run := 0; run < 5; run++ {
		items, err := selector.Select(gocontext.Background(), "user-1", 3)
		if err != nil {
			t.Fatalf("Select: %v", err)
		}
		for i, item := range items {
			if item.Content != corpus[i].Content {
				t.Fatalf("items[%d].Content = %q, want %q", i, item.Content, corpus[i].Content)
			}
		}
	}
}

func TestStaticSelectorEmpty(t *testing.T) {
	selector := NewStaticSelector(nil)

	_, err := selector.Select(gocontext.Background(), "user-1", 3)
	appErr, ok := shared.GetAppError(err)
	if !ok || appErr.Code != shared.CodeInsufficientData {
		t.Fatalf("error = %v, want %s", err, shared.CodeInsufficientData)
	}
}

func TestStaticSelectorDoesNotMutateCorpus(t *testing.T) {
	corpus := []model.PracticeItem{
		{Content: "a"}, {Content: "b"}, {Content: "c"}, {Content: "d"},
	}
	selector := NewStaticSelector(corpus)

	for i := 0; i < 10; i++ {
		if _, err := selector.Select(gocontext.Background(), "user-1", 4); err != nil {
			t.Fatalf("Select: %v", err)
		}
	}
	want := []string{"a", "b", "c", "d"}
	for i, item := range corpus {
		if item.Content != want[i] {
			t.Fatalf("corpus mutated: %+v", corpus)
		}
	}
}

func TestParseGeneratedItems(t *testing.T) {
	cases := []struct {
		name  string
		reply string
		want  int
	}{
		{"plain array", `[{"situation":"a","context":"x"}]`, 1},
		{"fenced array", "```json\n[{\"situation\":\"a\",\"context\":\"x\"},{\"situation\":\"b\",\"context\":\"y\"}]\n```", 2},
		{"prose around array", `Here are your scenarios: [{"situation":"a","context":"x"}] Hope these help!`, 1},
		{"blank situations filtered", `[{"situation":"a","context":"x"},{"situation":"  ","context":"y"}]`, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items, err := parseGeneratedItems(tc.reply)
			if err != nil {
				t.Fatalf("parseGeneratedItems: %v", err)
			}
			if len(items) != tc.want {
				t.Errorf("len(items) = %d, want %d", len(items), tc.want)
			}
		})
	}
}

func TestParseGeneratedItemsRejectsGarbage(t *testing.T) {
	for _, reply := range []string{"", "no array here", "[not json]"} {
		if _, err := parseGeneratedItems(reply); err == nil {
			t.Errorf("parseGeneratedItems(%q) succeeded, want error", reply)
		}
	}
}

func TestGenerativeSelectorEvaluationContextCarriedOver(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		`[{"situation":"You are waiting in a long line.","context":"Waits patiently or makes small talk."}]`,
	}}
	selector := NewGenerativeSelector(provider, scenarioGenerationPrompt)

	items, err := selector.Select(gocontext.Background(), "user-1", 1)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if items[0].Content != "You are waiting in a long line." {
		t.Errorf("Content = %q", items[0].Content)
	}
	if items[0].EvaluationContext != "Waits patiently or makes small talk." {
		t.Errorf("EvaluationContext = %q", items[0].EvaluationContext)
	}
	if items[0].CorrectAnswer != "" {
		t.Error("generated item carries an exact answer")
	}
}
