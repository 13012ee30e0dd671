package services

import (
	gocontext "context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/spectrum-bridge/spectrum_api/model"
	"github.com/spectrum-bridge/spectrum_api/shared"
)

func newTestCompletionService(baseURL string) *CompletionService {
	return &CompletionService{
		baseURL: baseURL,
		apiKey:  "test-key",
		model:   "test-model",
		client:  http.DefaultClient,
	}
}

func TestCompleteSuccess(t *testing.T) {
	var gotAuth string
	var gotBody completionRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		if err := sonic.Unmarshal(body, &gotBody); err != nil {
			t.Errorf("request body: %v", err)
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"  Hello there!  "}}]}`))
	}))
	defer server.Close()

	svc := newTestCompletionService(server.URL)
	reply, err := svc.Complete(gocontext.Background(), []model.ChatMessage{
		{Role: shared.ChatRoleSystem, Content: "be kind"},
		{Role: shared.ChatRoleUser, Content: "hi"},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if reply != "Hello there!" {
		t.Errorf("reply = %q, want trimmed content", reply)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotBody.Model != "test-model" || len(gotBody.Messages) != 2 {
		t.Errorf("request = %+v", gotBody)
	}
}

func TestCompleteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limit exceeded","type":"rate_limit_error"}}`))
	}))
	defer server.Close()

	svc := newTestCompletionService(server.URL)
	_, err := svc.Complete(gocontext.Background(), []model.ChatMessage{{Role: shared.ChatRoleUser, Content: "hi"}})

	appErr, ok := shared.GetAppError(err)
	if !ok || appErr.Code != shared.CodeProviderError {
		t.Fatalf("error = %v, want %s", err, shared.CodeProviderError)
	}
	if appErr.Message != "rate limit exceeded" {
		t.Errorf("message = %q, want the API error message", appErr.Message)
	}
}

func TestCompleteNonJSONErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html><body>502 Bad Gateway</body></html>`))
	}))
	defer server.Close()

	svc := newTestCompletionService(server.URL)
	_, err := svc.Complete(gocontext.Background(), []model.ChatMessage{{Role: shared.ChatRoleUser, Content: "hi"}})

	appErr, ok := shared.GetAppError(err)
	if !ok || appErr.Code != shared.CodeProviderError {
		t.Fatalf("error = %v, want %s", err, shared.CodeProviderError)
	}
	if appErr.Message != "completion endpoint returned status 502" {
		t.Errorf("message = %q, want the status code surfaced", appErr.Message)
	}
}

func TestCompleteNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	svc := newTestCompletionService(server.URL)
	_, err := svc.Complete(gocontext.Background(), []model.ChatMessage{{Role: shared.ChatRoleUser, Content: "hi"}})

	appErr, ok := shared.GetAppError(err)
	if !ok || appErr.Code != shared.CodeProviderError {
		t.Fatalf("error = %v, want %s", err, shared.CodeProviderError)
	}
}

func TestCompleteConnectionRefused(t *testing.T) {
	svc := newTestCompletionService("http://127.0.0.1:1")

	_, err := svc.Complete(gocontext.Background(), []model.ChatMessage{{Role: shared.ChatRoleUser, Content: "hi"}})
	appErr, ok := shared.GetAppError(err)
	if !ok || appErr.Code != shared.CodeProviderError {
		t.Fatalf("error = %v, want %s", err, shared.CodeProviderError)
	}
}
