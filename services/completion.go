package services

import (
	gocontext "context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"
	"github.com/spectrum-bridge/spectrum_api/model"
	"github.com/spectrum-bridge/spectrum_api/shared"
)

// CompletionProvider produces a single assistant reply for a chat transcript.
// Implementations must not mutate the passed messages.
type CompletionProvider interface {
	Complete(ctx gocontext.Context, messages []model.ChatMessage) (string, error)
}

// CompletionService talks to an OpenAI-compatible chat completions endpoint.
type CompletionService struct {
	context.DefaultService

	baseURL string
	apiKey  string
	model   string

	client     *http.Client
	monitoring *MonitoringService
}

const COMPLETION_SVC = "completion_svc"

func (svc CompletionService) Id() string {
	return COMPLETION_SVC
}

func (svc *CompletionService) Configure(ctx *context.Context) error {
	svc.baseURL = os.Getenv("OPENAI_BASE_URL")
	if svc.baseURL == "" {
		svc.baseURL = "https://api.openai.com/v1"
	}
	svc.baseURL = strings.TrimRight(svc.baseURL, "/")

	svc.apiKey = os.Getenv("OPENAI_API_KEY")

	svc.model = os.Getenv("OPENAI_MODEL")
	if svc.model == "" {
		svc.model = "gpt-4o-mini"
	}

	timeout := 60 * time.Second
	if v := os.Getenv("OPENAI_TIMEOUT_SECONDS"); v != "" {
		var secs int
		if _, err := fmt.Sscanf(v, "%d", &secs); err == nil && secs > 0 {
			timeout = time.Duration(secs) * time.Second
		}
	}

	svc.client = &http.Client{Timeout: timeout}

	return svc.DefaultService.Configure(ctx)
}

func (svc *CompletionService) Start() error {
	svc.monitoring, _ = svc.Service(MONITORING_SVC).(*MonitoringService)

	if svc.apiKey == "" {
		log.Warn("OPENAI_API_KEY is not set, completion requests will fail")
	}
	return nil
}

func (svc *CompletionService) recordOutcome(outcome string, started time.Time) {
	if svc.monitoring != nil {
		svc.monitoring.RecordCompletionRequest(outcome, time.Since(started))
	}
}

type completionRequest struct {
	Model    string              `json:"model"`
	Messages []completionMessage `json:"messages"`
}

type completionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (svc *CompletionService) Complete(ctx gocontext.Context, messages []model.ChatMessage) (string, error) {
	started := time.Now()

	reqMessages := make([]completionMessage, 0, len(messages))
	for _, m := range messages {
		reqMessages = append(reqMessages, completionMessage{Role: m.Role, Content: m.Content})
	}

	payload, err := sonic.Marshal(completionRequest{
		Model:    svc.model,
		Messages: reqMessages,
	})
	if err != nil {
		return "", shared.NewProviderError(err, "failed to encode completion request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, svc.baseURL+"/chat/completions", strings.NewReader(string(payload)))
	if err != nil {
		return "", shared.NewProviderError(err, "failed to build completion request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+svc.apiKey)

	resp, err := svc.client.Do(req)
	if err != nil {
		svc.recordOutcome("error", started)
		return "", shared.NewProviderError(err, "completion request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", shared.NewProviderError(err, "failed to read completion response")
	}

	if resp.StatusCode != http.StatusOK {
		// Error bodies are JSON from the provider but may be HTML from a
		// proxy in front of it, so the status code always makes the message.
		msg := fmt.Sprintf("completion endpoint returned status %d", resp.StatusCode)
		var out completionResponse
		if err := sonic.Unmarshal(body, &out); err == nil && out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		log.WithFields(log.Fields{
			"status": resp.StatusCode,
			"model":  svc.model,
		}).Warn("Completion request rejected")
		svc.recordOutcome("rejected", started)
		return "", shared.NewProviderError(nil, msg)
	}

	var out completionResponse
	if err := sonic.Unmarshal(body, &out); err != nil {
		return "", shared.NewProviderError(err, "failed to decode completion response")
	}

	if len(out.Choices) == 0 {
		svc.recordOutcome("empty", started)
		return "", shared.NewProviderError(nil, "completion response contained no choices")
	}

	svc.recordOutcome("ok", started)
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
