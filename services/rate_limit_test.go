package services

import (
	"testing"
	"time"

	"github.com/spectrum-bridge/spectrum_api/model"
)

func TestBuildRateLimitConfigMapSkipsZeroWindow(t *testing.T) {
	configs := []model.RateLimitConfig{
		{EndpointType: "api_general", MaxRequests: 100, WindowSize: 60, BlockTime: 300},
		{EndpointType: "practice_start", MaxRequests: 10, WindowSize: 0, BlockTime: 300},
		{EndpointType: "answer_submit", MaxRequests: 30, WindowSize: -5, BlockTime: 60},
	}

	got := buildRateLimitConfigMap(configs)

	if len(got) != 1 {
		t.Fatalf("len(configs) = %d, want 1", len(got))
	}
	if _, exists := got["practice_start"]; exists {
		t.Error("zero-window config was loaded")
	}
	if _, exists := got["answer_submit"]; exists {
		t.Error("negative-window config was loaded")
	}

	cfg := got["api_general"]
	if cfg == nil {
		t.Fatal("valid config missing")
	}
	if cfg.MaxRequests != 100 || cfg.WindowSize != 60*time.Second || cfg.BlockTime != 300*time.Second {
		t.Errorf("config = %+v", cfg)
	}
}
