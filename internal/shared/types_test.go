package shared

import (
	"strings"
	"testing"
	"time"
)

func TestNewID(t *testing.T) {
	id := NewID("sess_")
	if !strings.HasPrefix(id, "sess_") {
		t.Errorf("expected prefix 'sess_', got '%s'", id)
	}
	if len(id) != len("sess_")+32 {
		t.Errorf("expected 32 hex chars after prefix, got length %d", len(id))
	}

	other := NewID("sess_")
	if id == other {
		t.Error("expected distinct ids")
	}
}

func TestNormalizeBackoff_Defaults(t *testing.T) {
	cfg := NormalizeBackoff(BackoffConfig{})
	if cfg.Initial != time.Second {
		t.Errorf("expected initial 1s, got %v", cfg.Initial)
	}
	if cfg.MaxDelay != 30*time.Second {
		t.Errorf("expected max delay 30s, got %v", cfg.MaxDelay)
	}
	if cfg.Multiplier != 2 {
		t.Errorf("expected multiplier 2, got %v", cfg.Multiplier)
	}
	if cfg.MaxAttempts != 5 {
		t.Errorf("expected max attempts 5, got %d", cfg.MaxAttempts)
	}
}

func TestNormalizeBackoff_KeepsExplicitValues(t *testing.T) {
	cfg := NormalizeBackoff(BackoffConfig{
		Initial:     10 * time.Millisecond,
		MaxDelay:    100 * time.Millisecond,
		Multiplier:  3,
		MaxAttempts: 2,
	})
	if cfg.Initial != 10*time.Millisecond || cfg.MaxDelay != 100*time.Millisecond {
		t.Errorf("explicit delays were overwritten: %+v", cfg)
	}
	if cfg.Multiplier != 3 || cfg.MaxAttempts != 2 {
		t.Errorf("explicit multiplier/attempts were overwritten: %+v", cfg)
	}
}

func TestBackoffConfig_DelayFor(t *testing.T) {
	cfg := NormalizeBackoff(BackoffConfig{})

	want := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
	}
	for i, expected := range want {
		got := cfg.DelayFor(i + 1)
		if got != expected {
			t.Errorf("attempt %d: expected %v, got %v", i+1, expected, got)
		}
	}
}

func TestBackoffConfig_DelayFor_Cap(t *testing.T) {
	cfg := NormalizeBackoff(BackoffConfig{})
	if got := cfg.DelayFor(6); got != 30*time.Second {
		t.Errorf("attempt 6 should hit the cap, got %v", got)
	}
	if got := cfg.DelayFor(20); got != 30*time.Second {
		t.Errorf("attempt 20 should hit the cap, got %v", got)
	}
}

func TestBackoffConfig_DelayFor_ZeroAttempt(t *testing.T) {
	cfg := NormalizeBackoff(BackoffConfig{})
	if got := cfg.DelayFor(0); got != time.Second {
		t.Errorf("attempt 0 should clamp to first delay, got %v", got)
	}
}
