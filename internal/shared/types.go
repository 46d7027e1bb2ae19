package shared

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

func NewID(prefix string) string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return prefix + hex.EncodeToString(b)
}

// BackoffConfig describes an exponential retry schedule: the delay before
// attempt n is Initial * Multiplier^(n-1), capped at MaxDelay. Attempts are
// 1-based; MaxAttempts bounds how many retries are scheduled in total.
type BackoffConfig struct {
	Initial     time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
	MaxAttempts int
}

func NormalizeBackoff(cfg BackoffConfig) BackoffConfig {
	if cfg.Initial <= 0 {
		cfg.Initial = time.Second
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 30 * time.Second
	}
	if cfg.Multiplier <= 1 {
		cfg.Multiplier = 2
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	return cfg
}

// DelayFor returns the delay preceding retry attempt n (1-based).
func (c BackoffConfig) DelayFor(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := c.Initial
	for i := 1; i < attempt; i++ {
		d = time.Duration(float64(d) * c.Multiplier)
		if d >= c.MaxDelay {
			return c.MaxDelay
		}
	}
	return minDuration(d, c.MaxDelay)
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
