package worker

import (
	"context"
	"testing"

	"golang.org/x/time/rate"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 1 {
		t.Errorf("expected default burst 1 for negative input, got %d", l2.defaultBurst)
	}

	l3 := NewLimiter(0, 1)
	if l3.defaultRate != rate.Inf {
		t.Errorf("expected unlimited rate for non-positive input, got %v", l3.defaultRate)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1) // 100 rps, burst 1
	ctx := context.Background()

	if err := limiter.Wait(ctx, "entities"); err != nil {
		t.Errorf("wait failed: %v", err)
	}

	// A different capability has its own bucket
	if err := limiter.Wait(ctx, "synonyms"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	// 1 rps, burst 1
	limiter := NewLimiter(1, 1)
	ctx := context.Background()

	// First request consumes the only token
	if err := limiter.Wait(ctx, "entities"); err != nil {
		t.Errorf("first wait failed: %v", err)
	}

	if limiter.Allow("entities") {
		t.Errorf("expected allow to fail (exhausted tokens)")
	}

	// A different capability is unaffected
	if !limiter.Allow("synonyms") {
		t.Errorf("expected allow for other capability")
	}
}

func TestLimiter_SetRate(t *testing.T) {
	limiter := NewLimiter(10, 10) // fast default

	// Set a strict limit for one capability
	limiter.SetRate("entities", 0.1, 1)

	if !limiter.Allow("entities") {
		t.Errorf("first request should pass")
	}
	if limiter.Allow("entities") {
		t.Errorf("second request should fail")
	}

	// Other capabilities keep the fast default
	if !limiter.Allow("synonyms") {
		t.Errorf("other capability should pass")
	}
}
