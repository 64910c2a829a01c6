package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestWait_UnderLimitDoesNotBlock(t *testing.T) {
	l := New(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("Wait %d returned %v", i, err)
		}
	}
	if got := l.Used(); got != 3 {
		t.Errorf("Used() = %d, want 3", got)
	}
}

func TestWait_BlocksWhenExhaustedUntilContextDone(t *testing.T) {
	l := New(1, time.Minute)
	if err := l.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := l.Wait(ctx)
	if err == nil {
		t.Fatal("Wait returned without capacity")
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Wait returned after %s, expected it to block until ctx expiry", elapsed)
	}
}

func TestWait_SlotsFreeUpAfterWindow(t *testing.T) {
	l := New(2, time.Minute)

	// Backdate the clock so recorded calls age out of the window.
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	ctx := context.Background()
	if err := l.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	if err := l.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	if got := l.Used(); got != 2 {
		t.Fatalf("Used() = %d, want 2", got)
	}

	now = now.Add(2 * time.Minute)
	if got := l.Used(); got != 0 {
		t.Errorf("Used() after window = %d, want 0", got)
	}
	if err := l.Wait(ctx); err != nil {
		t.Errorf("Wait after window returned %v", err)
	}
}

func TestWait_DisabledLimiter(t *testing.T) {
	l := New(0, time.Minute)
	for i := 0; i < 100; i++ {
		if err := l.Wait(context.Background()); err != nil {
			t.Fatalf("disabled limiter blocked on call %d: %v", i, err)
		}
	}

	var nilLimiter *Limiter
	if err := nilLimiter.Wait(context.Background()); err != nil {
		t.Errorf("nil limiter returned %v", err)
	}
}
