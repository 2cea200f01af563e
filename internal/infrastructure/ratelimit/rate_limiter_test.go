package ratelimit

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowWithinCap(t *testing.T) {
	rl := NewRateLimiter()

	for i := 0; i < 5; i++ {
		allowed, wait := rl.Allow("user-1", "submit_review")
		assert.True(t, allowed, "request %d should pass", i)
		assert.Zero(t, wait)
	}

	allowed, wait := rl.Allow("user-1", "submit_review")
	assert.False(t, allowed)
	assert.Greater(t, wait, time.Duration(0))
}

func TestAllowRecoversAfterWindow(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter()
	rl.now = func() time.Time { return current }

	for i := 0; i < 20; i++ {
		allowed, _ := rl.Allow("user-1", "send_message")
		assert.True(t, allowed)
	}

	allowed, wait := rl.Allow("user-1", "send_message")
	assert.False(t, allowed)
	assert.Equal(t, time.Minute, wait)

	// Oldest event falls out of the window.
	current = current.Add(61 * time.Second)
	allowed, _ = rl.Allow("user-1", "send_message")
	assert.True(t, allowed)
}

func TestSlidingWindowIsPartial(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter()
	rl.now = func() time.Time { return current }

	// Ten events now, ten events 30s later.
	for i := 0; i < 10; i++ {
		rl.Allow("user-1", "send_message")
	}
	current = current.Add(30 * time.Second)
	for i := 0; i < 10; i++ {
		rl.Allow("user-1", "send_message")
	}

	allowed, _ := rl.Allow("user-1", "send_message")
	assert.False(t, allowed)

	// 61s after the first batch only the second batch still counts.
	current = current.Add(31 * time.Second)
	for i := 0; i < 10; i++ {
		allowed, _ := rl.Allow("user-1", "send_message")
		assert.True(t, allowed, "request %d should fit after first batch expired", i)
	}
	allowed, _ = rl.Allow("user-1", "send_message")
	assert.False(t, allowed)
}

func TestCountersAreIndependentPerUserAndAction(t *testing.T) {
	rl := NewRateLimiter()

	for i := 0; i < 5; i++ {
		rl.Allow("user-1", "submit_review")
	}

	allowed, _ := rl.Allow("user-1", "submit_review")
	assert.False(t, allowed)

	// Other users and other actions are unaffected.
	allowed, _ = rl.Allow("user-2", "submit_review")
	assert.True(t, allowed)
	allowed, _ = rl.Allow("user-1", "send_message")
	assert.True(t, allowed)
}

func TestCleanupRemovesIdleWindows(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter()
	rl.now = func() time.Time { return current }

	for i := 0; i < 10; i++ {
		rl.Allow(fmt.Sprintf("user-%d", i), "send_message")
	}
	assert.Len(t, rl.windows, 10)

	current = current.Add(2 * time.Hour)
	rl.Cleanup()
	assert.Empty(t, rl.windows)
}
