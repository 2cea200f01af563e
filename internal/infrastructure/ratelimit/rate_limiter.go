package ratelimit

import (
	"sync"
	"time"
)

// slidingWindow counts events inside a rolling time window. Events older than
// the window fall out of the count on every call.
type slidingWindow struct {
	events []time.Time
	cap    int
	window time.Duration
	mutex  sync.Mutex
}

func newSlidingWindow(cap int, window time.Duration) *slidingWindow {
	return &slidingWindow{
		cap:    cap,
		window: window,
	}
}

// allow records the event and reports whether it fits in the window. When the
// cap is reached it also reports how long until the oldest counted event
// expires.
func (w *slidingWindow) allow(now time.Time) (bool, time.Duration) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	cutoff := now.Add(-w.window)
	kept := w.events[:0]
	for _, t := range w.events {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	w.events = kept

	if len(w.events) >= w.cap {
		waitTime := w.events[0].Add(w.window).Sub(now)
		return false, waitTime
	}

	w.events = append(w.events, now)
	return true, 0
}

func (w *slidingWindow) lastEvent() time.Time {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if len(w.events) == 0 {
		return time.Time{}
	}
	return w.events[len(w.events)-1]
}

// RateLimiter bounds how often a given user may perform an action kind,
// keyed by userID:action with a fixed per-window cap.
type RateLimiter struct {
	windows map[string]*slidingWindow
	mutex   sync.RWMutex
	now     func() time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]*slidingWindow),
		now:     time.Now,
	}
}

func limitsFor(action string) (int, time.Duration) {
	switch action {
	case "send_message":
		// 20 messages per minute
		return 20, time.Minute
	case "create_thread":
		// 10 new conversations per hour
		return 10, time.Hour
	case "submit_review":
		// 5 reviews per hour
		return 5, time.Hour
	case "add_favorite":
		// 60 favorites per hour
		return 60, time.Hour
	default:
		// 30 actions per minute
		return 30, time.Minute
	}
}

// Allow checks whether a user action fits its window and records it if so.
func (rl *RateLimiter) Allow(userID, action string) (bool, time.Duration) {
	key := userID + ":" + action

	rl.mutex.RLock()
	window, exists := rl.windows[key]
	rl.mutex.RUnlock()

	if !exists {
		rl.mutex.Lock()
		// Double-check pattern
		if window, exists = rl.windows[key]; !exists {
			cap, duration := limitsFor(action)
			window = newSlidingWindow(cap, duration)
			rl.windows[key] = window
		}
		rl.mutex.Unlock()
	}

	return window.allow(rl.now())
}

// Cleanup removes windows with no recent events.
func (rl *RateLimiter) Cleanup() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	for key, window := range rl.windows {
		last := window.lastEvent()
		if last.IsZero() || now.Sub(last) > window.window+time.Hour {
			delete(rl.windows, key)
		}
	}
}

// StartCleanupRoutine starts a cleanup routine that runs periodically.
func (rl *RateLimiter) StartCleanupRoutine() {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			rl.Cleanup()
		}
	}()
}
