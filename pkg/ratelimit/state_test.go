package ratelimit

import (
	"testing"
	"time"
)

var testNow = time.Date(2024, time.April, 26, 15, 0, 0, 0, time.UTC)

func TestState_IsStale(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		maxAge   time.Duration
		expected bool
	}{
		{
			name:     "fresh state",
			state:    State{LastUpdate: testNow},
			maxAge:   5 * time.Minute,
			expected: false,
		},
		{
			name:     "stale state",
			state:    State{LastUpdate: testNow.Add(-10 * time.Minute)},
			maxAge:   5 * time.Minute,
			expected: true,
		},
		{
			name:     "just under max age",
			state:    State{LastUpdate: testNow.Add(-4 * time.Minute)},
			maxAge:   5 * time.Minute,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsStale(testNow, tt.maxAge); got != tt.expected {
				t.Errorf("IsStale() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_Exhausted(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{
			name:     "unknown state",
			state:    State{},
			expected: false,
		},
		{
			name:     "quota left",
			state:    State{Remaining: 10, ResetAt: testNow.Add(time.Minute), LastUpdate: testNow},
			expected: false,
		},
		{
			name:     "quota used up before reset",
			state:    State{Remaining: 0, ResetAt: testNow.Add(time.Minute), LastUpdate: testNow},
			expected: true,
		},
		{
			name:     "quota used up after reset",
			state:    State{Remaining: 0, ResetAt: testNow.Add(-time.Second), LastUpdate: testNow.Add(-time.Minute)},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Exhausted(testNow); got != tt.expected {
				t.Errorf("Exhausted() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_TimeUntilReset(t *testing.T) {
	tests := []struct {
		name     string
		resetAt  time.Time
		expected time.Duration
	}{
		{"reset in future", testNow.Add(5 * time.Minute), 5 * time.Minute},
		{"reset already passed", testNow.Add(-5 * time.Minute), 0},
		{"reset now", testNow, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := State{ResetAt: tt.resetAt}
			if got := state.TimeUntilReset(testNow); got != tt.expected {
				t.Errorf("TimeUntilReset() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_Known(t *testing.T) {
	var empty State
	if empty.Known() {
		t.Error("zero State should not be known")
	}

	updated := State{LastUpdate: testNow}
	if !updated.Known() {
		t.Error("State with LastUpdate should be known")
	}
}
