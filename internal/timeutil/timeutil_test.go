// ABOUTME: Tests for time utility functions
// ABOUTME: Covers period parsing and relative age formatting

package timeutil

import (
	"testing"
	"time"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		period string
		valid  bool
	}{
		{"today", true},
		{"yesterday", true},
		{"week", true},
		{"month", true},
		{"fortnight", false},
		{"", false},
	}

	for _, tt := range tests {
		cutoff, ok := ParsePeriod(tt.period)
		if ok != tt.valid {
			t.Errorf("ParsePeriod(%q): got ok=%v, want %v", tt.period, ok, tt.valid)
		}
		if tt.valid && cutoff.IsZero() {
			t.Errorf("ParsePeriod(%q): got zero time for valid period", tt.period)
		}
	}
}

func TestParsePeriodOrdering(t *testing.T) {
	today, _ := ParsePeriod("today")
	yesterday, _ := ParsePeriod("yesterday")
	week, _ := ParsePeriod("week")

	if !yesterday.Before(today) {
		t.Error("yesterday should be before today")
	}
	if week.After(today) {
		t.Error("start of week should not be after today")
	}
}

func TestRelativeAge(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		t    time.Time
		want string
	}{
		{now.Add(-10 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-49 * time.Hour), "2d ago"},
	}

	for _, tt := range tests {
		if got := RelativeAge(tt.t, now); got != tt.want {
			t.Errorf("RelativeAge(%v): got %q, want %q", tt.t, got, tt.want)
		}
	}
}
