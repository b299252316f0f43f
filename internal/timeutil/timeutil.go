// ABOUTME: Time utility functions for date range calculations and display
// ABOUTME: Provides period cutoffs for bulk mark-read and relative ages for queue listings

package timeutil

import (
	"fmt"
	"time"
)

// StartOfToday returns midnight (00:00:00) of the current day in local time
func StartOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// StartOfYesterday returns midnight (00:00:00) of yesterday in local time
func StartOfYesterday() time.Time {
	return StartOfToday().AddDate(0, 0, -1)
}

// StartOfWeek returns midnight of the most recent Sunday in local time
// Note: Week starts on Sunday
func StartOfWeek() time.Time {
	today := StartOfToday()
	weekday := int(today.Weekday())
	return today.AddDate(0, 0, -weekday)
}

// StartOfMonth returns midnight of the first day of the current month in local time
func StartOfMonth() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

// ParsePeriod converts a period string to a time.Time representing the cutoff
// Supported values: "today", "yesterday", "week", "month"
// Returns the start of that period (entries published before this time would be marked)
func ParsePeriod(period string) (time.Time, bool) {
	switch period {
	case "today":
		return StartOfToday(), true
	case "yesterday":
		return StartOfYesterday(), true
	case "week":
		return StartOfWeek(), true
	case "month":
		return StartOfMonth(), true
	default:
		return time.Time{}, false
	}
}

// RelativeAge formats how long ago t was as a compact human string,
// e.g. "just now", "5m ago", "3h ago", "2d ago".
func RelativeAge(t time.Time, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
