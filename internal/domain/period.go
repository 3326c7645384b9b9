package domain

import (
	"fmt"
	"time"
)

// PeriodWindow is a resolved [Start, End] instant range derived from a
// symbolic time-window token. Windows are created once per query, anchored
// at evaluation time, and never mutated afterwards. Both bounds are
// inclusive.
type PeriodWindow struct {
	Token string
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window, bounds included.
func (w PeriodWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// periodDays maps fixed-offset tokens to their day counts. Month-like tokens
// use fixed day counts (30/60/90/180/365) rather than calendar-month
// arithmetic; the approximation is deliberate, not a leap-year-aware policy.
var periodDays = map[string]int{
	"2 weeks": 14,
	"1 month": 30,
	"2 month": 60,
	"3 month": 90,
	"6 month": 180,
	"year":    365,
}

// ResolvePeriod maps a symbolic period token to a concrete window anchored
// at now. The end of every window is now itself. Pure function of
// (token, now); unknown tokens fail with ErrInvalidPeriodToken.
func ResolvePeriod(token string, now time.Time) (PeriodWindow, error) {
	switch token {
	case "today":
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return PeriodWindow{Token: token, Start: midnight, End: now}, nil
	case "this week":
		// Most recent Monday, 00:00.
		daysSinceMonday := (int(now.Weekday()) + 6) % 7
		monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
			AddDate(0, 0, -daysSinceMonday)
		return PeriodWindow{Token: token, Start: monday, End: now}, nil
	}
	if days, ok := periodDays[token]; ok {
		return PeriodWindow{Token: token, Start: now.AddDate(0, 0, -days), End: now}, nil
	}
	return PeriodWindow{}, fmt.Errorf("%w: %q", ErrInvalidPeriodToken, token)
}

// PeriodTokens lists every recognized period token.
func PeriodTokens() []string {
	tokens := []string{"today", "this week"}
	for _, t := range []string{"2 weeks", "1 month", "2 month", "3 month", "6 month", "year"} {
		tokens = append(tokens, t)
	}
	return tokens
}
