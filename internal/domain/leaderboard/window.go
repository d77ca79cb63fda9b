package leaderboard

import "time"

// Window bounds a leaderboard query to [Since, Until). The zero Window is all-time.
type Window struct {
	Since time.Time
	Until time.Time
}

// AllTime returns the unbounded window.
func AllTime() Window { return Window{} }

// IsAllTime reports whether the window has no bounds.
func (w Window) IsAllTime() bool { return w.Since.IsZero() && w.Until.IsZero() }

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if !w.Since.IsZero() && t.Before(w.Since) {
		return false
	}
	if !w.Until.IsZero() && !t.Before(w.Until) {
		return false
	}
	return true
}

// WeekStart returns the most recent instant at or before now that falls on
// weekday at hour:00 in loc.
func WeekStart(now time.Time, weekday time.Weekday, hour int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	back := (int(local.Weekday()) - int(weekday) + 7) % 7
	start := time.Date(local.Year(), local.Month(), local.Day()-back, hour, 0, 0, 0, loc)
	if start.After(local) {
		start = time.Date(local.Year(), local.Month(), local.Day()-back-7, hour, 0, 0, 0, loc)
	}
	return start
}

// Weekly returns the window from the current week start up to now.
func Weekly(now time.Time, weekday time.Weekday, hour int, loc *time.Location) Window {
	return Window{Since: WeekStart(now, weekday, hour, loc), Until: now}
}
