package chat

import "time"

// Gate restricts the public leaderboard command to a weekly viewing window:
// Day, from StartHour up to but not including EndHour, in Loc.
type Gate struct {
	Enabled   bool
	Day       time.Weekday
	StartHour int
	EndHour   int
	Loc       *time.Location
}

func (g Gate) loc() *time.Location {
	if g.Loc == nil {
		return time.UTC
	}
	return g.Loc
}

// Open reports whether the window contains now. A disabled gate is always open.
func (g Gate) Open(now time.Time) bool {
	if !g.Enabled {
		return true
	}
	t := now.In(g.loc())
	return t.Weekday() == g.Day && t.Hour() >= g.StartHour && t.Hour() < g.EndHour
}

// NextOpening returns the start of the next window, or now when it is open.
func (g Gate) NextOpening(now time.Time) time.Time {
	if g.Open(now) {
		return now
	}
	t := now.In(g.loc())
	days := (int(g.Day) - int(t.Weekday()) + 7) % 7
	next := time.Date(t.Year(), t.Month(), t.Day()+days, g.StartHour, 0, 0, 0, g.loc())
	if !next.After(t) {
		next = time.Date(t.Year(), t.Month(), t.Day()+days+7, g.StartHour, 0, 0, 0, g.loc())
	}
	return next
}
