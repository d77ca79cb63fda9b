package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

const isoDate = "2006-01-02"

// DateParser reads the optional date argument of admin commands: either
// YYYY-MM-DD or English phrases such as "yesterday" or "last monday".
type DateParser struct {
	w *when.Parser
}

// NewDateParser creates a parser with the English and common rule sets.
func NewDateParser() *DateParser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &DateParser{w: w}
}

// Parse resolves input relative to now in loc. An ISO date resolves to
// noon so it stays on the same calendar day in nearby zones.
func (p *DateParser) Parse(input string, now time.Time, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	if loc == nil {
		loc = time.UTC
	}
	if d, err := time.ParseInLocation(isoDate, s, loc); err == nil {
		return d.Add(12 * time.Hour), nil
	}

	r, err := p.w.Parse(s, now.In(loc))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %w", ErrInvalidDate, s, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return r.Time, nil
}
