// Package scoring holds the Wordle score domain: the failure sentinel,
// validation, labels and exact mean comparison.
package scoring

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Score bounds and failure sentinels.
const (
	MinScore    = 1
	MaxSolved   = 6
	FailedLabel = "X"

	// FailedScore is the value stored for an X/6 result.
	FailedScore = 7
	// LegacyFailedScore is the sentinel used by deployments that counted a
	// failure as two points worse than six.
	LegacyFailedScore = 8
)

// ErrInvalidScore is returned for guesses that are not 1..6 or X.
var ErrInvalidScore = errors.New("invalid score")

// ValidSentinel reports whether failed is one of the supported failure values.
func ValidSentinel(failed int) bool {
	return failed == FailedScore || failed == LegacyFailedScore
}

// Valid reports whether score is 1..6 or the given failure sentinel.
func Valid(score, failed int) bool {
	return (score >= MinScore && score <= MaxSolved) || score == failed
}

// Label renders a stored score the way it appears in a share message.
func Label(score, failed int) string {
	if score == failed {
		return FailedLabel
	}
	return strconv.Itoa(score)
}

// ParseGuess converts a guess token ("1".."6", "x", "X") to a stored score.
func ParseGuess(token string, failed int) (int, error) {
	t := strings.TrimSpace(token)
	if strings.EqualFold(t, FailedLabel) {
		return failed, nil
	}
	n, err := strconv.Atoi(t)
	if err != nil || n < MinScore || n > MaxSolved {
		return 0, fmt.Errorf("%w: %q", ErrInvalidScore, token)
	}
	return n, nil
}

// Mean is an exact running average kept as an integer sum and count.
type Mean struct {
	Sum   int
	Count int
}

// Add folds one score into the mean.
func (m *Mean) Add(score int) {
	m.Sum += score
	m.Count++
}

// Value returns the mean as a float. Zero count yields zero.
func (m Mean) Value() float64 {
	if m.Count == 0 {
		return 0
	}
	return float64(m.Sum) / float64(m.Count)
}

// String renders the mean with two decimals.
func (m Mean) String() string {
	return fmt.Sprintf("%.2f", m.Value())
}

// Compare orders means without floating point: -1 if m < o, 0 if equal, +1 if m > o.
// Both means must have a positive count.
func (m Mean) Compare(o Mean) int {
	l := int64(m.Sum) * int64(o.Count)
	r := int64(o.Sum) * int64(m.Count)
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	default:
		return 0
	}
}
