// Package parser recognizes Wordle share messages such as
// "Wordle 1,234 4/6" and extracts the puzzle number and guess count.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/okian/wordlebot/internal/domain/scoring"
)

// wordlePattern matches the keyword, the puzzle number either plain or
// grouped in threes by commas, and the guess token. Anything after "/6" is
// ignored.
var wordlePattern = regexp.MustCompile(`(?i)\bwordle\s+([0-9]{1,3}(?:,[0-9]{3})+|[0-9]+)\s+([1-6x])/6`)

// Result is a parsed share message.
type Result struct {
	PuzzleNumber int
	Score        int
}

// Option applies a configuration option to the Parser.
type Option func(*Parser)

// WithFailedScore sets the value stored for X/6. Values other than the
// supported sentinels are ignored.
func WithFailedScore(failed int) Option {
	return func(p *Parser) {
		if scoring.ValidSentinel(failed) {
			p.failed = failed
		}
	}
}

// Parser converts message text to a Result. It is safe for concurrent use.
type Parser struct {
	failed int
}

// New creates a Parser that maps X/6 to scoring.FailedScore unless overridden.
func New(opts ...Option) *Parser {
	p := &Parser{failed: scoring.FailedScore}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FailedScore returns the sentinel this parser stores for X/6.
func (p *Parser) FailedScore() int { return p.failed }

// Parse returns the first Wordle result in text. ok is false when the text
// has no Wordle result or its puzzle number is not a positive integer.
func (p *Parser) Parse(text string) (res Result, ok bool) {
	m := wordlePattern.FindStringSubmatch(text)
	if m == nil {
		return Result{}, false
	}

	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil || n <= 0 {
		return Result{}, false
	}

	score, err := scoring.ParseGuess(m[2], p.failed)
	if err != nil {
		return Result{}, false
	}
	return Result{PuzzleNumber: n, Score: score}, true
}

var defaultParser = New()

// Parse parses text with the default failure sentinel.
func Parse(text string) (Result, bool) {
	return defaultParser.Parse(text)
}
