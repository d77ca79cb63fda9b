package chat

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestGate(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	g := Gate{Enabled: true, Day: time.Sunday, StartHour: 17, EndHour: 24, Loc: ny}

	cases := []struct {
		name     string
		now      time.Time
		open     bool
		nextOpen time.Time
	}{
		{
			name:     "sunday morning",
			now:      time.Date(2025, 3, 16, 9, 0, 0, 0, ny),
			nextOpen: time.Date(2025, 3, 16, 17, 0, 0, 0, ny),
		},
		{
			name: "sunday at opening",
			now:  time.Date(2025, 3, 16, 17, 0, 0, 0, ny),
			open: true,
		},
		{
			name: "sunday just before midnight",
			now:  time.Date(2025, 3, 16, 23, 59, 59, 0, ny),
			open: true,
		},
		{
			name:     "monday after the window",
			now:      time.Date(2025, 3, 17, 0, 0, 0, 0, ny),
			nextOpen: time.Date(2025, 3, 23, 17, 0, 0, 0, ny),
		},
		{
			name:     "wednesday in UTC input",
			now:      time.Date(2025, 3, 19, 12, 0, 0, 0, time.UTC),
			nextOpen: time.Date(2025, 3, 23, 17, 0, 0, 0, ny),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := g.Open(tc.now); got != tc.open {
				t.Fatalf("Open = %v, want %v", got, tc.open)
			}
			want := tc.nextOpen
			if tc.open {
				want = tc.now
			}
			if got := g.NextOpening(tc.now); !got.Equal(want) {
				t.Errorf("NextOpening = %v, want %v", got, want)
			}
		})
	}

	if !(Gate{}).Open(time.Now()) {
		t.Error("disabled gate should always be open")
	}
}

func TestDateParser(t *testing.T) {
	p := NewDateParser()
	now := time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC) // Wednesday

	got, err := p.Parse("2025-03-01", now, time.UTC)
	if err != nil {
		t.Fatalf("iso date: %v", err)
	}
	if want := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("iso date = %v, want %v", got, want)
	}

	got, err = p.Parse("yesterday", now, time.UTC)
	if err != nil {
		t.Fatalf("yesterday: %v", err)
	}
	if got.Format(isoDate) != "2025-03-11" {
		t.Errorf("yesterday = %v, want 2025-03-11", got)
	}

	for _, in := range []string{"", "   ", "banana"} {
		if _, err := p.Parse(in, now, time.UTC); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("Parse(%q) error = %v, want ErrInvalidDate", in, err)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short = %q", got)
	}
	long := strings.Repeat("é", 10) // 20 bytes
	got := truncate(long, 10)
	if len(got) > 10 || !strings.HasSuffix(got, "…") {
		t.Errorf("truncate long = %q (%d bytes)", got, len(got))
	}
	if !strings.HasPrefix(got, "éé") {
		t.Errorf("truncate split a rune: %q", got)
	}
}
