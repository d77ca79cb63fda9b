package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerBasic(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	ctx := context.Background()
	l := Get()
	l.Info(ctx, "test message", String("k", "v"))
	l.Debug(ctx, "debug message", Int("n", 1), Int64("id", 7))
	l.Warn(ctx, "warn message", Bool("ok", false))
	l.Error(ctx, "error message", Error(errors.New("boom")))

	namedLogger := Named("test")
	namedLogger.Info(ctx, "test message")
}

func TestSetLevelString(t *testing.T) {
	cases := []struct {
		in      string
		wantErr bool
	}{
		{"debug", false},
		{"INFO", false},
		{"", false},
		{" warning ", false},
		{"error", false},
		{"verbose", true},
	}
	for _, tc := range cases {
		err := SetLevelString(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("SetLevelString(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
	}
	_ = SetLevelString("info")
}

func TestMirror(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	buf := &lockedBuffer{}
	SetMirror(buf)
	defer SetMirror(nil)

	if !Mirrored() {
		t.Fatal("expected mirror to be installed")
	}

	ctx := context.Background()
	Get().Info(ctx, "mirrored line", String("user", "alice"))
	Get().Debug(ctx, "filtered line")

	got := buf.String()
	if !strings.Contains(got, "mirrored line") || !strings.Contains(got, "user=alice") {
		t.Errorf("mirror did not receive the info line: %q", got)
	}
	if strings.Contains(got, "filtered line") {
		t.Errorf("mirror received a line below the configured level: %q", got)
	}

	SetMirror(nil)
	Get().Info(ctx, "after removal")
	if strings.Contains(buf.String(), "after removal") {
		t.Error("mirror still receiving after removal")
	}
}

func TestSetFormat(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	buf := &lockedBuffer{}
	SetMirror(buf)
	defer SetMirror(nil)
	defer func() { _ = SetFormat(FormatText) }()

	if err := SetFormat("JSON"); err != nil {
		t.Fatalf("SetFormat(JSON) = %v", err)
	}
	l := Named("chat").Named("sink")
	l.Info(context.Background(), "json line", Int("n", 2))

	got := buf.String()
	for _, want := range []string{`"msg":"json line"`, `"component":"chat.sink"`, `"n":2`, `"source":"logger_test.go:`} {
		if !strings.Contains(got, want) {
			t.Errorf("json output missing %s: %q", want, got)
		}
	}

	if err := SetFormat("xml"); err == nil {
		t.Error("SetFormat(xml) should fail")
	}
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("WARNING")
	if err != nil || l != slog.LevelWarn {
		t.Errorf("ParseLevel(WARNING) = %v, %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("ParseLevel(loud) should fail")
	}
}
