// Package logger is the structured logging facade used across the bot.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// callerDepth skips caller(), log() and the level method.
const callerDepth = 3

// Output formats accepted by SetFormat.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Logger defines the logging interface.
type Logger interface {
	Info(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	Debug(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Fatal(ctx context.Context, msg string, fields ...Field)
	Named(name string) Logger
}

// Field is one structured key-value pair.
type Field struct {
	Key   string
	Value interface{}
}

// Field constructors.
func String(key, val string) Field                 { return Field{Key: key, Value: val} }
func Int(key string, val int) Field                { return Field{Key: key, Value: val} }
func Int64(key string, val int64) Field            { return Field{Key: key, Value: val} }
func Bool(key string, val bool) Field              { return Field{Key: key, Value: val} }
func Float64(key string, val float64) Field        { return Field{Key: key, Value: val} }
func Time(key string, val time.Time) Field         { return Field{Key: key, Value: val} }
func Duration(key string, val time.Duration) Field { return Field{Key: key, Value: val} }
func Any(key string, val interface{}) Field        { return Field{Key: key, Value: val} }
func Error(err error) Field                        { return Field{Key: "error", Value: err} }

// named is a component logger. The handler is resolved on every call so
// loggers created before SetFormat follow the new format.
type named struct {
	component string
}

func (n *named) Named(name string) Logger {
	if n.component != "" {
		name = n.component + "." + name
	}
	return &named{component: name}
}

func (n *named) Info(ctx context.Context, msg string, fields ...Field) {
	n.log(ctx, slog.LevelInfo, msg, fields)
}

func (n *named) Error(ctx context.Context, msg string, fields ...Field) {
	n.log(ctx, slog.LevelError, msg, fields)
}

func (n *named) Debug(ctx context.Context, msg string, fields ...Field) {
	n.log(ctx, slog.LevelDebug, msg, fields)
}

func (n *named) Warn(ctx context.Context, msg string, fields ...Field) {
	n.log(ctx, slog.LevelWarn, msg, fields)
}

func (n *named) Fatal(ctx context.Context, msg string, fields ...Field) {
	n.log(ctx, slog.LevelError, msg, fields)
	os.Exit(1)
}

func (n *named) log(ctx context.Context, level slog.Level, msg string, fields []Field) {
	h := *handler.Load()
	if !h.Enabled(ctx, level) {
		return
	}
	attrs := make([]slog.Attr, 0, len(fields)+2)
	if n.component != "" {
		attrs = append(attrs, slog.String("component", n.component))
	}
	for _, f := range fields {
		attrs = append(attrs, slog.Any(f.Key, f.Value))
	}
	attrs = append(attrs, slog.String("source", caller()))
	slog.New(h).LogAttrs(ctx, level, msg, attrs...)
}

// sink wraps the mirror writer so it can live in an atomic.Pointer.
type sink struct {
	w io.Writer
}

// teeWriter writes every line to base and, when set, to the mirror.
// Mirror errors never fail the primary write.
type teeWriter struct {
	base   io.Writer
	mirror atomic.Pointer[sink]
}

func (t *teeWriter) Write(p []byte) (int, error) {
	n, err := t.base.Write(p)
	if s := t.mirror.Load(); s != nil {
		_, _ = s.w.Write(p)
	}
	return n, err
}

var (
	root     Logger
	levelVar slog.LevelVar
	handler  atomic.Pointer[slog.Handler]
	out      = &teeWriter{base: os.Stdout}
	workDir  = func() string { d, _ := os.Getwd(); return d }()
)

// Init installs the root logger writing text at info level to stdout.
func Init() error {
	levelVar.Set(slog.LevelInfo)
	if err := SetFormat(FormatText); err != nil {
		return err
	}
	root = &named{}
	return nil
}

// SetFormat switches every logger to the text or JSON handler.
func SetFormat(format string) error {
	opts := &slog.HandlerOptions{Level: &levelVar}
	var h slog.Handler
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		h = slog.NewTextHandler(out, opts)
	case FormatJSON:
		h = slog.NewJSONHandler(out, opts)
	default:
		return fmt.Errorf("unknown log format: %s", format)
	}
	handler.Store(&h)
	return nil
}

// SetMirror sends a copy of every formatted log line to w. Passing nil
// removes the mirror.
func SetMirror(w io.Writer) {
	if w == nil {
		out.mirror.Store(nil)
		return
	}
	out.mirror.Store(&sink{w: w})
}

// Mirrored reports whether a mirror is installed.
func Mirrored() bool {
	return out.mirror.Load() != nil
}

// caller returns the logging call site as path/file.go:line, relative to
// the working directory when possible.
func caller() string {
	_, file, line, ok := runtime.Caller(callerDepth)
	if !ok {
		return "unknown:0"
	}
	if workDir != "" {
		if rel, err := filepath.Rel(workDir, file); err == nil {
			file = rel
		}
	}
	return file + ":" + strconv.Itoa(line)
}

// Get returns the root logger. Init must have been called.
func Get() Logger {
	if root == nil {
		panic("logger not initialized. Call logger.Init() first")
	}
	return root
}

// Named creates a named logger.
func Named(name string) Logger {
	return Get().Named(name)
}

// Sync exists for symmetry with buffered loggers; slog writes through.
func Sync() error { return nil }

// SetLevel updates the level shared by every logger.
func SetLevel(level slog.Level) { levelVar.Set(level) }

// ParseLevel maps debug, info, warn/warning and error (any case) to a level.
// The empty string is info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", level)
	}
}

// SetLevelString parses level and applies it.
func SetLevelString(level string) error {
	l, err := ParseLevel(level)
	if err != nil {
		return err
	}
	SetLevel(l)
	return nil
}
