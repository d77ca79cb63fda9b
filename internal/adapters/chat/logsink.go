package chat

import (
	"context"
	"strings"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/okian/wordlebot/pkg/logger"
	"github.com/okian/wordlebot/pkg/metrics"
)

// defaultLogBuffer is the number of lines held while the limiter throttles.
const defaultLogBuffer = 256

// LogSink mirrors log lines into a chat channel. Writes never block: lines
// arriving while the buffer is full are dropped and counted.
type LogSink struct {
	session Session
	limiter *rate.Limiter
	lines   chan string
	channel atomic.Pointer[string]
}

// NewLogSink creates a sink that sends at most perSecond lines per second.
func NewLogSink(session Session, perSecond float64) *LogSink {
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return &LogSink{
		session: session,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		lines:   make(chan string, defaultLogBuffer),
	}
}

// Enable starts mirroring the process log into channelID.
func (s *LogSink) Enable(channelID string) {
	s.channel.Store(&channelID)
	logger.SetMirror(s)
}

// Disable stops mirroring. Buffered lines are discarded by Run.
func (s *LogSink) Disable() {
	logger.SetMirror(nil)
	s.channel.Store(nil)
}

// Channel returns the target channel, or "" when disabled.
func (s *LogSink) Channel() string {
	if ch := s.channel.Load(); ch != nil {
		return *ch
	}
	return ""
}

// Write queues one formatted log line.
func (s *LogSink) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\n")
	if line == "" {
		return len(p), nil
	}
	select {
	case s.lines <- line:
	default:
		metrics.RecordChatLogDropped()
	}
	return len(p), nil
}

// Run delivers queued lines until ctx is done. Failures are counted, never
// logged, since a logged failure would feed back into the sink.
func (s *LogSink) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case line := <-s.lines:
			ch := s.Channel()
			if ch == "" {
				continue
			}
			if err := s.limiter.Wait(ctx); err != nil {
				return
			}
			if _, err := s.session.ChannelMessageSend(ch, "`"+truncate(line, maxMessageLen-2)+"`"); err != nil {
				metrics.RecordErrorByComponent("chat", "log_send")
				continue
			}
			metrics.RecordChatLogSent()
		}
	}
}
