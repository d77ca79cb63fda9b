package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/okian/wordlebot/internal/adapters/chat"
	"github.com/okian/wordlebot/internal/adapters/http/api"
	"github.com/okian/wordlebot/internal/adapters/http/swagger"
	"github.com/okian/wordlebot/internal/adapters/repository"
	service "github.com/okian/wordlebot/internal/app"
	"github.com/okian/wordlebot/internal/config"
	"github.com/okian/wordlebot/pkg/logger"
	"github.com/okian/wordlebot/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 30 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	systemMetricsInterval  = 10 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

const discordIntents = discordgo.IntentsGuildMessages |
	discordgo.IntentsDirectMessages |
	discordgo.IntentsMessageContent

func main() {
	if err := logger.Init(); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		logger.Get().Error(context.Background(), "wordlebot exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	log := logger.Get()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	if err := logger.SetFormat(cfg.LogFormat); err != nil {
		log.Warn(ctx, "invalid log_format; keeping text", logger.String("log_format", cfg.LogFormat), logger.Error(err))
	}

	store, err := repository.Open(ctx, cfg.DBPath, storeOptions(cfg)...)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error(context.Background(), "store close failed", logger.Error(err))
		}
	}()

	var session *discordgo.Session
	if cfg.DiscordToken != "" {
		session, err = discordgo.New("Bot " + cfg.DiscordToken)
		if err != nil {
			return fmt.Errorf("failed to create discord session: %w", err)
		}
		session.Identify.Intents = discordIntents
	}

	opts := serviceOptions(cfg)
	if session != nil {
		opts = append(opts, service.WithAcknowledger(chat.NewReactor(session)))
	}
	svc := service.New(store, opts...)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	if session != nil {
		sink := chat.NewLogSink(session, cfg.LogChannelRate)
		go sink.Run(ctx)

		d := chat.NewDispatcher(session, svc, chatOptions(cfg, sink)...)
		session.AddHandler(d.OnMessageCreate)
		if err := session.Open(); err != nil {
			_ = svc.Stop(context.Background())
			return fmt.Errorf("failed to open discord gateway: %w", err)
		}
		log.Info(ctx, "discord gateway connected", logger.String("prefix", cfg.CommandPrefix))
	} else {
		log.Warn(ctx, "discord_token not set; chat adapter disabled")
	}

	var srv *http.Server
	if cfg.Addr != "" {
		srv = &http.Server{
			Addr:              cfg.Addr,
			Handler:           newMux(ctx, svc, cfg.LeaderboardLimit),
			ReadTimeout:       readTimeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       idleTimeout,
			ReadHeaderTimeout: readHeaderTimeout,
		}
		go func() {
			log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error(ctx, "HTTP server failed", logger.Error(err))
			}
		}()
	}

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(context.Background(), "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
		}
	}
	// Drain queued messages while the gateway can still deliver reactions.
	if err := svc.Stop(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "service stop failed", logger.Error(err))
	}
	if session != nil {
		if err := session.Close(); err != nil {
			log.Error(shutdownCtx, "discord close failed", logger.Error(err))
		}
	}

	log.Info(shutdownCtx, "wordlebot stopped")
	return nil
}

// storeOptions maps configuration onto store options.
func storeOptions(cfg *config.Config) []repository.Option {
	return []repository.Option{repository.WithFailedScore(cfg.FailedScore)}
}

// serviceOptions maps configuration onto service options.
func serviceOptions(cfg *config.Config) []service.Option {
	day, _ := config.ParseWeekday(cfg.WeekStartDay)
	return []service.Option{
		service.WithLogger(logger.Named("service")),
		service.WithFailedScore(cfg.FailedScore),
		service.WithGuildScoped(cfg.GuildScoped),
		service.WithWeekStart(day, cfg.WeekStartHour),
		service.WithLocation(cfg.Location()),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithDedupeTTL(cfg.DedupeTTL),
	}
}

// chatOptions maps configuration onto dispatcher options.
func chatOptions(cfg *config.Config, sink *chat.LogSink) []chat.Option {
	gateDay, _ := config.ParseWeekday(cfg.GateDay)
	loc := cfg.Location()
	return []chat.Option{
		chat.WithPrefix(cfg.CommandPrefix),
		chat.WithOwner(cfg.OwnerID),
		chat.WithLimit(cfg.LeaderboardLimit),
		chat.WithLocation(loc),
		chat.WithLogSink(sink),
		chat.WithGate(chat.Gate{
			Enabled:   cfg.GateEnabled,
			Day:       gateDay,
			StartHour: cfg.GateStartHour,
			EndHour:   cfg.GateEndHour,
			Loc:       loc,
		}),
	}
}

// newMux registers the API and documentation routes.
func newMux(ctx context.Context, svc *service.Service, limit int) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, limit).Register(ctx, mux)
	return mux
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}

// updateServiceMetrics refreshes the queue and worker gauges. GetStats itself
// updates the dedupe and score totals.
func updateServiceMetrics(svc *service.Service) {
	stats := svc.GetStats()

	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if workerCount, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
}
