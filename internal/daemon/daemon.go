package daemon

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/keepwell-care/keepwell/internal/api"
	"github.com/keepwell-care/keepwell/internal/app/milestone"
	"github.com/keepwell-care/keepwell/internal/health"
	"github.com/keepwell-care/keepwell/internal/infra/sqlite"
)

// Daemon is the core KeepWell runtime. It wires together all services.
type Daemon struct {
	Config     Config
	DB         *sqlite.DB
	Milestones *milestone.Service
	Health     *health.Checker
	Server     *api.Server
	Log        zerolog.Logger
	cancel     context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	log := setupLogging(cfg.Logging)

	dataDir := cfg.Storage.Dir
	if dataDir == "" {
		dataDir = filepath.Join(keepwellHome(), "data")
	}

	db, err := sqlite.Open(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	ttl := parseDuration(cfg.Cache.TTL, milestone.DefaultStatusTTL)
	svc := milestone.NewService(db, db, ttl, log.With().Str("component", "milestone").Logger())

	checker := health.NewChecker(db, dataDir)

	srv := api.NewServer(svc, db, log.With().Str("component", "api").Logger())
	srv.SetHealthChecker(checker)

	// Enable Prometheus /metrics if configured
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	return &Daemon{
		Config:     cfg,
		DB:         db,
		Milestones: svc,
		Health:     checker,
		Server:     srv,
		Log:        log,
	}, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	// Health checker (always runs)
	go d.Health.Run(ctx)

	// Periodic sweep keeps the status cache from holding every user it
	// has ever answered for.
	go d.sweepLoop(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.Server.Host, d.Config.Server.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.DB.Close()
	}()

	d.Log.Info().Str("addr", addr).Msg("keepwell serving")
	if d.Config.Telemetry.Prometheus {
		d.Log.Info().Str("endpoint", fmt.Sprintf("http://%s/metrics", addr)).Msg("metrics enabled")
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (d *Daemon) sweepLoop(ctx context.Context) {
	interval := parseDuration(d.Config.Cache.SweepInterval, time.Minute)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if dropped := d.Milestones.SweepCache(); dropped > 0 {
				d.Log.Debug().Int("dropped", dropped).Msg("status cache swept")
			}
		}
	}
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}

// setupLogging builds the root logger from config.
func setupLogging(cfg LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer = os.Stderr
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).With().Timestamp().Logger().Level(level)
}

// parseDuration parses a duration string, returning a fallback on error.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
