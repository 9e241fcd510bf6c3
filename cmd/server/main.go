package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/me/botadmin/internal/config"
	"github.com/me/botadmin/internal/listview"
	"github.com/me/botadmin/internal/logging"
	"github.com/me/botadmin/internal/media"
	"github.com/me/botadmin/internal/scheduler"
	"github.com/me/botadmin/internal/server"
	"github.com/me/botadmin/internal/store"
	"github.com/me/botadmin/internal/ui"
	"github.com/me/botadmin/pkg/botapi"
)

func main() {
	configFile := flag.String("config", "", "Path to YAML config file")
	envFile := flag.String("env-file", ".env", "Path to .env file (ignored if missing)")
	addr := flag.String("addr", "", "Listen address")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", "", "Log format (text, json)")
	dbPath := flag.String("db", "", "Database path (default ~/.botadmin/botadmin.db)")
	apiURL := flag.String("api", "", "Bot API base URL")
	staticDir := flag.String("static", "", "Directory served at /static/")
	debug := flag.Bool("debug", false, "Shorthand for --log-level=debug")
	flag.Parse()

	cfg, err := config.Load(*configFile, *envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// Flags override file and environment.
	for dst, v := range map[*string]string{
		&cfg.Addr:        *addr,
		&cfg.LogLevel:    *logLevel,
		&cfg.LogFormat:   *logFormat,
		&cfg.DBPath:      *dbPath,
		&cfg.API.BaseURL: *apiURL,
	} {
		if v != "" {
			*dst = v
		}
	}
	if *debug {
		cfg.LogLevel = "debug"
	}

	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	// Resolve database path.
	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot determine home directory: %v\n", err)
			os.Exit(1)
		}
		dir := filepath.Join(home, ".botadmin")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "cannot create %s: %v\n", dir, err)
			os.Exit(1)
		}
		cfg.DBPath = filepath.Join(dir, "botadmin.db")
	}

	// Open store and run migrations.
	st, err := store.NewSQLiteStore(cfg.DBPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open database: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := st.Migrate(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "migrate database: %v\n", err)
		os.Exit(1)
	}
	logger.Info("database ready", "path", cfg.DBPath)

	apiCfg := botapi.DefaultConfig().WithBaseURL(cfg.API.BaseURL)
	if cfg.API.Timeout > 0 {
		apiCfg = apiCfg.WithTimeout(cfg.API.Timeout)
	}
	if cfg.API.MaxRetries > 0 {
		apiCfg = apiCfg.WithRetries(cfg.API.MaxRetries, botapi.DefaultRetryDelay)
	}
	client := botapi.NewClient(apiCfg, logger)
	logger.Info("bot api configured", "base_url", cfg.API.BaseURL)

	var mediaStore media.Store
	switch cfg.Media {
	case "s3":
		s3, err := media.NewS3Store(context.Background(), cfg.MediaS3, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "media store: %v\n", err)
			os.Exit(1)
		}
		mediaStore = s3
		logger.Info("media store ready", "kind", "s3", "bucket", cfg.MediaS3.Bucket)
	default:
		mediaStore = media.NewBotAPIStore(client)
	}

	views := listview.NewRegistry(logger)
	u := ui.New(st, client, views, mediaStore, logger, ui.Config{
		Secure:     cfg.SecureCookies,
		SessionTTL: cfg.SessionTTL,
	})

	var opts []server.Option
	if *staticDir != "" {
		opts = append(opts, server.WithStaticDir(*staticDir))
	}
	srv := server.New(cfg, st, u, logger, opts...)

	sched := scheduler.New(scheduler.Config{
		PurgeSessions: cfg.Schedules.PurgeSessions,
		SweepViews:    cfg.Schedules.SweepViews,
		ViewIdle:      cfg.ViewIdle,
	}, st, views, logger)
	if err := sched.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "start scheduler: %v\n", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting", "addr", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	// Stop scheduler before HTTP server.
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
