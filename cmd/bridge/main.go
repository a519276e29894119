package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/mkoopmans/tgtg-bridge/internal/config"
	"github.com/mkoopmans/tgtg-bridge/internal/coordinator"
	"github.com/mkoopmans/tgtg-bridge/internal/database"
	"github.com/mkoopmans/tgtg-bridge/internal/history"
	"github.com/mkoopmans/tgtg-bridge/internal/sensor"
	"github.com/mkoopmans/tgtg-bridge/internal/server"
	"github.com/mkoopmans/tgtg-bridge/internal/tgtg"
	"github.com/mkoopmans/tgtg-bridge/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/bridge.local.yaml", "path to config file")
	flag.Parse()

	// Pick up .env values for the ${VAR} references in the config file.
	if err := godotenv.Overload(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
	}

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("starting bridge",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
		"instance_id", cfg.Instance.ID,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	client, err := tgtg.NewClient(
		tgtg.Credentials{
			AccessToken:  cfg.TGTG.AccessToken,
			RefreshToken: cfg.TGTG.RefreshToken,
			Cookie:       cfg.TGTG.Cookie,
			UserID:       cfg.TGTG.UserID,
			Email:        cfg.TGTG.Email,
		},
		tgtg.WithBaseURL(cfg.TGTG.BaseURL),
		tgtg.WithTimeout(cfg.TGTG.Timeout),
		tgtg.WithUserAgent(cfg.TGTG.UserAgent),
		tgtg.WithLogger(logger),
	)
	if err != nil {
		logger.Error("failed to create tgtg client", "error", err)
		os.Exit(1)
	}

	coord := coordinator.New(coordinator.Config{
		Items:    cfg.Items,
		Interval: cfg.Poll.Interval,
	}, client, logger)

	if err := coord.Start(ctx); err != nil {
		logger.Error("failed to start coordinator", "error", err)
		os.Exit(1)
	}

	// Sensors come up after the first refresh so display names resolve.
	sensors := sensor.BuildAll(coord)

	var (
		pool   *pgxpool.Pool
		writer *history.Writer
	)
	if cfg.History.Enabled {
		logger.Info("connecting to database",
			"host", cfg.History.Database.Host,
			"port", cfg.History.Database.Port,
			"database", cfg.History.Database.Name,
		)

		pool, err = database.Connect(ctx, cfg.History.Database)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		writer = history.NewWriter(history.WriterConfig{
			InstanceID:    cfg.Instance.ID,
			BatchSize:     cfg.History.BatchSize,
			FlushInterval: cfg.History.FlushInterval,
			BufferSize:    cfg.History.BufferSize,
		}, pool, logger)
		if err := writer.Start(ctx); err != nil {
			logger.Error("failed to start history writer", "error", err)
			os.Exit(1)
		}
	}

	var srv *server.Server
	if cfg.ServerEnabled() {
		var hist server.HistorySink
		if writer != nil {
			hist = writer
		}

		srv = server.New(server.Config{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			WSSendBuffer: cfg.Server.WSSendBuffer,
		}, coord, sensors, hist, logger)
		if err := srv.Start(ctx); err != nil {
			logger.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}

	// Fan refresh updates out to the history sink and WebSocket clients.
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case update := <-coord.Updates():
				if writer != nil {
					writer.Record(update)
				}
				if srv != nil {
					srv.Broadcast(update)
				}
			}
		}
	}()

	logger.Info("bridge running",
		"instance_id", cfg.Instance.ID,
		"mode", coord.Status().Mode,
		"sensors", len(sensors),
		"interval", cfg.Poll.Interval,
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if srv != nil {
		if err := srv.Stop(shutdownCtx); err != nil {
			logger.Warn("server shutdown error", "error", err)
		}
	}
	if err := coord.Stop(shutdownCtx); err != nil {
		logger.Warn("coordinator shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Stop(shutdownCtx); err != nil {
			logger.Warn("history writer shutdown error", "error", err)
		}
	}

	logger.Info("bridge stopped")
}

// newLogger builds the slog handler selected by the logging config.
func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(cfg.Format) == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
