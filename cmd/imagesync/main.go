// imagesync copies the images referenced by source records into an object
// store, re-encoding each one under a size ceiling, and writes one log file
// per failure category. Configuration comes from the environment (and .env
// if present).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	slogmulti "github.com/samber/slog-multi"

	"github.com/maraichr/imagesync/internal/config"
	"github.com/maraichr/imagesync/internal/fetch"
	"github.com/maraichr/imagesync/internal/imageurl"
	"github.com/maraichr/imagesync/internal/ingestion"
	"github.com/maraichr/imagesync/internal/ledger"
	"github.com/maraichr/imagesync/internal/records"
	"github.com/maraichr/imagesync/internal/runlog"
	"github.com/maraichr/imagesync/internal/store"
	minioclient "github.com/maraichr/imagesync/internal/store/minio"
	s3client "github.com/maraichr/imagesync/internal/store/s3"
	vk "github.com/maraichr/imagesync/internal/store/valkey"
	"github.com/maraichr/imagesync/internal/transcode"
)

func main() {
	_ = godotenv.Load(".env") // ignore error if .env missing

	bootLogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		bootLogger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		bootLogger.Error("invalid config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := runlog.ResetDir(cfg.Run.LogDir, cfg.Source.URLField); err != nil {
		bootLogger.Error("failed to reset log dir", slog.String("error", err.Error()))
		os.Exit(1)
	}
	runFile, err := os.Create(filepath.Join(cfg.Run.LogDir, runlog.RunLogFile))
	if err != nil {
		bootLogger.Error("failed to create run log", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer runFile.Close()

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Run.LogLevel)}
	runID := uuid.NewString()
	logger := slog.New(slogmulti.Fanout(
		slog.NewJSONHandler(os.Stdout, opts),
		slog.NewTextHandler(runFile, opts),
	)).With(slog.String("run_id", runID))

	if err := run(cfg, runID, logger); err != nil {
		logger.Error("run failed", slog.String("error", err.Error()))
		runFile.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config, runID string, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Record source
	source, err := openSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer source.Close(context.WithoutCancel(ctx))
	logger.Info("connected to record source", slog.String("source", cfg.Source.Kind))

	// Object store
	sink, err := openSink(ctx, cfg)
	if err != nil {
		return err
	}
	logger.Info("object store ready",
		slog.String("backend", cfg.Store.Backend),
		slog.String("bucket", sink.Bucket()),
		slog.String("prefix", cfg.Store.Prefix))

	// Outcome ledger (optional)
	var l ledger.Ledger = ledger.Nop{}
	if cfg.Valkey.Addr != "" {
		vkClient, err := vk.NewClient(ctx, cfg.Valkey)
		if err != nil {
			logger.Warn("valkey unavailable, outcome ledger disabled", slog.String("error", err.Error()))
		} else {
			defer vkClient.Close()
			l = ledger.NewValkey(vkClient, runID, cfg.Valkey.TTL)
			logger.Info("outcome ledger enabled", slog.String("addr", cfg.Valkey.Addr))
		}
	}

	format, err := transcode.ParseFormat(cfg.Transcode.Format)
	if err != nil {
		return err
	}
	transcoder := transcode.New(transcode.Options{
		MaxBytes:      cfg.Transcode.MaxBytes,
		Format:        format,
		Quality:       cfg.Transcode.Quality,
		MaxIterations: cfg.Transcode.MaxIterations,
	})

	stages := []ingestion.Stage{
		ingestion.NewResolveStage(imageurl.NewResolver(cfg.Run.AcceptedExtensions, cfg.Run.DefaultExtension), cfg.Source.URLField),
		ingestion.NewFetchStage(fetch.New(cfg.Fetch)),
		ingestion.NewTranscodeStage(transcoder, !cfg.Transcode.Enabled),
		ingestion.NewUploadStage(sink, cfg.Store.Prefix),
	}

	runLog, err := runlog.Open(cfg.Run.LogDir, cfg.Source.URLField, logger)
	if err != nil {
		return err
	}

	pipeline := ingestion.NewPipeline(source, stages, runLog, l, os.Stdout, logger)
	if _, err := pipeline.Run(ctx); err != nil {
		return err
	}
	return nil
}

func openSource(ctx context.Context, cfg *config.Config) (records.Source, error) {
	fields := records.Fields{
		ID:   cfg.Source.IDField,
		Name: cfg.Source.NameField,
		URL:  cfg.Source.URLField,
	}
	switch cfg.Source.Kind {
	case "postgres":
		return records.NewPostgresSource(ctx, cfg.Database, cfg.Source.Table, fields)
	case "mongo":
		return records.NewMongoSource(ctx, cfg.Mongo, fields)
	}
	return nil, fmt.Errorf("unsupported record source %q", cfg.Source.Kind)
}

func openSink(ctx context.Context, cfg *config.Config) (store.Sink, error) {
	switch cfg.Store.Backend {
	case "minio":
		c, err := minioclient.NewClient(cfg.MinIO)
		if err != nil {
			return nil, err
		}
		if err := c.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return c, nil
	case "s3":
		return s3client.NewClient(ctx, cfg.S3)
	}
	return nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
