package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"anonymizer-api/internal/anonymize"
	"anonymizer-api/internal/config"
	"anonymizer-api/internal/logging"
	"anonymizer-api/internal/platform/static"
	"anonymizer-api/internal/repository"
)

type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	Users      *repository.MemoryUserStore
	Static     *static.Dir
	Anonymizer *anonymize.Anonymizer

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stdout)
	app, err := Build(cfg, logger)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "application initialized",
		"app", cfg.App.Name,
		"env", cfg.App.Env,
		"static_dir", cfg.Storage.StaticDir,
		"token_ttl", cfg.TokenTTL(),
	)
	return app, nil
}

// Build wires the application from an already loaded config.
func Build(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir, err := static.New(cfg.Storage.StaticDir, cfg.Storage.URLPrefix, cfg.Storage.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("prepare static dir failed: %w", err)
	}

	anonymizer := anonymize.New(anonymize.Options{
		FaceBlurRadius:  cfg.Anonymize.FaceBlurRadius,
		PlateBlurRadius: cfg.Anonymize.PlateBlurRadius,
		PlateBandRatio:  cfg.Anonymize.PlateBandRatio,
	})

	return &App{
		Config:     cfg,
		Logger:     logger,
		Users:      repository.NewMemoryUserStore(),
		Static:     dir,
		Anonymizer: anonymizer,
		StartedAt:  time.Now(),
	}, nil
}
