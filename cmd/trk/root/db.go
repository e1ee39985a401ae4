package root

import (
	"context"

	"go.uber.org/zap"

	"github.com/ShawrmaM8/Tracktion/internal/config"
	"github.com/ShawrmaM8/Tracktion/internal/engine"
	"github.com/ShawrmaM8/Tracktion/internal/storage"
)

func openService(ctx context.Context) (*engine.Service, config.Config, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, config.Config{}, nil, err
	}

	path := cfg.DBPath
	if path == "" {
		path, err = storage.DefaultDBPath()
		if err != nil {
			return nil, config.Config{}, nil, err
		}
	}

	db, err := storage.Open(ctx, path)
	if err != nil {
		return nil, config.Config{}, nil, err
	}

	logger := zap.NewNop()
	if cfg.Debug {
		logger, err = zap.NewDevelopment()
		if err != nil {
			_ = db.Close()
			return nil, config.Config{}, nil, err
		}
	}

	svc := engine.NewService(db, logger)
	svc.SetStreakThreshold(cfg.StreakMinutes)

	cleanup := func() {
		_ = logger.Sync()
		_ = db.Close()
	}
	return svc, cfg, cleanup, nil
}
