package commands

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/abcbank/ledger/internal/analytics"
	"github.com/abcbank/ledger/internal/config"
	"github.com/abcbank/ledger/internal/ledger"
)

// env is the loaded state shared by every subcommand.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *ledger.Store
	engine *analytics.Engine
}

func loadEnv(opts *rootOptions) (*env, error) {
	cfg, err := config.LoadOrDefault(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.dataFile != "" {
		cfg.DataFile = opts.dataFile
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	store, err := ledger.Load(cfg.DataFile, ledger.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	logger.Debug("client data loaded", zap.String("file", cfg.DataFile), zap.Int("clients", store.Len()))

	return &env{
		cfg:    cfg,
		logger: logger,
		store:  store,
		engine: analytics.NewEngine(store, cfg.Policy(), logger),
	}, nil
}

func (e *env) close() {
	_ = e.logger.Sync()
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.Encoding = "console"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.DisableStacktrace = true

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}
