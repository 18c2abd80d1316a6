package main

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/vinodismyname/sheetaudit/config"
	"github.com/vinodismyname/sheetaudit/internal/analysis"
	"github.com/vinodismyname/sheetaudit/internal/registry"
	"github.com/vinodismyname/sheetaudit/internal/runtime"
	"github.com/vinodismyname/sheetaudit/internal/source"
	"github.com/vinodismyname/sheetaudit/internal/telemetry"
	"github.com/vinodismyname/sheetaudit/internal/workbooks"
	"github.com/vinodismyname/sheetaudit/pkg/version"
)

// app holds everything built from the configuration at startup.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	limits   runtime.Limits
	ctrl     *runtime.Controller
	mw       *runtime.Middleware
	filter   *registry.OptionalToolFilter
	registry *registry.Registry
	hooks    *telemetry.Hooks
}

func newApp(cfg *config.Config, logOut io.Writer) (*app, error) {
	logger := newLogger(cfg.Log, logOut)

	limits := runtime.NewLimitsFromConfig(cfg.Limits)
	ctrl := runtime.NewController(limits)

	loader := workbooks.NewLoader(ctrl, limits.MaxUnzippedBytes, logger)
	analyzer := analysis.New(loader, limits.MaxListedHidden, logger)

	filter := registry.NewOptionalToolFilter(cfg.Tools.EnableFormulas, registry.OptionalTools...)
	reg := registry.New().
		WithFilter(filter).
		WithPayloadLimit(limits.MaxPayloadBytes).
		WithModel(cfg.Agent.Model)

	if len(cfg.Storage.AllowedDirs) > 0 {
		src, err := source.NewDirSource(cfg.Storage.AllowedDirs, int64(limits.MaxPayloadBytes))
		if err != nil {
			return nil, err
		}
		reg.WithSource(src)
		logger.Info().Strs("allowed_dirs", src.Roots()).Msg("document source configured")
	}

	registry.RegisterAnalysisTools(reg, analyzer)

	return &app{
		cfg:      cfg,
		logger:   logger,
		limits:   limits,
		ctrl:     ctrl,
		mw:       runtime.NewMiddleware(ctrl),
		filter:   filter,
		registry: reg,
		hooks:    telemetry.NewHooks(logger),
	}, nil
}

func (a *app) serverName() string {
	if a.cfg.Server.Name != "" {
		return a.cfg.Server.Name
	}
	return config.DefaultServerName
}

func (a *app) serverVersion() string {
	if a.cfg.Server.Version != "" {
		return a.cfg.Server.Version
	}
	return version.Version()
}

// newLogger writes JSON (or console output when pretty) to w, never stdout.
func newLogger(c config.LogConfig, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if c.Pretty {
		w = zerolog.ConsoleWriter{Out: w}
	}
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil || c.Level == "" {
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", "sheetaudit").
		Logger()
}
