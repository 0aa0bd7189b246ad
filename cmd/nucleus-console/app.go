package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"nucleus-console/pkg/collab"
	"nucleus-console/pkg/config"
	"nucleus-console/pkg/engine"
	"nucleus-console/pkg/kvstore"
	"nucleus-console/pkg/telemetry"
	"nucleus-console/pkg/transcript"
)

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	config       string
	store        string
	collaborator string
}

// app is one wired console: config, store, session, pipeline, interpreter.
type app struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger
	logFile io.Closer

	store   kvstore.Store
	metrics *telemetry.Metrics
	session *engine.Session
	interp  *engine.Interpreter
}

func loadConfig(f *globalFlags) (*config.Config, string, error) {
	cfg, path, err := config.Load(f.config)
	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, path, err
	}
	if f.store != "" {
		cfg.Store.Backend = f.store
	}
	if f.collaborator != "" {
		cfg.Collaborator.Backend = f.collaborator
	}
	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, path, nil
}

func newApp(ctx context.Context, f *globalFlags) (*app, error) {
	cfg, path, err := loadConfig(f)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, cfgPath: path}
	a.logger, a.logFile = openLogger(cfg)

	store, err := kvstore.Open(cfg.StoreOptions())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	a.store = store

	c, err := collab.New(cfg.Collaborator.Backend, cfg.Collaborator.Options)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.metrics = telemetry.NewMetrics()
	a.session = engine.NewSession(store, engine.WithLogger(a.logger))
	p := engine.NewPipeline(a.session, c,
		engine.WithPacing(cfg.Pacing(engine.DefaultPacing)),
		engine.WithTimeout(cfg.CollaboratorTimeout(engine.DefaultTimeout)),
		engine.WithPipelineLogger(a.logger),
		engine.WithRecorder(a.metrics),
	)
	a.interp = engine.NewInterpreter(a.session, p,
		engine.WithInterpreterLogger(a.logger),
		engine.WithCommandRecorder(a.metrics),
	)

	if cfg.Transcript.Enabled {
		w, err := transcript.NewWriter(transcript.Options{BaseDir: cfg.TranscriptDir()}, a.logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("transcript: %w", err)
		}
		a.session.Log.Observe(w.Observer(a.session.Operator))
	}

	a.session.Hydrate(ctx)
	a.logger.Info("console ready",
		"config", path,
		"store", cfg.StoreOptions().Backend,
		"collaborator", cfg.Collaborator.Backend,
		"operator", a.session.Operator(),
		"hosts", a.session.Hosts.Len(),
	)
	return a, nil
}

// openLogger opens the JSON log file. The console owns stdout, so a file that
// cannot be opened means logs are discarded rather than interleaved.
func openLogger(cfg *config.Config) (*slog.Logger, io.Closer) {
	path := cfg.LogFile()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return slog.New(slog.DiscardHandler), nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return slog.New(slog.DiscardHandler), nil
	}
	h := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: cfg.LogLevel()})
	return slog.New(h).With("pid", os.Getpid()), f
}

// startMetrics serves /metrics and /healthz until ctx is done, when
// metrics.addr is configured.
func (a *app) startMetrics(ctx context.Context) error {
	if a.cfg.Metrics.Addr == "" {
		return nil
	}
	srv, err := telemetry.Listen(a.cfg.Metrics.Addr, telemetry.NewHandler(a.metrics, a.health), a.logger)
	if err != nil {
		return fmt.Errorf("metrics listen: %w", err)
	}
	go func() {
		if err := srv.Serve(ctx); err != nil {
			a.logger.Error("metrics server", "error", err)
		}
	}()
	return nil
}

func (a *app) health() map[string]any {
	return map[string]any{
		"operator": a.session.Operator(),
		"session":  a.session.ID(),
		"hosts":    a.session.Hosts.Len(),
		"busy":     a.session.Busy(),
		"menu":     a.session.MenuState().String(),
	}
}

func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("close store", "error", err)
		}
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}
