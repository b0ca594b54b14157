package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"cuesync/internal/commands"
	"cuesync/internal/config"
	"cuesync/internal/daemon"
	"cuesync/internal/extract"
	"cuesync/internal/host"
	"cuesync/internal/logging"
	"cuesync/internal/preflight"
	"cuesync/internal/session"
	"cuesync/internal/speech"
	"cuesync/internal/store"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
	// StartURL is the page URL the session starts on.
	StartURL string
}

// Runtime is the wired object graph behind one page session.
type Runtime struct {
	Config  *config.Config
	Logger  *slog.Logger
	Store   store.Store
	Page    *host.Page
	Manager *session.Manager
	Speaker *speech.Speaker
	Service *commands.Service
}

// Build opens the store and wires the page, session, speaker, and command
// service. A nil engine selects the headless log engine.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, startURL string, engine speech.Engine) (*Runtime, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	st, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if engine == nil {
		engine = &speech.LogEngine{Logger: logger}
	}

	pg := host.NewPage(startURL)
	speaker := speech.NewSpeaker(engine, cfg.Speech.Voice, cfg.Speech.Rate, logger)
	manager := session.NewManager(pg, speaker, logger, session.Options{
		LogDropped:    cfg.Parse.LogDropped,
		SpeechEnabled: cfg.Speech.Enabled,
	})
	fetchTimeout := time.Duration(cfg.Host.FetchTimeoutSeconds) * time.Second
	svc := commands.NewService(commands.Deps{
		Config:    cfg,
		Page:      pg,
		Manager:   manager,
		Store:     st,
		Extractor: extract.New(nil, fetchTimeout, logger),
		Logger:    logger,
	})
	if err := svc.RestoreSpeech(ctx); err != nil {
		logging.WarnWithContext(ctx, logger, "restore speech settings failed", "settings_restore_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "speech starts with configured defaults"),
		)
	}
	return &Runtime{
		Config:  cfg,
		Logger:  logger,
		Store:   st,
		Page:    pg,
		Manager: manager,
		Speaker: speaker,
		Service: svc,
	}, nil
}

// Close tears the session down and closes the store.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	r.Manager.Close()
	if r.Speaker != nil {
		r.Speaker.Cancel()
	}
	return r.Store.Close()
}

// Run starts the cuesync daemon and blocks until a signal arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		FilePath:    filepath.Join(cfg.Paths.LogDir, "cuesync.log"),
		Development: opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logPreflight(signalCtx, logger, cfg)

	pidPath := filepath.Join(cfg.Paths.DataDir, "cuesync.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	rt, err := Build(signalCtx, cfg, logger, opts.StartURL, nil)
	if err != nil {
		logger.Error("build runtime", logging.Error(err))
		return err
	}
	defer rt.Close()

	d, err := daemon.New(cfg, rt.Service, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	<-signalCtx.Done()
	logger.Info("cuesync daemon shutting down")
	return nil
}

func logPreflight(ctx context.Context, logger *slog.Logger, cfg *config.Config) {
	results := preflight.RunAll(ctx, cfg)
	for _, r := range preflight.Failed(results) {
		logging.WarnWithContext(ctx, logger, "preflight check failed", "preflight_failed",
			logging.String("check", r.Name),
			logging.String("detail", r.Detail),
			logging.String(logging.FieldImpact, "related commands will fail until fixed"),
		)
	}
	logger.Info("preflight complete",
		logging.Int("checks", len(results)),
		logging.Int("failed", len(preflight.Failed(results))),
	)
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
