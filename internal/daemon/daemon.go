package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"cuesync/internal/api"
	"cuesync/internal/commands"
	"cuesync/internal/config"
	"cuesync/internal/host"
	"cuesync/internal/logging"
)

// Daemon serves one page session and enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	svc     *commands.Service
	watcher *host.Watcher
	api     *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
}

// New constructs a daemon around svc.
func New(cfg *config.Config, svc *commands.Service, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || svc == nil {
		return nil, errors.New("daemon requires config and command service")
	}
	interval := time.Duration(cfg.Host.NavigationPollMillis) * time.Millisecond
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		svc:      svc,
		watcher:  host.NewWatcher(svc.Page(), interval),
		lockPath: cfg.LockPath(),
		lock:     flock.New(cfg.LockPath()),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Handler exposes the HTTP API without starting a listener.
func (d *Daemon) Handler() http.Handler {
	return d.api.handler
}

// Start acquires the lock, starts the navigation watcher, and begins
// serving the API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := d.cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another cuesync daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.api.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		d.watcher.Run(runCtx, d.onNavigate)
	}()

	d.mu.Lock()
	d.cancel = cancel
	d.done = done
	d.mu.Unlock()
	d.running.Store(true)
	d.logger.Info("cuesync daemon started",
		logging.String("lock", d.lockPath),
		logging.String("address", d.api.address()),
	)
	return nil
}

// Stop stops serving and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	d.mu.Lock()
	cancel, done := d.cancel, d.done
	d.cancel, d.done = nil, nil
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(context.Background(), d.logger, "failed to release daemon lock", "lock_release_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove "+d.lockPath+" if no daemon is running"),
			logging.String(logging.FieldImpact, "the next start may report a running instance"),
		)
	}
	d.running.Store(false)
	d.logger.Info("cuesync daemon stopped")
}

// Close stops the daemon and tears the session down.
func (d *Daemon) Close() error {
	d.Stop()
	d.svc.Manager().Close()
	return nil
}

// Address returns the listener address once started.
func (d *Daemon) Address() string {
	return d.api.address()
}

// Status reports runtime and session state.
func (d *Daemon) Status(ctx context.Context) api.StatusResponse {
	return api.StatusResponse{
		Running:  d.running.Load(),
		PID:      os.Getpid(),
		LockFile: d.lockPath,
		Status:   d.svc.Status(ctx),
	}
}

// Navigate sets the page URL and, when it changed, moves the session.
func (d *Daemon) Navigate(ctx context.Context, req api.NavigateRequest) error {
	page := d.svc.Page()
	if req.Title != "" || len(req.Breadcrumbs) > 0 {
		page.SetDetails(req.Title, req.Breadcrumbs)
	}
	page.SetURL(req.URL)
	if url, changed := d.watcher.Check(); changed {
		return d.svc.Navigate(ctx, url)
	}
	return nil
}

func (d *Daemon) onNavigate(ctx context.Context, url string) {
	if err := d.svc.Navigate(ctx, url); err != nil {
		logging.WarnWithContext(ctx, d.logger, "navigation handling failed", "navigate_failed",
			logging.String("url", url),
			logging.Error(err),
		)
	}
}
