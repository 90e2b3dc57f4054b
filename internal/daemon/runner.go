// Package daemon runs the prayer time service: it restores the selected
// island, serves JSON-RPC and optionally publishes transitions over MQTT
// until it is shut down.
package daemon

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/jmhodges/clock"
	"github.com/namaadhu/namaadhu/internal/publish"
	"github.com/namaadhu/namaadhu/internal/scheduler"
	"github.com/namaadhu/namaadhu/internal/server"
	"github.com/namaadhu/namaadhu/internal/store"
	"github.com/namaadhu/namaadhu/internal/tracker"
	"github.com/namaadhu/namaadhu/pkg/logger"
)

// Sentinel errors for the daemon runner.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running daemon.
	ErrAlreadyRunning = errors.New("daemon is already running")

	// ErrNotRunning is returned when Shutdown() is called on a stopped daemon.
	ErrNotRunning = errors.New("daemon is not running")

	// ErrShutdownTimeout is returned when shutdown exceeds the configured timeout.
	ErrShutdownTimeout = errors.New("shutdown timed out")

	ErrNoStore = errors.New("daemon requires a store and a selection")
)

// DefaultShutdownTimeout bounds the graceful HTTP shutdown.
const DefaultShutdownTimeout = 5 * time.Second

// Config holds the configuration for the daemon runner.
type Config struct {
	// Addr is the TCP address the JSON-RPC endpoints listen on.
	Addr string

	// RPC carries the auth secret and build information.
	RPC server.RPCConfig

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout time.Duration
}

// Dependencies holds the external dependencies for the daemon runner.
type Dependencies struct {
	Store     store.Store
	Selection tracker.Selection

	// Clock defaults to the wall clock.
	Clock clock.Clock
	// Location defaults to UTC.
	Location *time.Location
	Log      logger.Logger

	// ListenerFactory creates network listeners.
	// If nil, net.Listen is used.
	ListenerFactory func(network, address string) (net.Listener, error)

	// Publisher, when set, receives schedule transitions. It must already
	// be connected.
	Publisher *publish.Publisher
}

// Runner manages the daemon lifecycle.
type Runner struct {
	config *Config
	deps   *Dependencies

	mu       sync.Mutex
	running  bool
	cancel   context.CancelFunc
	listener net.Listener
	tracker  *tracker.Tracker
	ready    chan struct{}
}

// New creates a daemon runner. A nil config listens on an ephemeral
// loopback port.
func New(config *Config, deps *Dependencies) *Runner {
	return &Runner{
		config: applyConfigDefaults(config),
		deps:   applyDependencyDefaults(deps),
		ready:  make(chan struct{}),
	}
}

func applyConfigDefaults(config *Config) *Config {
	c := Config{}
	if config != nil {
		c = *config
	}
	if c.Addr == "" {
		c.Addr = "127.0.0.1:0"
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	return &c
}

func applyDependencyDefaults(deps *Dependencies) *Dependencies {
	d := Dependencies{}
	if deps != nil {
		d = *deps
	}
	if d.ListenerFactory == nil {
		d.ListenerFactory = net.Listen
	}
	if d.Clock == nil {
		d.Clock = clock.New()
	}
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.Log == nil {
		d.Log = logger.NewNopLogger()
	}
	return &d
}

// Config returns the runner's configuration.
func (r *Runner) Config() *Config {
	return r.config
}

// Ready is closed once the listener is bound. A stopped runner hands out a
// fresh channel for its next Start.
func (r *Runner) Ready() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ready
}

// Addr returns the bound address, or nil before Ready.
func (r *Runner) Addr() net.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listener == nil {
		return nil
	}
	return r.listener.Addr()
}

// Tracker returns the running tracker, or nil before Ready.
func (r *Runner) Tracker() *tracker.Tracker {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tracker
}

// Start runs the daemon and blocks until ctx is canceled or Shutdown is
// called. Returns ErrAlreadyRunning if the daemon is already started.
func (r *Runner) Start(ctx context.Context) error {
	if r.deps.Store == nil || r.deps.Selection == nil {
		return ErrNoStore
	}

	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	ready := r.ready
	ctx, r.cancel = context.WithCancel(ctx)

	// Bind before marking running so a failed listen leaves the runner idle.
	listener, err := r.deps.ListenerFactory("tcp", r.config.Addr)
	if err != nil {
		r.cancel()
		r.mu.Unlock()
		return err
	}
	r.listener = listener

	l := r.deps.Log
	tr := tracker.New(ctx, r.deps.Store, r.deps.Selection, &tracker.Options{
		Clock:    r.deps.Clock,
		Location: r.deps.Location,
		Log:      l,
		Scheduler: scheduler.Options{
			RetainWakeup: true,
		},
	})
	r.tracker = tr
	r.running = true
	r.mu.Unlock()

	if err := tr.Restore(ctx); err != nil {
		l.Warning("daemon: failed to restore selection: %v", err)
	}

	web := server.NewWebServer(l, tr, r.deps.Store, &r.config.RPC)
	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(2)
	go func() {
		defer wg.Done()
		serveErr <- web.Serve(listener)
	}()
	go func() {
		defer wg.Done()
		web.Run(ctx)
	}()
	if pub := r.deps.Publisher; pub != nil {
		snaps, unsubscribe := tr.Subscribe()
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer unsubscribe()
			pub.Run(ctx, snaps, tr.Describe)
		}()
		l.Info("daemon: publishing to %s", pub.Topic())
	}
	close(ready)

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-serveErr:
		r.cancel()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), r.config.ShutdownTimeout)
	defer cancel()
	err = web.Shutdown(shutdownCtx)
	if errors.Is(err, context.DeadlineExceeded) {
		err = ErrShutdownTimeout
	}
	wg.Wait()
	tr.Close()
	r.cleanupOnStop()

	if runErr != nil {
		return runErr
	}
	if err != nil {
		return err
	}
	return ctx.Err()
}

// cleanupOnStop performs cleanup when the daemon stops.
func (r *Runner) cleanupOnStop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.running = false
	r.closeListener()
	r.ready = make(chan struct{})
}

// closeListener closes the listener if it exists.
// Caller must hold the mutex.
func (r *Runner) closeListener() {
	if r.listener != nil {
		_ = r.listener.Close()
	}
}

// Shutdown asks a running daemon to stop. Start returns once the shutdown
// completes.
func (r *Runner) Shutdown() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return ErrNotRunning
	}
	r.cancel()
	return nil
}

// IsRunning returns true if the daemon is currently running.
func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}
