// Package server exposes the tracker over JSON-RPC 2.0 on HTTP and WebSocket.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/namaadhu/namaadhu/common"
	"github.com/namaadhu/namaadhu/internal/store"
	"github.com/namaadhu/namaadhu/internal/tracker"
	"github.com/namaadhu/namaadhu/pkg/logger"
)

const readHeaderTimeout = 10 * time.Second

// WebServer serves JSON-RPC over HTTP and WebSocket. While at least one
// WebSocket client is connected the tracker counts down live and every
// snapshot is pushed to the clients.
type WebServer struct {
	log      logger.Logger
	tracker  *tracker.Tracker
	rpc      *RPCServer
	notifier *RPCNotifier
	server   *http.Server
	mu       sync.Mutex
}

func NewWebServer(l logger.Logger, tr *tracker.Tracker, st store.Store, cfg *RPCConfig) *WebServer {
	if l == nil {
		l = logger.NewNopLogger()
	}
	s := &WebServer{
		log:     l,
		tracker: tr,
		rpc:     NewRPCServer(cfg, tr, st, l),
	}
	s.notifier = NewRPCNotifier(l, s.watchersChanged)
	return s
}

// Notifier returns the broadcast set of WebSocket clients.
func (s *WebServer) Notifier() *RPCNotifier {
	return s.notifier
}

func (s *WebServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST "+common.RPCPath, requireToken(s.rpc.secret, s.rpc.bridge))
	mux.Handle("GET "+common.RPCSocketPath, requireToken(s.rpc.secret, http.HandlerFunc(s.handleWS)))
	return mux
}

// Handler returns the HTTP handler with every endpoint mounted.
func (s *WebServer) Handler() http.Handler {
	return s.handler()
}

func (s *WebServer) watchersChanged(count int) {
	s.tracker.SetActive(count > 0)
}

// Run pushes every tracker snapshot to the connected WebSocket clients
// until ctx is done.
func (s *WebServer) Run(ctx context.Context) {
	snaps, unsubscribe := s.tracker.Subscribe()
	defer unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snaps:
			if !ok {
				return
			}
			if s.notifier.Count() == 0 {
				continue
			}
			info := s.tracker.Describe(snap)
			s.notifier.Broadcast(common.NotifyScheduleChanged, &info)
		}
	}
}

// Serve accepts connections on l until Shutdown.
func (s *WebServer) Serve(l net.Listener) error {
	s.mu.Lock()
	s.server = &http.Server{
		Handler:           s.handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	srv := s.server
	s.mu.Unlock()

	s.log.Info("listening on %s", l.Addr())
	err := srv.Serve(l)
	if errors.Is(err, http.ErrServerClosed) {
		return nil // Expected during shutdown
	}
	return err
}

// Shutdown gracefully stops the web server and the RPC bridge.
func (s *WebServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	defer s.rpc.Close()
	if s.server == nil {
		return nil
	}
	// Hijacked WebSocket connections are not tracked by http.Server.
	s.notifier.StopAll()
	return s.server.Shutdown(ctx)
}
