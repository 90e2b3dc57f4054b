package server

import (
	"context"
	"sync"

	"github.com/creachadair/jrpc2"
	"github.com/namaadhu/namaadhu/pkg/logger"
)

// RPCNotifier maintains the set of connected WebSocket jrpc2 servers and
// broadcasts push notifications to all of them.
type RPCNotifier struct {
	mu      sync.RWMutex
	servers map[*jrpc2.Server]struct{}
	log     logger.Logger
	// onCount is called with the new number of servers after every change.
	onCount func(int)
}

// NewRPCNotifier creates a new notifier. onCount may be nil.
func NewRPCNotifier(l logger.Logger, onCount func(int)) *RPCNotifier {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &RPCNotifier{
		servers: make(map[*jrpc2.Server]struct{}),
		log:     l,
		onCount: onCount,
	}
}

// Register adds a server to the broadcast set.
func (n *RPCNotifier) Register(srv *jrpc2.Server) {
	n.mu.Lock()
	n.servers[srv] = struct{}{}
	count := len(n.servers)
	n.mu.Unlock()
	n.changed(count)
}

// Unregister removes a server from the broadcast set.
func (n *RPCNotifier) Unregister(srv *jrpc2.Server) {
	n.mu.Lock()
	_, ok := n.servers[srv]
	delete(n.servers, srv)
	count := len(n.servers)
	n.mu.Unlock()
	if ok {
		n.changed(count)
	}
}

// Broadcast sends a push notification to all registered servers. Servers
// that fail to receive are unregistered.
func (n *RPCNotifier) Broadcast(method string, params any) {
	n.mu.RLock()
	servers := make([]*jrpc2.Server, 0, len(n.servers))
	for srv := range n.servers {
		servers = append(servers, srv)
	}
	n.mu.RUnlock()

	var failed []*jrpc2.Server
	for _, srv := range servers {
		if err := srv.Notify(context.Background(), method, params); err != nil {
			n.log.Warning("rpc: push %s failed: %v", method, err)
			failed = append(failed, srv)
		}
	}

	if len(failed) > 0 {
		n.mu.Lock()
		for _, srv := range failed {
			delete(n.servers, srv)
		}
		count := len(n.servers)
		n.mu.Unlock()
		n.changed(count)
	}
}

// Count returns the number of registered servers.
func (n *RPCNotifier) Count() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.servers)
}

func (n *RPCNotifier) changed(count int) {
	if n.onCount != nil {
		n.onCount(count)
	}
}

// StopAll stops every registered server, closing their connections.
func (n *RPCNotifier) StopAll() {
	n.mu.RLock()
	servers := make([]*jrpc2.Server, 0, len(n.servers))
	for srv := range n.servers {
		servers = append(servers, srv)
	}
	n.mu.RUnlock()

	for _, srv := range servers {
		srv.Stop()
	}
}
