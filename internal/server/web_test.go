package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestWebServer_ServeAndShutdown(t *testing.T) {
	tr, mem := newTestTracker(t)
	ws := NewWebServer(nil, tr, mem, &RPCConfig{Secret: testSecret, Version: "2.0.0"})

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	served := make(chan error, 1)
	go func() { served <- ws.Serve(l) }()

	body := strings.NewReader(`{"jsonrpc":"2.0","method":"system.getVersion","id":1}`)
	req, _ := http.NewRequest(http.MethodPost, "http://"+l.Addr().String()+"/jsonrpc", body)
	req.Header.Set("Authorization", "Bearer "+testSecret)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp, err = http.Get("http://" + l.Addr().String() + "/jsonrpc")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for GET, got %d", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := ws.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	select {
	case err := <-served:
		if err != nil {
			t.Fatalf("expected nil from Serve after shutdown, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Shutdown")
	}
}

func TestWebServer_ShutdownBeforeServe(t *testing.T) {
	tr, mem := newTestTracker(t)
	ws := NewWebServer(nil, tr, mem, &RPCConfig{Secret: testSecret})
	if err := ws.Shutdown(context.Background()); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestWebServer_ServeClosedListener(t *testing.T) {
	tr, mem := newTestTracker(t)
	ws := NewWebServer(nil, tr, mem, &RPCConfig{Secret: testSecret})
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	l.Close()
	if err := ws.Serve(l); err == nil || errors.Is(err, http.ErrServerClosed) {
		t.Fatalf("expected accept error, got %v", err)
	}
}
