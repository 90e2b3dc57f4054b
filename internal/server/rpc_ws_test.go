package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	cws "github.com/coder/websocket"
	"github.com/namaadhu/namaadhu/common"
	"github.com/namaadhu/namaadhu/internal/tracker"
)

// newTestWebServer starts an httptest server with every endpoint mounted and
// the snapshot pump running.
func newTestWebServer(t *testing.T) (*WebServer, *tracker.Tracker, string) {
	t.Helper()
	tr, mem := newTestTracker(t)
	ws := NewWebServer(nil, tr, mem, &RPCConfig{Secret: testSecret, Version: "1.0.0"})
	srv := httptest.NewServer(ws.handler())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ws.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		srv.Close()
		ws.rpc.Close()
	})
	return ws, tr, "ws" + strings.TrimPrefix(srv.URL, "http") + common.RPCSocketPath
}

func dialWS(t *testing.T, ctx context.Context, wsURL string) *cws.Conn {
	t.Helper()
	conn, _, err := cws.Dial(ctx, wsURL, &cws.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bearer " + testSecret}},
	})
	if err != nil {
		t.Fatalf("WebSocket dial failed: %v", err)
	}
	return conn
}

type wsMessage struct {
	ID     any                 `json:"id"`
	Method string              `json:"method"`
	Params common.ScheduleInfo `json:"params"`
	Result json.RawMessage     `json:"result"`
	Error  map[string]any      `json:"error"`
}

// readUntil reads messages until match accepts one.
func readUntil(t *testing.T, ctx context.Context, conn *cws.Conn, match func(wsMessage) bool) wsMessage {
	t.Helper()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("WebSocket read failed: %v", err)
		}
		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if match(msg) {
			return msg
		}
	}
}

func isPush(msg wsMessage) bool {
	return msg.Method == common.NotifyScheduleChanged
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWebSocketEndpoint_AuthRequired(t *testing.T) {
	_, _, wsURL := newTestWebServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for _, header := range []http.Header{nil, {"Authorization": []string{"Bearer wrong-token"}}} {
		_, resp, err := cws.Dial(ctx, wsURL, &cws.DialOptions{HTTPHeader: header})
		if err == nil {
			t.Fatal("expected error for unauthorized WebSocket connection")
		}
		if resp != nil && resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.StatusCode)
		}
	}
}

func TestWebSocketEndpoint_QueryToken(t *testing.T) {
	_, _, wsURL := newTestWebServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := cws.Dial(ctx, wsURL+"?access_token="+testSecret, nil)
	if err != nil {
		t.Fatalf("WebSocket dial with query token failed: %v", err)
	}
	defer conn.Close(cws.StatusNormalClosure, "")
	readUntil(t, ctx, conn, isPush)
}

func TestWebSocketEndpoint_InitialPushAndCalls(t *testing.T) {
	_, _, wsURL := newTestWebServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, wsURL)
	defer conn.Close(cws.StatusNormalClosure, "")

	first := readUntil(t, ctx, conn, isPush)
	if first.Params.State != "empty" {
		t.Fatalf("expected empty schedule in first push, got %+v", first.Params)
	}

	for i := 1; i <= 3; i++ {
		data, _ := json.Marshal(map[string]any{"jsonrpc": "2.0", "method": "system.getVersion", "id": i})
		if err := conn.Write(ctx, cws.MessageText, data); err != nil {
			t.Fatalf("write %d failed: %v", i, err)
		}
		resp := readUntil(t, ctx, conn, func(m wsMessage) bool { return m.ID != nil })
		if int(resp.ID.(float64)) != i || resp.Result == nil {
			t.Fatalf("request %d: unexpected response %+v", i, resp)
		}
	}
}

func TestWebSocketEndpoint_PushesScheduleChanges(t *testing.T) {
	ws, tr, wsURL := newTestWebServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, wsURL)
	defer conn.Close(cws.StatusNormalClosure, "")
	readUntil(t, ctx, conn, isPush)
	waitFor(t, func() bool { return ws.Notifier().Count() == 1 }, "registration")

	data, _ := json.Marshal(map[string]any{"jsonrpc": "2.0", "method": "island.select", "id": 1, "params": map[string]any{"islandId": 3}})
	if err := conn.Write(ctx, cws.MessageText, data); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	push := readUntil(t, ctx, conn, func(m wsMessage) bool { return isPush(m) && m.Params.Upcoming != "" })
	if push.Params.Current != "Dhuhr" || push.Params.Upcoming != "Asr" {
		t.Fatalf("expected Dhuhr -> Asr, got %+v", push.Params)
	}
	if push.Params.Island == nil || push.Params.Island.ID != 3 {
		t.Fatalf("expected island in push, got %+v", push.Params.Island)
	}
	if !tr.Snapshot().Active {
		t.Fatal("expected live countdown while a watcher is connected")
	}
}

func TestWebSocketEndpoint_WatchersDriveActive(t *testing.T) {
	ws, tr, wsURL := newTestWebServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if tr.Snapshot().Active {
		t.Fatal("expected inactive scheduler without watchers")
	}

	conn1 := dialWS(t, ctx, wsURL)
	readUntil(t, ctx, conn1, isPush)
	conn2 := dialWS(t, ctx, wsURL)
	readUntil(t, ctx, conn2, isPush)
	waitFor(t, func() bool { return ws.Notifier().Count() == 2 }, "two watchers")
	waitFor(t, func() bool { return tr.Snapshot().Active }, "activation")

	conn1.Close(cws.StatusNormalClosure, "")
	waitFor(t, func() bool { return ws.Notifier().Count() == 1 }, "one watcher")
	if !tr.Snapshot().Active {
		t.Fatal("expected countdown to continue with one watcher left")
	}

	conn2.Close(cws.StatusNormalClosure, "")
	waitFor(t, func() bool { return ws.Notifier().Count() == 0 }, "no watchers")
	waitFor(t, func() bool { return !tr.Snapshot().Active }, "deactivation")
}

func TestWsChannel_Interface(t *testing.T) {
	var ch any = &wsChannel{}
	if _, ok := ch.(interface {
		Send([]byte) error
		Recv() ([]byte, error)
		Close() error
	}); !ok {
		t.Fatal("wsChannel does not implement the jrpc2 channel interface")
	}
}
