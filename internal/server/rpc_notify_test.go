package server

import (
	"encoding/json"
	"io"
	"sync"
	"testing"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/creachadair/jrpc2/handler"
	"github.com/namaadhu/namaadhu/common"
	"github.com/namaadhu/namaadhu/pkg/logger"
)

// newPipeServer creates a jrpc2 server with push support over an io.Pipe
// channel. The client channel must be drained or closed so pushes do not
// block.
func newPipeServer(t *testing.T) (channel.Channel, *jrpc2.Server, func()) {
	t.Helper()
	cr, sw := io.Pipe()
	sr, cw := io.Pipe()
	cli := channel.Line(cr, cw)
	srvCh := channel.Line(sr, sw)

	srv := jrpc2.NewServer(handler.Map{}, &jrpc2.ServerOptions{AllowPush: true})
	srv.Start(srvCh)

	cleanup := func() {
		cli.Close()
		_ = srv.Wait()
	}
	return cli, srv, cleanup
}

// countRecorder collects onCount callbacks.
type countRecorder struct {
	mu     sync.Mutex
	counts []int
}

func (c *countRecorder) record(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts = append(c.counts, n)
}

func (c *countRecorder) values() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.counts...)
}

func TestRPCNotifier_RegisterUnregisterCounts(t *testing.T) {
	rec := &countRecorder{}
	n := NewRPCNotifier(nil, rec.record)
	_, srv1, cleanup1 := newPipeServer(t)
	defer cleanup1()
	_, srv2, cleanup2 := newPipeServer(t)
	defer cleanup2()

	n.Register(srv1)
	n.Register(srv2)
	n.Unregister(srv1)
	n.Unregister(srv1)
	n.Unregister(srv2)

	got := rec.values()
	want := []int{1, 2, 1, 0}
	if len(got) != len(want) {
		t.Fatalf("expected counts %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected counts %v, got %v", want, got)
		}
	}
	if n.Count() != 0 {
		t.Fatalf("expected 0 servers, got %d", n.Count())
	}
}

func TestRPCNotifier_Broadcast_NoServers(t *testing.T) {
	n := NewRPCNotifier(nil, nil)
	n.Broadcast(common.NotifyScheduleChanged, &common.ScheduleInfo{State: "empty"})
}

func TestRPCNotifier_Broadcast_Success(t *testing.T) {
	n := NewRPCNotifier(nil, nil)
	cli, srv, cleanup := newPipeServer(t)
	defer cleanup()
	n.Register(srv)

	done := make(chan []byte, 1)
	go func() {
		data, _ := cli.Recv()
		done <- data
	}()

	n.Broadcast(common.NotifyScheduleChanged, &common.ScheduleInfo{Seq: 4, State: "idle", Current: "Asr"})

	var msg struct {
		Method string              `json:"method"`
		Params common.ScheduleInfo `json:"params"`
	}
	if err := json.Unmarshal(<-done, &msg); err != nil {
		t.Fatalf("unmarshal notification: %v", err)
	}
	if msg.Method != common.NotifyScheduleChanged || msg.Params.Seq != 4 || msg.Params.Current != "Asr" {
		t.Fatalf("unexpected notification %+v", msg)
	}
	if n.Count() != 1 {
		t.Fatalf("expected 1 server after successful broadcast, got %d", n.Count())
	}
}

func TestRPCNotifier_Broadcast_PartialFailure(t *testing.T) {
	mock := logger.NewMockLogger()
	rec := &countRecorder{}
	n := NewRPCNotifier(mock, rec.record)

	cli1, srv1, cleanup1 := newPipeServer(t)
	defer cleanup1()
	cli2, srv2, _ := newPipeServer(t)

	n.Register(srv1)
	n.Register(srv2)

	cli2.Close()
	_ = srv2.Wait()

	done := make(chan struct{}, 1)
	go func() { _, _ = cli1.Recv(); done <- struct{}{} }()

	n.Broadcast(common.NotifyScheduleChanged, &common.ScheduleInfo{})
	<-done

	if n.Count() != 1 {
		t.Fatalf("expected 1 server after partial failure, got %d", n.Count())
	}
	if len(mock.WarningCalls()) != 1 {
		t.Fatalf("expected one warning, got %v", mock.WarningCalls())
	}
	if got := rec.values(); got[len(got)-1] != 1 {
		t.Fatalf("expected last count 1, got %v", got)
	}
}

func TestRPCNotifier_ConcurrentRegisterUnregister(t *testing.T) {
	n := NewRPCNotifier(nil, func(int) {})
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cli, srv, _ := newPipeServer(t)

			n.Register(srv)
			_ = n.Count()
			n.Unregister(srv)

			cli.Close()
			_ = srv.Wait()
		}()
	}
	wg.Wait()

	if n.Count() != 0 {
		t.Fatalf("expected 0 servers after concurrent register/unregister, got %d", n.Count())
	}
}
