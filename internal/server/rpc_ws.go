package server

import (
	"context"
	"net/http"

	"github.com/creachadair/jrpc2"
	cws "github.com/coder/websocket"
	"github.com/namaadhu/namaadhu/common"
)

// wsChannel adapts a coder/websocket.Conn to the jrpc2 Channel interface.
// Each WebSocket connection gets one wsChannel and one jrpc2 server.
type wsChannel struct {
	conn *cws.Conn
	ctx  context.Context
}

// Send writes a JSON-RPC message to the WebSocket connection.
func (c *wsChannel) Send(data []byte) error {
	return c.conn.Write(c.ctx, cws.MessageText, data)
}

// Recv reads a JSON-RPC message from the WebSocket connection.
func (c *wsChannel) Recv() ([]byte, error) {
	_, data, err := c.conn.Read(c.ctx)
	return data, err
}

// Close shuts down the WebSocket connection with a normal closure status.
func (c *wsChannel) Close() error {
	return c.conn.Close(cws.StatusNormalClosure, "")
}

// handleWS serves JSON-RPC over one WebSocket and registers the connection
// for schedule.changed pushes. The current schedule is pushed right away so
// watchers need not poll first.
func (s *WebServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := cws.Accept(w, r, nil)
	if err != nil {
		s.log.Warning("rpc: websocket accept failed: %v", err)
		return
	}
	ch := &wsChannel{conn: conn, ctx: r.Context()}
	srv := jrpc2.NewServer(s.rpc.methods, &jrpc2.ServerOptions{AllowPush: true})
	srv.Start(ch)

	if err := srv.Notify(r.Context(), common.NotifyScheduleChanged, s.rpc.tracker.Info()); err != nil {
		s.log.Warning("rpc: initial push failed: %v", err)
	}
	s.notifier.Register(srv)
	defer s.notifier.Unregister(srv)

	if err := srv.Wait(); err != nil {
		s.log.Info("rpc: websocket closed: %v", err)
	}
}
