package nmcli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	cws "github.com/coder/websocket"
	"github.com/creachadair/jrpc2"
	"github.com/namaadhu/namaadhu/common"
)

// wsChannel carries jrpc2 messages over one WebSocket.
type wsChannel struct {
	conn *cws.Conn
	ctx  context.Context
}

func (c *wsChannel) Send(data []byte) error {
	return c.conn.Write(c.ctx, cws.MessageText, data)
}

func (c *wsChannel) Recv() ([]byte, error) {
	_, data, err := c.conn.Read(c.ctx)
	return data, err
}

func (c *wsChannel) Close() error {
	return c.conn.Close(cws.StatusNormalClosure, "")
}

func (c *Client) socketURL() string {
	u := c.base
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + common.RPCSocketPath
}

// Watch calls fn with every schedule the daemon pushes, starting with the
// current one, until ctx is done or the connection drops. While any watcher
// is connected the daemon counts down every second. Watch returns nil when
// ctx ends it.
func (c *Client) Watch(ctx context.Context, fn func(common.ScheduleInfo)) error {
	conn, _, err := cws.Dial(ctx, c.socketURL(), &cws.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bearer " + c.secret}},
	})
	if err != nil {
		return fmt.Errorf("error connecting to daemon: %w", err)
	}

	stopped := make(chan error, 1)
	cli := jrpc2.NewClient(&wsChannel{conn: conn, ctx: ctx}, &jrpc2.ClientOptions{
		OnNotify: func(req *jrpc2.Request) {
			if req.Method() != common.NotifyScheduleChanged {
				return
			}
			var info common.ScheduleInfo
			if err := req.UnmarshalParams(&info); err != nil {
				return
			}
			fn(info)
		},
		OnStop: func(_ *jrpc2.Client, err error) {
			stopped <- err
		},
	})
	defer cli.Close()

	select {
	case <-ctx.Done():
		return nil
	case err := <-stopped:
		if ctx.Err() != nil || err == nil || errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("watch ended: %w", err)
	}
}
