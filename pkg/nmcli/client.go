// Package nmcli is the Go client of the namaadhu daemon. Calls go over
// JSON-RPC on HTTP; Watch follows schedule pushes over a WebSocket.
package nmcli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/namaadhu/namaadhu/common"
)

const defaultTimeout = 10 * time.Second

type Client struct {
	base   string
	secret string
	httpc  *http.Client
	rpc    *jrpc2.Client
}

// Options configures New.
type Options struct {
	// HTTPClient defaults to a client with a 10s timeout. Its transport is
	// wrapped to send the bearer token.
	HTTPClient *http.Client
}

// New creates a client for the daemon at baseURL, e.g. http://127.0.0.1:6640.
func New(baseURL, secret string, opts *Options) *Client {
	var hc http.Client
	if opts != nil && opts.HTTPClient != nil {
		hc = *opts.HTTPClient
	} else {
		hc.Timeout = defaultTimeout
	}
	hc.Transport = &bearerTransport{secret: secret, next: hc.Transport}

	base := strings.TrimSuffix(baseURL, "/")
	ch := jhttp.NewChannel(base+common.RPCPath, &jhttp.ChannelOptions{Client: &hc})
	return &Client{
		base:   base,
		secret: secret,
		httpc:  &hc,
		rpc:    jrpc2.NewClient(ch, nil),
	}
}

// Close releases the client.
func (c *Client) Close() error {
	return c.rpc.Close()
}

func invoke[T any](ctx context.Context, c *Client, method string, params any) (*T, error) {
	var out T
	if err := c.rpc.CallResult(ctx, method, params, &out); err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %w", method, err)
	}
	return &out, nil
}

func (c *Client) Version(ctx context.Context) (*common.VersionResult, error) {
	return invoke[common.VersionResult](ctx, c, common.MethodGetVersion, nil)
}

// Islands lists active islands whose name matches query; an empty query
// lists all of them.
func (c *Client) Islands(ctx context.Context, query string) ([]common.IslandInfo, error) {
	res, err := invoke[common.ListIslandsResult](ctx, c, common.MethodListIslands, &common.ListIslandsParams{Query: query})
	if err != nil {
		return nil, err
	}
	return res.Islands, nil
}

// Atolls returns the matching islands sectioned by atoll.
func (c *Client) Atolls(ctx context.Context, query string) ([]common.AtollInfo, error) {
	res, err := invoke[common.ListIslandsResult](ctx, c, common.MethodListIslands, &common.ListIslandsParams{Query: query})
	if err != nil {
		return nil, err
	}
	return res.Atolls, nil
}

func (c *Client) Select(ctx context.Context, islandID int) (*common.IslandInfo, error) {
	res, err := invoke[common.SelectedResult](ctx, c, common.MethodSelectIsland, &common.IslandParams{IslandID: islandID})
	if err != nil {
		return nil, err
	}
	return res.Island, nil
}

// Selected returns the selected island, or nil when none is.
func (c *Client) Selected(ctx context.Context) (*common.IslandInfo, error) {
	res, err := invoke[common.SelectedResult](ctx, c, common.MethodSelectedIsland, nil)
	if err != nil {
		return nil, err
	}
	return res.Island, nil
}

func (c *Client) Clear(ctx context.Context) error {
	_, err := invoke[common.EmptyResult](ctx, c, common.MethodClearIsland, nil)
	return err
}

func (c *Client) Schedule(ctx context.Context) (*common.ScheduleInfo, error) {
	return invoke[common.ScheduleInfo](ctx, c, common.MethodGetSchedule, nil)
}

// Times returns the timetable of islandID (0 for the selected island) on
// date (YYYY-MM-DD, empty for today).
func (c *Client) Times(ctx context.Context, islandID int, date string) (*common.TimesResult, error) {
	return invoke[common.TimesResult](ctx, c, common.MethodGetTimes, &common.TimesParams{IslandID: islandID, Date: date})
}

// IsNotFound reports whether err is the daemon's unknown island error.
func IsNotFound(err error) bool {
	return hasCode(err, common.CodeIslandNotFound)
}

// IsNoData reports whether err means the daemon has no times for the
// requested day.
func IsNoData(err error) bool {
	return hasCode(err, common.CodeNoData)
}

func hasCode(err error, code int) bool {
	var e *jrpc2.Error
	return errors.As(err, &e) && int(e.Code) == code
}

type bearerTransport struct {
	secret string
	next   http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+t.secret)
	return next.RoundTrip(r)
}
