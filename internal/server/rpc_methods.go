package server

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/namaadhu/namaadhu/common"
	"github.com/namaadhu/namaadhu/internal/store"
	"github.com/namaadhu/namaadhu/internal/tracker"
	"github.com/namaadhu/namaadhu/pkg/logger"
)

const (
	codeIslandNotFound = jrpc2.Code(common.CodeIslandNotFound)
	codeNoData         = jrpc2.Code(common.CodeNoData)
	codeInvalidParams  = jrpc2.Code(common.CodeInvalidParams)
)

// RPCConfig holds configuration for the JSON-RPC endpoints.
type RPCConfig struct {
	Secret    string // Auth token (required -- empty rejects every request)
	Version   string // Daemon version
	Commit    string // Git commit
	BuildType string // Build type
}

// RPCServer holds the method table and the HTTP bridge serving it.
type RPCServer struct {
	methods   handler.Map
	bridge    jhttp.Bridge
	secret    string
	version   string
	commit    string
	buildType string
	tracker   *tracker.Tracker
	store     store.Store
	log       logger.Logger
}

// NewRPCServer creates an RPCServer answering from tr and st.
func NewRPCServer(cfg *RPCConfig, tr *tracker.Tracker, st store.Store, l logger.Logger) *RPCServer {
	if l == nil {
		l = logger.NewNopLogger()
	}
	rs := &RPCServer{
		secret:    cfg.Secret,
		version:   cfg.Version,
		commit:    cfg.Commit,
		buildType: cfg.BuildType,
		tracker:   tr,
		store:     st,
		log:       l,
	}

	rs.methods = handler.Map{
		common.MethodGetVersion:     handler.New(rs.systemGetVersion),
		common.MethodListIslands:    handler.New(rs.islandsList),
		common.MethodSelectIsland:   handler.New(rs.islandSelect),
		common.MethodSelectedIsland: handler.New(rs.islandSelected),
		common.MethodClearIsland:    handler.New(rs.islandClear),
		common.MethodGetSchedule:    handler.New(rs.scheduleGet),
		common.MethodGetTimes:       handler.New(rs.timesGet),
	}
	rs.bridge = jhttp.NewBridge(rs.methods, nil)
	return rs
}

func (rs *RPCServer) systemGetVersion(_ context.Context) (*common.VersionResult, error) {
	return &common.VersionResult{
		Version:   rs.version,
		Commit:    rs.commit,
		BuildType: rs.buildType,
	}, nil
}

// islandsList returns the active islands, optionally filtered by a search
// query.
func (rs *RPCServer) islandsList(ctx context.Context, p *common.ListIslandsParams) (*common.ListIslandsResult, error) {
	islands, err := rs.store.Islands(ctx)
	if err != nil {
		return nil, rs.internal(err)
	}
	if p != nil {
		islands = store.Filter(islands, p.Query)
	}
	res := &common.ListIslandsResult{
		Islands: make([]common.IslandInfo, 0, len(islands)),
		Atolls:  []common.AtollInfo{},
	}
	for _, is := range islands {
		res.Islands = append(res.Islands, tracker.IslandInfo(is))
	}
	for _, g := range store.GroupByAtoll(islands) {
		a := common.AtollInfo{Atoll: g.Atoll, Islands: make([]common.IslandInfo, 0, len(g.Islands))}
		for _, is := range g.Islands {
			a.Islands = append(a.Islands, tracker.IslandInfo(is))
		}
		res.Atolls = append(res.Atolls, a)
	}
	return res, nil
}

func (rs *RPCServer) islandSelect(ctx context.Context, p *common.IslandParams) (*common.SelectedResult, error) {
	if p == nil || p.IslandID <= 0 {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: islandId"}
	}
	is, err := rs.tracker.Select(ctx, p.IslandID)
	if err != nil && is == nil {
		return nil, rs.mapError(err)
	}
	if err != nil {
		rs.log.Warning("rpc: selected island %d but loading today failed: %v", p.IslandID, err)
	}
	info := tracker.IslandInfo(*is)
	return &common.SelectedResult{Island: &info}, nil
}

func (rs *RPCServer) islandSelected(_ context.Context) (*common.SelectedResult, error) {
	res := &common.SelectedResult{}
	if is := rs.tracker.Selected(); is != nil {
		info := tracker.IslandInfo(*is)
		res.Island = &info
	}
	return res, nil
}

func (rs *RPCServer) islandClear(_ context.Context) (*common.EmptyResult, error) {
	if err := rs.tracker.Clear(); err != nil {
		return nil, rs.internal(err)
	}
	return &common.EmptyResult{}, nil
}

func (rs *RPCServer) scheduleGet(_ context.Context) (*common.ScheduleInfo, error) {
	info := rs.tracker.Info()
	return &info, nil
}

// timesGet lists the prayer times of one island on one date.
func (rs *RPCServer) timesGet(ctx context.Context, p *common.TimesParams) (*common.TimesResult, error) {
	if p == nil {
		p = &common.TimesParams{}
	}
	loc := rs.tracker.Location()
	day := rs.tracker.Now()
	if d := strings.TrimSpace(p.Date); d != "" {
		parsed, err := time.ParseInLocation(common.DateLayout, d, loc)
		if err != nil {
			return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "invalid date: " + d}
		}
		day = parsed
	}
	is, row, err := rs.tracker.Times(ctx, p.IslandID, day)
	if err != nil {
		return nil, rs.mapError(err)
	}
	res := tracker.TimesResult(*is, *row, day, loc)
	return &res, nil
}

// mapError converts tracker errors to JSON-RPC errors.
func (rs *RPCServer) mapError(err error) error {
	switch {
	case errors.Is(err, tracker.ErrIslandNotFound):
		return &jrpc2.Error{Code: codeIslandNotFound, Message: err.Error()}
	case errors.Is(err, tracker.ErrNoData):
		return &jrpc2.Error{Code: codeNoData, Message: err.Error()}
	case errors.Is(err, tracker.ErrNoSelection):
		return &jrpc2.Error{Code: codeInvalidParams, Message: "no island selected: pass islandId"}
	default:
		return rs.internal(err)
	}
}

func (rs *RPCServer) internal(err error) error {
	rs.log.Error("rpc: %v", err)
	return &jrpc2.Error{Code: jrpc2.InternalError, Message: err.Error()}
}

// Close shuts down the jrpc2 bridge, releasing internal goroutines.
func (rs *RPCServer) Close() {
	rs.bridge.Close()
}
