package common

// JSON-RPC method names served by the daemon.
const (
	MethodGetVersion     = "system.getVersion"
	MethodListIslands    = "islands.list"
	MethodSelectIsland   = "island.select"
	MethodSelectedIsland = "island.selected"
	MethodClearIsland    = "island.clear"
	MethodGetSchedule    = "schedule.get"
	MethodGetTimes       = "times.get"
)

// NotifyScheduleChanged is pushed to WebSocket clients with a ScheduleInfo.
const NotifyScheduleChanged = "schedule.changed"

// JSON-RPC error codes used by the daemon.
const (
	CodeIslandNotFound = -32001
	CodeNoData         = -32002
	CodeInvalidParams  = -32602
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// Endpoint paths on the daemon's HTTP listener.
const (
	RPCPath       = "/jsonrpc"
	RPCSocketPath = "/jsonrpc/ws"
)
