package scheduler

import (
	"time"

	"github.com/jmhodges/clock"
	"github.com/namaadhu/namaadhu/internal/prayer"
	"github.com/namaadhu/namaadhu/pkg/logger"
)

const (
	// DefaultTolerance is how early a deferred wake-up may be observed and
	// still count as arriving on time.
	DefaultTolerance = time.Second
	// DefaultTickInterval is the live countdown refresh period.
	DefaultTickInterval = time.Second
	// MaxSleepCap bounds every timer so that NTP steps and system sleep
	// (a paused monotonic clock) delay a wake-up by at most this much.
	MaxSleepCap = 60 * time.Second
)

// Reason tells subscribers what produced a Snapshot.
type Reason string

const (
	ReasonInit     Reason = "init"
	ReasonLoad     Reason = "load"
	ReasonWake     Reason = "wake"
	ReasonTick     Reason = "tick"
	ReasonActivate Reason = "activate"
	ReasonSuspend  Reason = "suspend"
)

// State is the coarse lifecycle state of a scheduler.
type State string

const (
	// StateEmpty means no row is loaded.
	StateEmpty State = "empty"
	// StateIdle means a row is loaded and the countdown is not refreshed.
	StateIdle State = "idle"
	// StateTicking means a row is loaded and the countdown refreshes live.
	StateTicking State = "ticking"
)

// Snapshot is an immutable copy of the schedule state. Current and Upcoming
// are prayer.None when there is nothing to show; Remaining is then zero.
type Snapshot struct {
	Seq    uint64
	Reason Reason
	// At is the clock time the snapshot was computed for.
	At time.Time

	// Loaded is set when a valid row is anchored to a date. A malformed
	// row or one with no date in the current year leaves it false.
	Loaded bool
	Row    prayer.Row
	// Day is local midnight of the date the row was anchored to.
	Day time.Time

	Current    prayer.Kind
	Upcoming   prayer.Kind
	UpcomingAt time.Time
	Remaining  time.Duration

	Active bool
	// WakeAt is the deadline of the pending deferred wake-up, zero when none
	// is armed.
	WakeAt time.Time
}

// State derives the lifecycle state of s.
func (s Snapshot) State() State {
	switch {
	case !s.Loaded:
		return StateEmpty
	case s.Active:
		return StateTicking
	default:
		return StateIdle
	}
}

// HasPosition reports whether s names an upcoming prayer.
func (s Snapshot) HasPosition() bool {
	return s.Upcoming.Valid()
}

// Options configures a Scheduler. Zero fields take defaults.
type Options struct {
	// Clock is the time source. Defaults to the wall clock.
	Clock clock.Clock
	// Location is the fixed civil time zone rows are anchored in. Required;
	// UTC is used when nil.
	Location *time.Location
	// Tolerance is the scheduling allowance of the deferred wake-up.
	Tolerance time.Duration
	// TickInterval is the live countdown period.
	TickInterval time.Duration
	// RetainWakeup keeps the deferred wake-up armed after SetActive(false),
	// so current and upcoming keep advancing without live ticks. When false
	// deactivation suspends all state changes until the next SetActive(true)
	// or LoadRow.
	RetainWakeup bool
	// Log receives diagnostics. Defaults to a NopLogger.
	Log logger.Logger
}

func applyDefaults(opts *Options) Options {
	var o Options
	if opts != nil {
		o = *opts
	}
	if o.Clock == nil {
		o.Clock = clock.New()
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.TickInterval <= 0 {
		o.TickInterval = DefaultTickInterval
	}
	if o.Log == nil {
		o.Log = logger.NewNopLogger()
	}
	return o
}
