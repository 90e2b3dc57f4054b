// Package tracker connects the selected island to the prayer scheduler. It
// looks up the row for today, hands it to the scheduler and replaces it when
// the local date changes.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmhodges/clock"
	"github.com/namaadhu/namaadhu/internal/dayindex"
	"github.com/namaadhu/namaadhu/internal/prayer"
	"github.com/namaadhu/namaadhu/internal/scheduler"
	"github.com/namaadhu/namaadhu/internal/store"
	"github.com/namaadhu/namaadhu/pkg/logger"
)

var (
	ErrIslandNotFound = errors.New("island not found")
	ErrNoSelection    = errors.New("no island selected")
	ErrNoData         = errors.New("no prayer times for date")
)

// Selection persists the selected island.
type Selection interface {
	Selected() *store.Island
	Save(store.Island) error
	Clear() error
}

// Options configures a Tracker.
type Options struct {
	Clock    clock.Clock
	Location *time.Location
	Log      logger.Logger
	// Scheduler carries the remaining scheduler settings. Its Clock,
	// Location and Log are overridden by the fields above.
	Scheduler scheduler.Options
}

// Tracker owns one scheduler and keeps it loaded with the selected island's
// row for the current local date.
type Tracker struct {
	store store.Store
	sel   Selection
	clk   clock.Clock
	loc   *time.Location
	log   logger.Logger
	sched *scheduler.Scheduler

	mu     sync.Mutex
	island *store.Island
	// reloadMu orders every row hand-off to the scheduler, so a rollover
	// cannot load the previous island after a concurrent Select.
	reloadMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Tracker and starts its day rollover. Nothing is loaded until
// Restore or Select is called.
func New(ctx context.Context, st store.Store, sel Selection, opts *Options) *Tracker {
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
	if o.Log == nil {
		o.Log = logger.NewNopLogger()
	}
	so := o.Scheduler
	so.Clock = o.Clock
	so.Location = o.Location
	so.Log = o.Log

	ctx, cancel := context.WithCancel(ctx)
	t := &Tracker{
		store:  st,
		sel:    sel,
		clk:    o.Clock,
		loc:    o.Location,
		log:    o.Log,
		sched:  scheduler.New(ctx, &so),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go t.rollover()
	return t
}

// Location returns the zone rows are interpreted in.
func (t *Tracker) Location() *time.Location {
	return t.loc
}

// Now returns the tracker's clock time in its zone.
func (t *Tracker) Now() time.Time {
	return t.clk.Now().In(t.loc)
}

// Selected returns the selected island or nil.
func (t *Tracker) Selected() *store.Island {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.island == nil {
		return nil
	}
	is := *t.island
	return &is
}

// Select makes islandID the tracked island, persists the choice and loads
// today's row.
func (t *Tracker) Select(ctx context.Context, islandID int) (*store.Island, error) {
	is, err := t.store.Island(ctx, islandID)
	if err != nil {
		return nil, err
	}
	if is == nil {
		return nil, fmt.Errorf("%w: %d", ErrIslandNotFound, islandID)
	}
	if err := t.sel.Save(*is); err != nil {
		return nil, err
	}
	t.reloadMu.Lock()
	defer t.reloadMu.Unlock()
	t.mu.Lock()
	t.island = is
	t.mu.Unlock()
	t.log.Info("tracker: selected %s (category %d)", is.DisplayName(), is.CategoryID)

	return is, t.reloadLocked(ctx)
}

// Clear forgets the selection and empties the schedule.
func (t *Tracker) Clear() error {
	err := t.sel.Clear()
	t.reloadMu.Lock()
	defer t.reloadMu.Unlock()
	t.mu.Lock()
	t.island = nil
	t.mu.Unlock()
	t.sched.LoadRow(nil)
	return err
}

// Restore loads the persisted selection, if any.
func (t *Tracker) Restore(ctx context.Context) error {
	is := t.sel.Selected()
	if is == nil {
		t.log.Info("tracker: no island selected")
		return nil
	}
	t.reloadMu.Lock()
	defer t.reloadMu.Unlock()
	t.mu.Lock()
	t.island = is
	t.mu.Unlock()
	t.log.Info("tracker: restored %s", is.DisplayName())
	return t.reloadLocked(ctx)
}

// Times returns the row of islandID for the local date of day. An islandID
// of 0 means the selected island.
func (t *Tracker) Times(ctx context.Context, islandID int, day time.Time) (*store.Island, *prayer.Row, error) {
	var is *store.Island
	if islandID == 0 {
		is = t.Selected()
		if is == nil {
			return nil, nil, ErrNoSelection
		}
	} else {
		var err error
		is, err = t.store.Island(ctx, islandID)
		if err != nil {
			return nil, nil, err
		}
		if is == nil {
			return nil, nil, fmt.Errorf("%w: %d", ErrIslandNotFound, islandID)
		}
	}
	idx, err := dayindex.EncodeIn(day, t.loc)
	if err != nil {
		return nil, nil, err
	}
	row, err := t.store.PrayerRow(ctx, is.CategoryID, idx)
	if err != nil {
		return nil, nil, err
	}
	if row == nil {
		return is, nil, fmt.Errorf("%w: %s", ErrNoData, day.In(t.loc).Format(time.DateOnly))
	}
	return is, row, nil
}

// SetActive switches the scheduler's live countdown.
func (t *Tracker) SetActive(active bool) {
	t.sched.SetActive(active)
}

// Snapshot returns the scheduler's latest state.
func (t *Tracker) Snapshot() scheduler.Snapshot {
	return t.sched.Snapshot()
}

// Subscribe forwards to the scheduler.
func (t *Tracker) Subscribe() (<-chan scheduler.Snapshot, func()) {
	return t.sched.Subscribe()
}

// Close stops the rollover and the scheduler.
func (t *Tracker) Close() {
	t.cancel()
	<-t.done
	t.sched.Close()
}

// reload fetches today's row of the selected island. Missing data empties the
// schedule; it is logged, not returned.
func (t *Tracker) reload(ctx context.Context) error {
	t.reloadMu.Lock()
	defer t.reloadMu.Unlock()
	return t.reloadLocked(ctx)
}

func (t *Tracker) reloadLocked(ctx context.Context) error {
	is := t.Selected()
	if is == nil {
		t.sched.LoadRow(nil)
		return nil
	}
	now := t.Now()
	idx := dayindex.Encode(now)
	row, err := t.store.PrayerRow(ctx, is.CategoryID, idx)
	if err != nil {
		t.sched.LoadRow(nil)
		return err
	}
	if row == nil {
		t.log.Warning("tracker: no prayer times for %s on %s (day %d)", is.DisplayName(), now.Format(time.DateOnly), idx)
	}
	t.sched.LoadRow(row)
	return nil
}

func (t *Tracker) nextMidnight() time.Time {
	now := t.Now()
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, t.loc)
}

// sleepUntil arms a timer towards at, never longer than
// scheduler.MaxSleepCap.
func (t *Tracker) sleepUntil(at time.Time) *clock.Timer {
	d := at.Sub(t.clk.Now())
	if d > scheduler.MaxSleepCap {
		d = scheduler.MaxSleepCap
	}
	if d < 0 {
		d = 0
	}
	return t.clk.NewTimer(d)
}

// rollover reloads the row at every local midnight.
func (t *Tracker) rollover() {
	defer close(t.done)
	due := t.nextMidnight()
	timer := t.sleepUntil(due)
	for {
		select {
		case <-t.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			if t.clk.Now().Before(due) {
				timer = t.sleepUntil(due)
				continue
			}
			due = t.nextMidnight()
			timer = t.sleepUntil(due)
			if err := t.reload(t.ctx); err != nil {
				t.log.Error("tracker: day rollover failed: %v", err)
			}
		}
	}
}
