package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmhodges/clock"
	"github.com/namaadhu/namaadhu/internal/dayindex"
	"github.com/namaadhu/namaadhu/internal/prayer"
)

const commandBuffer = 64

type commandKind int

const (
	cmdLoad commandKind = iota
	cmdActive
	cmdSubscribe
	cmdUnsubscribe
)

type command struct {
	kind   commandKind
	row    *prayer.Row
	active bool
	sub    *subscriber
}

type subscriber struct {
	ch   chan Snapshot
	once sync.Once
}

func (sub *subscriber) close() {
	sub.once.Do(func() { close(sub.ch) })
}

// wakeup is the handle of one armed deferred wake-up. A fire is only acted
// upon while its handle is the scheduler's current one and not cancelled.
// The timer never sleeps longer than MaxSleepCap; a fire ahead of the
// deadline re-arms it.
type wakeup struct {
	timer     *clock.Timer
	deadline  time.Time
	cancelled bool
}

func (w *wakeup) cancel() {
	if w == nil || w.cancelled {
		return
	}
	w.cancelled = true
	w.timer.Stop()
}

// Scheduler tracks the current and upcoming prayer of one loaded row.
type Scheduler struct {
	cmds   chan command
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	last   atomic.Pointer[Snapshot]
}

// New creates and starts a Scheduler. The scheduler goroutine exits when ctx
// is cancelled or Close is called; either way all timers are released.
func New(ctx context.Context, opts *Options) *Scheduler {
	o := applyDefaults(opts)
	ctx, cancel := context.WithCancel(ctx)
	s := &Scheduler{
		cmds:   make(chan command, commandBuffer),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	l := &loop{
		opts:  o,
		clk:   o.Clock,
		subs:  make(map[*subscriber]struct{}),
		owner: s,
	}
	l.publish(ReasonInit, o.Clock.Now())
	go l.run()
	return s
}

// LoadRow replaces the loaded row and recomputes. A nil row clears the
// schedule.
func (s *Scheduler) LoadRow(row *prayer.Row) {
	var cp *prayer.Row
	if row != nil {
		r := *row
		cp = &r
	}
	s.send(command{kind: cmdLoad, row: cp})
}

// SetActive turns the live countdown on or off.
func (s *Scheduler) SetActive(active bool) {
	s.send(command{kind: cmdActive, active: active})
}

// Snapshot returns the most recently published state without blocking.
func (s *Scheduler) Snapshot() Snapshot {
	if p := s.last.Load(); p != nil {
		return *p
	}
	return Snapshot{}
}

// Subscribe registers for snapshots. The channel first receives the
// current state and afterwards only ever holds the newest snapshot; slow
// readers skip intermediate ones. The returned func unsubscribes and closes
// the channel. The channel is also closed when the scheduler stops.
func (s *Scheduler) Subscribe() (<-chan Snapshot, func()) {
	sub := &subscriber{ch: make(chan Snapshot, 1)}
	if !s.send(command{kind: cmdSubscribe, sub: sub}) {
		sub.close()
		return sub.ch, func() {}
	}
	// The command may be queued behind the stop. The loop closes queued
	// subscribers on exit, but one enqueued after its final drain is ours.
	if s.ctx.Err() != nil {
		<-s.done
		sub.close()
	}
	return sub.ch, func() {
		s.send(command{kind: cmdUnsubscribe, sub: sub})
	}
}

// Close stops the scheduler and waits for its goroutine to release the
// timers.
func (s *Scheduler) Close() {
	s.cancel()
	<-s.done
}

// Done is closed once the scheduler goroutine has exited.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

func (s *Scheduler) send(c command) bool {
	if s.ctx.Err() != nil {
		return false
	}
	select {
	case s.cmds <- c:
		return true
	case <-s.ctx.Done():
		return false
	}
}

// loop is the state owned by the scheduler goroutine.
type loop struct {
	opts  Options
	clk   clock.Clock
	owner *Scheduler
	subs  map[*subscriber]struct{}
	seq   uint64

	row    *prayer.Row
	day    time.Time
	pos    prayer.Position
	hasPos bool
	active bool

	wake *wakeup
	tick *clock.Timer
}

func (l *loop) run() {
	defer func() {
		l.cancelWake()
		l.stopTick()
		for sub := range l.subs {
			sub.close()
		}
		l.subs = nil
		l.drain()
		close(l.owner.done)
	}()

	for {
		select {
		case <-l.owner.ctx.Done():
			return

		case c := <-l.owner.cmds:
			l.handle(c)

		case <-l.wakeC():
			l.onWake(l.wake)

		case <-l.tickC():
			l.onTick()
		}
	}
}

// drain closes the subscribers of commands still queued at exit.
func (l *loop) drain() {
	for {
		select {
		case c := <-l.owner.cmds:
			if c.sub != nil {
				c.sub.close()
			}
		default:
			return
		}
	}
}

func (l *loop) wakeC() <-chan time.Time {
	if l.wake == nil {
		return nil
	}
	return l.wake.timer.C
}

func (l *loop) tickC() <-chan time.Time {
	if l.tick == nil {
		return nil
	}
	return l.tick.C
}

func (l *loop) handle(c command) {
	switch c.kind {
	case cmdLoad:
		l.row = c.row
		l.recompute(ReasonLoad, l.clk.Now())

	case cmdActive:
		if c.active == l.active {
			return
		}
		l.active = c.active
		if c.active {
			l.armTick()
			l.recompute(ReasonActivate, l.clk.Now())
			return
		}
		l.stopTick()
		if !l.opts.RetainWakeup {
			l.cancelWake()
		}
		l.publish(ReasonSuspend, l.clk.Now())

	case cmdSubscribe:
		l.subs[c.sub] = struct{}{}
		if p := l.owner.last.Load(); p != nil {
			c.sub.ch <- *p
		}

	case cmdUnsubscribe:
		if _, ok := l.subs[c.sub]; ok {
			delete(l.subs, c.sub)
			c.sub.close()
		}
	}
}

// recompute derives current, upcoming and remaining time for now and arms
// the deferred wake-up at the upcoming prayer.
func (l *loop) recompute(reason Reason, now time.Time) {
	l.cancelWake()
	l.hasPos = false
	l.pos = prayer.Position{}
	l.day = time.Time{}

	if l.row == nil {
		l.publish(reason, now)
		return
	}
	if err := l.row.Validate(); err != nil {
		l.opts.Log.Warning("scheduler: ignoring row: %v", err)
		l.publish(reason, now)
		return
	}
	day, err := dayindex.DecodeNear(l.row.DayIndex, now, l.opts.Location)
	if err != nil {
		l.opts.Log.Warning("scheduler: cannot anchor day %d: %v", l.row.DayIndex, err)
		l.publish(reason, now)
		return
	}
	l.day = day

	pos, ok := prayer.Locate(prayer.Occurrences(*l.row, day), now)
	if !ok {
		l.publish(reason, now)
		return
	}
	l.pos = pos
	l.hasPos = true
	l.armWake(pos.UpcomingAt, now)
	l.publish(reason, now)
}

func (l *loop) armWake(at, now time.Time) {
	l.cancelWake()
	l.wake = &wakeup{
		timer:    l.clk.NewTimer(sleepFor(at, now)),
		deadline: at,
	}
}

// sleepFor is the timer delay towards at, capped at MaxSleepCap so a wall
// clock step or a host sleep is noticed within a minute.
func sleepFor(at, now time.Time) time.Duration {
	d := at.Sub(now)
	if d > MaxSleepCap {
		d = MaxSleepCap
	}
	if d < 0 {
		d = 0
	}
	return d
}

func (l *loop) cancelWake() {
	l.wake.cancel()
	l.wake = nil
}

func (l *loop) onWake(w *wakeup) {
	if w == nil || w != l.wake || w.cancelled {
		return
	}
	now := l.clk.Now()
	if w.deadline.Sub(now) > l.opts.Tolerance {
		w.timer = l.clk.NewTimer(sleepFor(w.deadline, now))
		return
	}
	l.wake = nil
	if now.Before(w.deadline) {
		now = w.deadline
	}
	l.recompute(ReasonWake, now)
}

func (l *loop) armTick() {
	l.stopTick()
	l.tick = l.clk.NewTimer(l.opts.TickInterval)
}

func (l *loop) stopTick() {
	if l.tick != nil {
		l.tick.Stop()
		l.tick = nil
	}
}

// onTick refreshes only the remaining time. Once the upcoming prayer has
// passed it falls back to a full recompute.
func (l *loop) onTick() {
	l.tick = nil
	if !l.active {
		return
	}
	l.armTick()
	now := l.clk.Now()
	switch {
	case !l.hasPos:
		l.publish(ReasonTick, now)
	case !now.Before(l.pos.UpcomingAt):
		l.recompute(ReasonTick, now)
	default:
		l.pos.Remaining = l.pos.UpcomingAt.Sub(now)
		l.publish(ReasonTick, now)
	}
}

func (l *loop) publish(reason Reason, now time.Time) {
	l.seq++
	snap := Snapshot{
		Seq:    l.seq,
		Reason: reason,
		At:     now,
		Active: l.active,
	}
	if l.row != nil && !l.day.IsZero() {
		snap.Loaded = true
		snap.Row = *l.row
		snap.Day = l.day
	}
	if l.hasPos {
		snap.Current = l.pos.Current
		snap.Upcoming = l.pos.Upcoming
		snap.UpcomingAt = l.pos.UpcomingAt
		snap.Remaining = l.pos.Remaining
	}
	if l.wake != nil {
		snap.WakeAt = l.wake.deadline
	}
	l.owner.last.Store(&snap)

	for sub := range l.subs {
		deliver(sub.ch, snap)
	}
}

// deliver replaces whatever snapshot the subscriber has not read yet.
func deliver(ch chan Snapshot, snap Snapshot) {
	for {
		select {
		case ch <- snap:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
