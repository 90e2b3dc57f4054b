// Package scheduler keeps the current and upcoming prayer of a loaded day
// up to date as time passes.
//
// A Scheduler is a single goroutine that owns the schedule state. Callers
// load rows and toggle live mode through channels; the goroutine recomputes
// the position, arms exactly one deferred wake-up at the upcoming prayer and,
// while active, refreshes the countdown every second. No timer sleeps longer
// than MaxSleepCap, so a wall clock step or a suspended host is caught up
// within a minute instead of firing late by the time spent asleep. Every change is
// published as an immutable Snapshot to subscribers.
//
// The scheduler never fails on missing or malformed data: both produce the
// empty state, which is a normal condition before a location is chosen.
package scheduler
