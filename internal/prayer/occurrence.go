// Package prayer holds the daily prayer model: the six prayer kinds, the
// stored per-day row and the derivation of the current and upcoming prayer
// for a moment in time.
package prayer

import (
	"fmt"
	"time"
)

// Occurrence binds a prayer to an absolute moment.
type Occurrence struct {
	Kind Kind      `json:"kind"`
	At   time.Time `json:"at"`
}

// Position is the outcome of locating a moment within a sequence of
// occurrences.
type Position struct {
	Current    Kind
	Upcoming   Kind
	UpcomingAt time.Time
	Remaining  time.Duration
}

// At anchors a minute of day to the calendar day of day, in day's location.
func At(day time.Time, minutes int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, minutes, 0, 0, day.Location())
}

// Day returns the six occurrences of row anchored to day, in canonical order.
func Day(row Row, day time.Time) []Occurrence {
	occs := make([]Occurrence, 0, len(Kinds))
	for _, k := range Kinds {
		occs = append(occs, Occurrence{Kind: k, At: At(day, row.Minutes(k))})
	}
	return occs
}

// Occurrences returns the six occurrences of row on day followed by Fajr of
// the next calendar day. Tomorrow's Fajr reuses today's Fajr minutes: the
// row of the following day is not consulted.
func Occurrences(row Row, day time.Time) []Occurrence {
	occs := Day(row, day)
	y, m, d := day.Date()
	tomorrow := time.Date(y, m, d+1, 0, 0, 0, 0, day.Location())
	return append(occs, Occurrence{Kind: Fajr, At: At(tomorrow, row.Fajr)})
}

// Locate finds the first occurrence strictly after now. The occurrence
// before it is the current prayer; when the first occurrence is still ahead
// the current prayer is the previous night's Isha. It returns false when no
// occurrence lies after now.
func Locate(occs []Occurrence, now time.Time) (Position, bool) {
	for i, o := range occs {
		if !o.At.After(now) {
			continue
		}
		current := Isha
		if i > 0 {
			current = occs[i-1].Kind
		}
		return Position{
			Current:    current,
			Upcoming:   o.Kind,
			UpcomingAt: o.At,
			Remaining:  o.At.Sub(now),
		}, true
	}
	return Position{}, false
}

// FormatRemaining renders a countdown as H:MM:SS, or MM:SS under an hour.
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "00:00:00"
	}
	total := int64(d.Round(time.Second) / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
