package tracker

import (
	"time"

	"github.com/namaadhu/namaadhu/common"
	"github.com/namaadhu/namaadhu/internal/prayer"
	"github.com/namaadhu/namaadhu/internal/scheduler"
	"github.com/namaadhu/namaadhu/internal/store"
)

// IslandInfo converts is to its wire form.
func IslandInfo(is store.Island) common.IslandInfo {
	return common.IslandInfo{
		ID:         is.ID,
		CategoryID: is.CategoryID,
		Atoll:      is.Atoll,
		Island:     is.Name,
		Name:       is.DisplayName(),
		Latitude:   is.Latitude,
		Longitude:  is.Longitude,
	}
}

// PrayerTimes lists the six prayers of row on day.
func PrayerTimes(row prayer.Row, day time.Time) []common.PrayerTime {
	occs := prayer.Day(row, day)
	out := make([]common.PrayerTime, 0, len(occs))
	for _, o := range occs {
		out = append(out, common.PrayerTime{
			Prayer: o.Kind.String(),
			Clock:  row.Clock(o.Kind),
			At:     o.At,
		})
	}
	return out
}

// TimesResult builds the times.get response.
func TimesResult(is store.Island, row prayer.Row, day time.Time, loc *time.Location) common.TimesResult {
	d := day.In(loc)
	midnight := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	return common.TimesResult{
		Island:   IslandInfo(is),
		Date:     midnight.Format(common.DateLayout),
		DayIndex: row.DayIndex,
		Times:    PrayerTimes(row, midnight),
	}
}

// Describe renders snap for clients, naming the selected island.
func (t *Tracker) Describe(snap scheduler.Snapshot) common.ScheduleInfo {
	info := common.ScheduleInfo{
		Seq:       snap.Seq,
		Reason:    string(snap.Reason),
		State:     string(snap.State()),
		At:        snap.At,
		Remaining: prayer.FormatRemaining(snap.Remaining),
		Active:    snap.Active,
	}
	if is := t.Selected(); is != nil {
		ii := IslandInfo(*is)
		info.Island = &ii
	}
	if snap.Loaded && !snap.Day.IsZero() {
		info.Date = snap.Day.Format(common.DateLayout)
		info.Times = PrayerTimes(snap.Row, snap.Day)
	}
	if snap.HasPosition() {
		at := snap.UpcomingAt
		info.Current = snap.Current.String()
		info.Upcoming = snap.Upcoming.String()
		info.UpcomingAt = &at
		info.RemainingSeconds = int64(snap.Remaining / time.Second)
	}
	return info
}

// Info describes the latest snapshot with the position located against the
// clock now, so it is current even while no countdown runs and before a
// late wake-up has been processed.
func (t *Tracker) Info() common.ScheduleInfo {
	snap := t.Snapshot()
	if snap.Loaded {
		now := t.clk.Now()
		// Past the last occurrence this is the zero Position.
		pos, _ := prayer.Locate(prayer.Occurrences(snap.Row, snap.Day), now)
		snap.Current, snap.Upcoming, snap.UpcomingAt, snap.Remaining = pos.Current, pos.Upcoming, pos.UpcomingAt, pos.Remaining
	}
	return t.Describe(snap)
}
