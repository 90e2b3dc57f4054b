package common

import "time"

// VersionResult is the response for system.getVersion.
type VersionResult struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildType string `json:"buildType,omitempty"`
}

// IslandInfo describes one island.
type IslandInfo struct {
	ID         int     `json:"id"`
	CategoryID int     `json:"categoryId"`
	Atoll      string  `json:"atoll"`
	Island     string  `json:"island"`
	Name       string  `json:"name"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

// ListIslandsParams is the input for islands.list.
type ListIslandsParams struct {
	Query string `json:"query,omitempty"`
}

// ListIslandsResult is the response for islands.list. Islands keeps the
// database order; Atolls holds the same islands sectioned by atoll.
type ListIslandsResult struct {
	Islands []IslandInfo `json:"islands"`
	Atolls  []AtollInfo  `json:"atolls"`
}

// AtollInfo is one atoll section of the island list.
type AtollInfo struct {
	Atoll   string       `json:"atoll"`
	Islands []IslandInfo `json:"islands"`
}

// IslandParams is the input for island.select.
type IslandParams struct {
	IslandID int `json:"islandId"`
}

// SelectedResult is the response for island.selected. Island is nil when
// nothing is selected.
type SelectedResult struct {
	Island *IslandInfo `json:"island"`
}

// TimesParams is the input for times.get. IslandID defaults to the selected
// island and Date (YYYY-MM-DD) to today.
type TimesParams struct {
	IslandID int    `json:"islandId,omitempty"`
	Date     string `json:"date,omitempty"`
}

// PrayerTime is one prayer of a day.
type PrayerTime struct {
	Prayer string    `json:"prayer"`
	Clock  string    `json:"clock"`
	At     time.Time `json:"at"`
}

// TimesResult is the response for times.get.
type TimesResult struct {
	Island   IslandInfo   `json:"island"`
	Date     string       `json:"date"`
	DayIndex int          `json:"dayIndex"`
	Times    []PrayerTime `json:"times"`
}

// ScheduleInfo is the live state of the tracker, returned by schedule.get
// and pushed as schedule.changed.
type ScheduleInfo struct {
	Seq    uint64      `json:"seq"`
	Reason string      `json:"reason"`
	State  string      `json:"state"`
	At     time.Time   `json:"at"`
	Island *IslandInfo `json:"island,omitempty"`
	Date   string      `json:"date,omitempty"`

	Current          string     `json:"current,omitempty"`
	Upcoming         string     `json:"upcoming,omitempty"`
	UpcomingAt       *time.Time `json:"upcomingAt,omitempty"`
	RemainingSeconds int64      `json:"remainingSeconds"`
	Remaining        string     `json:"remaining"`
	Active           bool       `json:"active"`

	Times []PrayerTime `json:"times,omitempty"`
}

// HasPosition reports whether s names an upcoming prayer.
func (s *ScheduleInfo) HasPosition() bool {
	return s.Upcoming != "" && s.UpcomingAt != nil
}

// EmptyResult is a placeholder for methods that return no data.
type EmptyResult struct{}
