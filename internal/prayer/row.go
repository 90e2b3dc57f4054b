package prayer

import (
	"errors"
	"fmt"
)

// MinutesPerDay bounds the minute-of-day values of a Row.
const MinutesPerDay = 24 * 60

// ErrInvalidRow is wrapped by Row.Validate.
var ErrInvalidRow = errors.New("invalid prayer row")

// Row is one day's prayer times for one location category, as stored in the
// prayer_times table. Times are minutes after local midnight.
type Row struct {
	CategoryID int `db:"category_id" json:"categoryId"`
	DayIndex   int `db:"date" json:"dayIndex"`
	Fajr       int `db:"fajr" json:"fajr"`
	Sunrise    int `db:"sunrise" json:"sunrise"`
	Dhuhr      int `db:"dhuhr" json:"dhuhr"`
	Asr        int `db:"asr" json:"asr"`
	Maghrib    int `db:"maghrib" json:"maghrib"`
	Isha       int `db:"isha" json:"isha"`
}

// Minutes returns the minute-of-day of k, or -1 for None.
func (r Row) Minutes(k Kind) int {
	switch k {
	case Fajr:
		return r.Fajr
	case Sunrise:
		return r.Sunrise
	case Dhuhr:
		return r.Dhuhr
	case Asr:
		return r.Asr
	case Maghrib:
		return r.Maghrib
	case Isha:
		return r.Isha
	}
	return -1
}

// Clock formats the time of k as HH:MM.
func (r Row) Clock(k Kind) string {
	m := r.Minutes(k)
	if m < 0 {
		return "--:--"
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// Validate checks the ranges of the index and of every time of day.
func (r Row) Validate() error {
	if r.DayIndex < 0 || r.DayIndex > 365 {
		return fmt.Errorf("%w: day index %d", ErrInvalidRow, r.DayIndex)
	}
	for _, k := range Kinds {
		if m := r.Minutes(k); m < 0 || m >= MinutesPerDay {
			return fmt.Errorf("%w: %s at minute %d", ErrInvalidRow, k, m)
		}
	}
	return nil
}
