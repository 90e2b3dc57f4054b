// Package dayindex maps calendar dates to the day-of-year index used as the
// storage key of the prayer times table, and back.
//
// The index space always has 366 slots (0..365). Slot 59 is reserved for
// Feb 29 so that every other date keeps the same index in leap and non-leap
// years: in a non-leap year the ordinals from Mar 1 onwards are shifted by
// one and slot 59 has no date.
package dayindex

import (
	"errors"
	"time"
)

const (
	// Slots is the size of the index space.
	Slots = 366
	// MaxIndex is the largest valid index.
	MaxIndex = Slots - 1
	// ReservedLeapDay is the slot of Feb 29.
	ReservedLeapDay = 59

	// nearWindow bounds how far DecodeNear may move away from its reference.
	nearWindow = 183 * 24 * time.Hour
)

var (
	// ErrIndexOutOfRange is returned by Decode for indices outside 0..365.
	// It always points at a caller bug.
	ErrIndexOutOfRange = errors.New("day index out of range")
	// ErrNoSuchDate is returned by Decode for the reserved Feb 29 slot in a
	// non-leap year. It is an expected calendar gap, not a failure.
	ErrNoSuchDate = errors.New("day index has no date in this year")
	// ErrNoLocation is returned when no calendar location is supplied.
	ErrNoLocation = errors.New("no calendar location")
)

// IsLeap reports whether year is a Gregorian leap year.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// Encode returns the index of the civil date of t, evaluated in t's own
// location.
func Encode(t time.Time) int {
	ordinal := t.YearDay() - 1
	if !IsLeap(t.Year()) && ordinal >= ReservedLeapDay {
		ordinal++
	}
	return ordinal
}

// EncodeIn converts t into loc before encoding it.
func EncodeIn(t time.Time, loc *time.Location) (int, error) {
	if loc == nil {
		return 0, ErrNoLocation
	}
	return Encode(t.In(loc)), nil
}

// Decode returns local midnight in loc of the date that index denotes in
// year.
func Decode(index, year int, loc *time.Location) (time.Time, error) {
	if index < 0 || index > MaxIndex {
		return time.Time{}, ErrIndexOutOfRange
	}
	if loc == nil {
		return time.Time{}, ErrNoLocation
	}
	offset := index
	if !IsLeap(year) {
		switch {
		case index == ReservedLeapDay:
			return time.Time{}, ErrNoSuchDate
		case index > ReservedLeapDay:
			offset--
		}
	}
	return time.Date(year, time.January, 1+offset, 0, 0, 0, 0, loc), nil
}

// DecodeNear decodes index in whichever of the years around ref yields the
// date closest to ref. It is used to anchor a row to a date when only the
// index is known, so that a row loaded just before or after New Year still
// lands on the right side of it. The reserved Feb 29 slot only resolves
// when a leap day lies within half a year of ref.
func DecodeNear(index int, ref time.Time, loc *time.Location) (time.Time, error) {
	if loc == nil {
		return time.Time{}, ErrNoLocation
	}
	ref = ref.In(loc)
	var (
		best    time.Time
		bestGap time.Duration
		lastErr error
	)
	for _, year := range []int{ref.Year(), ref.Year() - 1, ref.Year() + 1} {
		d, err := Decode(index, year, loc)
		if err != nil {
			if errors.Is(err, ErrIndexOutOfRange) {
				return time.Time{}, err
			}
			lastErr = err
			continue
		}
		gap := d.Sub(ref)
		if gap < 0 {
			gap = -gap
		}
		if best.IsZero() || gap < bestGap {
			best, bestGap = d, gap
		}
	}
	if best.IsZero() {
		return time.Time{}, lastErr
	}
	if bestGap > nearWindow {
		return time.Time{}, ErrNoSuchDate
	}
	return best, nil
}
