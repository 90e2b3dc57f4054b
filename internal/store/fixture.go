package store

import (
	"math"

	"github.com/namaadhu/namaadhu/internal/dayindex"
	"github.com/namaadhu/namaadhu/internal/prayer"
)

// Fixture returns a Memory store with two timetables and a handful of
// islands. Its rows follow a smooth seasonal curve around typical Malé times
// and cover every day index, so it answers for any date.
func Fixture() *Memory {
	m := NewMemory()
	for _, is := range []Island{
		{ID: 1, CategoryID: 1, Atoll: "K.", Name: "Malé", Minutes: 0, Latitude: 4.1755, Longitude: 73.5093, Status: 1},
		{ID: 2, CategoryID: 1, Atoll: "K.", Name: "Hulhumalé", Minutes: 0, Latitude: 4.2115, Longitude: 73.5401, Status: 1},
		{ID: 3, CategoryID: 2, Atoll: "S.", Name: "Hithadhoo", Minutes: 4, Latitude: -0.6081, Longitude: 73.0933, Status: 1},
		{ID: 4, CategoryID: 2, Atoll: "S.", Name: "Feydhoo", Minutes: 4, Latitude: -0.6838, Longitude: 73.1331, Status: 0},
	} {
		m.AddIsland(is)
	}
	for category, shift := range map[int]int{1: 0, 2: 4} {
		for idx := 0; idx < dayindex.Slots; idx++ {
			m.AddRow(fixtureRow(category, idx, shift))
		}
	}
	return m
}

func fixtureRow(category, index, shift int) prayer.Row {
	// seasonal swing peaks near the June solstice
	phase := 2 * math.Pi * float64(index-172) / float64(dayindex.Slots)
	swing := int(math.Round(12 * math.Cos(phase)))
	return prayer.Row{
		CategoryID: category,
		DayIndex:   index,
		Fajr:       4*60 + 50 + shift - swing/2,
		Sunrise:    6*60 + 5 + shift - swing/2,
		Dhuhr:      12*60 + 8 + shift,
		Asr:        15*60 + 25 + shift,
		Maghrib:    18*60 + 10 + shift + swing/2,
		Isha:       19*60 + 25 + shift + swing/2,
	}
}
