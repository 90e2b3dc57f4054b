// Package store reads islands and daily prayer rows. The production store is
// the bundled read-only SQLite database; Memory serves tests and fixture runs.
package store

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/namaadhu/namaadhu/internal/prayer"
)

// ErrClosed is returned by a store after Close.
var ErrClosed = errors.New("store closed")

// Store is the read side used by the tracker and the RPC handlers. Missing
// islands and rows are reported as (nil, nil).
type Store interface {
	Islands(ctx context.Context) ([]Island, error)
	Island(ctx context.Context, id int) (*Island, error)
	PrayerRow(ctx context.Context, categoryID, dayIndex int) (*prayer.Row, error)
	Close() error
}

// Island is a row of the islands table. CategoryID selects the prayer_times
// rows shared by islands with the same timetable.
type Island struct {
	ID         int     `db:"id" json:"id"`
	CategoryID int     `db:"category_id" json:"categoryId"`
	Atoll      string  `db:"atoll" json:"atoll"`
	Name       string  `db:"island" json:"island"`
	Minutes    int     `db:"minutes" json:"minutes"`
	Latitude   float64 `db:"latitude" json:"latitude"`
	Longitude  float64 `db:"longitude" json:"longitude"`
	Status     int     `db:"status" json:"status"`
}

// DisplayName joins atoll and island, e.g. "K. Malé".
func (i Island) DisplayName() string {
	return i.Atoll + " " + i.Name
}

// Active reports whether the island is listed.
func (i Island) Active() bool {
	return i.Status == 1
}

// Filter keeps islands whose atoll, name or display name contains query,
// ignoring case. An empty query keeps everything.
func Filter(islands []Island, query string) []Island {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return islands
	}
	var out []Island
	for _, is := range islands {
		if strings.Contains(strings.ToLower(is.Name), q) ||
			strings.Contains(strings.ToLower(is.Atoll), q) ||
			strings.Contains(strings.ToLower(is.DisplayName()), q) {
			out = append(out, is)
		}
	}
	return out
}

// AtollGroup is the islands of one atoll.
type AtollGroup struct {
	Atoll   string   `json:"atoll"`
	Islands []Island `json:"islands"`
}

// GroupByAtoll groups islands by atoll. Atolls and the islands inside each
// are sorted case-insensitively by name.
func GroupByAtoll(islands []Island) []AtollGroup {
	idx := make(map[string]int)
	var groups []AtollGroup
	for _, is := range islands {
		i, ok := idx[is.Atoll]
		if !ok {
			i = len(groups)
			idx[is.Atoll] = i
			groups = append(groups, AtollGroup{Atoll: is.Atoll})
		}
		groups[i].Islands = append(groups[i].Islands, is)
	}
	for _, g := range groups {
		sort.SliceStable(g.Islands, func(a, b int) bool {
			return strings.ToLower(g.Islands[a].Name) < strings.ToLower(g.Islands[b].Name)
		})
	}
	sort.SliceStable(groups, func(a, b int) bool {
		return strings.ToLower(groups[a].Atoll) < strings.ToLower(groups[b].Atoll)
	})
	return groups
}
