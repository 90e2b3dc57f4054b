package store

import (
	"context"
	"sort"
	"sync"

	"github.com/namaadhu/namaadhu/internal/prayer"
)

type rowKey struct {
	category int
	day      int
}

// Memory is an in-process Store.
type Memory struct {
	mu      sync.RWMutex
	islands map[int]Island
	rows    map[rowKey]prayer.Row
	closed  bool
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		islands: make(map[int]Island),
		rows:    make(map[rowKey]prayer.Row),
	}
}

// AddIsland inserts or replaces an island.
func (m *Memory) AddIsland(is Island) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.islands[is.ID] = is
}

// AddRow inserts or replaces the row for its category and day index.
func (m *Memory) AddRow(r prayer.Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[rowKey{r.CategoryID, r.DayIndex}] = r
}

func (m *Memory) Islands(ctx context.Context) ([]Island, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	var out []Island
	for _, is := range m.islands {
		if is.Active() {
			out = append(out, is)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) Island(ctx context.Context, id int) (*Island, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	is, ok := m.islands[id]
	if !ok {
		return nil, nil
	}
	return &is, nil
}

func (m *Memory) PrayerRow(ctx context.Context, categoryID, dayIndex int) (*prayer.Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	r, ok := m.rows[rowKey{categoryID, dayIndex}]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
