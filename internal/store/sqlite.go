package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/namaadhu/namaadhu/internal/prayer"
	_ "modernc.org/sqlite"
)

const (
	islandColumns = `id, category_id, atoll, island, minutes, latitude, longitude, status`
	rowColumns    = `category_id, date, fajr, sunrise, dhuhr, asr, maghrib, isha`
)

// SQLite is the bundled prayer times database.
type SQLite struct {
	db *sqlx.DB
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens the database at path read-only. The file is never written,
// so it is opened immutable and needs no locking.
func OpenSQLite(path string) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&immutable=1", path)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("error: cannot open prayer times database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error: cannot open prayer times database: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Islands lists the active islands ordered by id.
func (s *SQLite) Islands(ctx context.Context) ([]Island, error) {
	var islands []Island
	err := s.db.SelectContext(ctx, &islands,
		`SELECT `+islandColumns+` FROM islands WHERE status = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error: failed to query islands: %w", err)
	}
	return islands, nil
}

func (s *SQLite) Island(ctx context.Context, id int) (*Island, error) {
	var is Island
	err := s.db.GetContext(ctx, &is,
		`SELECT `+islandColumns+` FROM islands WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error: failed to query island %d: %w", id, err)
	}
	return &is, nil
}

func (s *SQLite) PrayerRow(ctx context.Context, categoryID, dayIndex int) (*prayer.Row, error) {
	var row prayer.Row
	err := s.db.GetContext(ctx, &row,
		`SELECT `+rowColumns+` FROM prayer_times WHERE category_id = ? AND date = ?`,
		categoryID, dayIndex)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error: failed to query prayer times for category %d day %d: %w", categoryID, dayIndex, err)
	}
	return &row, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
