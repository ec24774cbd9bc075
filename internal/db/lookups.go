package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/j-veylop/clickdash/internal/models"
)

// InsertLookup records a successful analytics read and sets its ID.
func (db *DB) InsertLookup(ctx context.Context, l *models.Lookup) error {
	query := `
		INSERT INTO lookups (alias, fetched_at, total_clicks, today_clicks, month_clicks)
		VALUES (?, ?, ?, ?, ?)
	`

	fetchedAt := l.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	result, err := db.ExecContext(ctx, query,
		l.Alias,
		fetchedAt.UTC().Format(timeLayout),
		l.TotalClicks,
		l.TodayCount,
		l.MonthCount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert lookup: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		l.ID = id
	}
	l.FetchedAt = fetchedAt

	return nil
}

// RecentLookups returns the newest lookup per alias, newest first.
func (db *DB) RecentLookups(ctx context.Context, limit int) ([]models.Lookup, error) {
	query := `
		SELECT l.id, l.alias, l.fetched_at, l.total_clicks, l.today_clicks, l.month_clicks
		FROM lookups l
		WHERE l.id = (
			SELECT id FROM lookups
			WHERE alias = l.alias
			ORDER BY fetched_at DESC, id DESC
			LIMIT 1
		)
		ORDER BY l.fetched_at DESC, l.id DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent lookups: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var lookups []models.Lookup
	for rows.Next() {
		l, err := scanLookup(rows)
		if err != nil {
			return nil, err
		}
		lookups = append(lookups, l)
	}

	return lookups, rows.Err()
}

// LastLookup returns the newest lookup for alias, or nil when there is none.
func (db *DB) LastLookup(ctx context.Context, alias string) (*models.Lookup, error) {
	query := `
		SELECT id, alias, fetched_at, total_clicks, today_clicks, month_clicks
		FROM lookups
		WHERE alias = ?
		ORDER BY fetched_at DESC, id DESC
		LIMIT 1
	`

	l, err := scanLookup(db.QueryRowContext(ctx, query, alias))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// PruneLookups deletes all but the newest keep rows and returns how many
// were removed.
func (db *DB) PruneLookups(ctx context.Context, keep int) (int64, error) {
	query := `
		DELETE FROM lookups
		WHERE id NOT IN (
			SELECT id FROM lookups ORDER BY fetched_at DESC, id DESC LIMIT ?
		)
	`

	result, err := db.ExecContext(ctx, query, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune lookups: %w", err)
	}
	return result.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLookup(s scanner) (models.Lookup, error) {
	var l models.Lookup
	err := s.Scan(&l.ID, &l.Alias, &l.FetchedAt, &l.TotalClicks, &l.TodayCount, &l.MonthCount)
	if errors.Is(err, sql.ErrNoRows) {
		return l, err
	}
	if err != nil {
		return l, fmt.Errorf("failed to scan lookup: %w", err)
	}
	return l, nil
}
