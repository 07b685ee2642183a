// README: taxi_table store backed by PostgreSQL; full replace on write, full scan on read.
package trips

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const tableName = "taxi_table"

// Schema is the idempotent DDL for taxi_table, applied by ReplaceAll.
//
//go:embed schema.sql
var Schema string

var tableColumns = []string{"trip_distance", "trip_duration", "trip_hours", "day_name", "is_tolls", "total_amount"}

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// ReplaceAll swaps the table contents for trips in one transaction.
func (s *Store) ReplaceAll(ctx context.Context, trips []Trip) (int64, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, Schema); err != nil {
		return 0, fmt.Errorf("create %s: %w", tableName, err)
	}
	if _, err := tx.Exec(ctx, `TRUNCATE TABLE taxi_table`); err != nil {
		return 0, fmt.Errorf("truncate %s: %w", tableName, err)
	}
	n, err := tx.CopyFrom(ctx, pgx.Identifier{tableName}, tableColumns,
		pgx.CopyFromSlice(len(trips), func(i int) ([]any, error) {
			t := trips[i]
			return []any{t.TripDistance, t.TripDuration, t.TripHours, t.DayName, t.IsTolls, t.TotalAmount}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", tableName, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) LoadAll(ctx context.Context) ([]Trip, error) {
	rows, err := s.db.Query(ctx, `
		SELECT trip_distance, trip_duration, trip_hours, day_name, is_tolls, total_amount
		FROM taxi_table`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Trip
	for rows.Next() {
		var t Trip
		if err := rows.Scan(&t.TripDistance, &t.TripDuration, &t.TripHours, &t.DayName, &t.IsTolls, &t.TotalAmount); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
