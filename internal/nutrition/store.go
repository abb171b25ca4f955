package nutrition

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// Store resolves free-text queries against the loaded nutrition table.
type Store interface {
	// Lookup resolves a query to a food record. It returns nil, nil when no
	// record matches; a miss is a valid outcome, not an error.
	Lookup(ctx context.Context, query string) (*Food, error)

	// Maintain runs periodic SQLite maintenance on the lookup database.
	Maintain(ctx context.Context) error
}

type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store backed by the given lookup database.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "nutrition_store"),
	}
}

// Lookup normalizes the query and resolves it in two steps: exact match on
// name_norm first, then the first record whose name_norm contains the query
// as a substring. Ties break by table order (lowest id wins).
func (s *sqlxStore) Lookup(ctx context.Context, query string) (*Food, error) {
	q := Normalize(query)
	if q == "" {
		return nil, nil
	}

	var food Food
	err := s.db.GetContext(ctx, &food,
		`SELECT id, name, name_norm, kcal, protein, fat, carb, advice
		 FROM foods WHERE name_norm = ? ORDER BY id LIMIT 1`, q)
	if err == nil {
		s.logger.DebugContext(ctx, "Lookup exact match", "query", q, "name", food.Name)
		return &food, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("exact lookup failed: %w", err)
	}

	err = s.db.GetContext(ctx, &food,
		`SELECT id, name, name_norm, kcal, protein, fat, carb, advice
		 FROM foods WHERE instr(name_norm, ?) > 0 ORDER BY id LIMIT 1`, q)
	if err == nil {
		s.logger.DebugContext(ctx, "Lookup substring match", "query", q, "name", food.Name)
		return &food, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("substring lookup failed: %w", err)
	}

	s.logger.DebugContext(ctx, "Lookup miss", "query", q)
	return nil, nil
}

// Maintain refreshes SQLite query planner statistics.
func (s *sqlxStore) Maintain(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "ANALYZE"); err != nil {
		return fmt.Errorf("failed to analyze lookup database: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA optimize"); err != nil {
		return fmt.Errorf("failed to optimize lookup database: %w", err)
	}
	s.logger.DebugContext(ctx, "Lookup database maintenance complete")
	return nil
}
