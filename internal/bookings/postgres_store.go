package bookings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxQuerier is satisfied by *pgxpool.Pool and by pgxmock pools.
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps pending checkouts in the pending_checkouts table.
type PostgresStore struct {
	db pgxQuerier
}

// NewPostgresStore initializes a store backed by a pgx pool.
func NewPostgresStore(db pgxQuerier) *PostgresStore {
	if db == nil {
		panic("bookings: pgx pool required")
	}
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, preferenceID string) (*PricedBooking, error) {
	var raw []byte
	err := s.db.QueryRow(ctx, `SELECT booking FROM pending_checkouts WHERE preference_id = $1`, preferenceID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("bookings: select pending checkout: %w", err)
	}
	var b PricedBooking
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("bookings: decode pending checkout: %w", err)
	}
	return &b, nil
}

func (s *PostgresStore) Set(ctx context.Context, preferenceID string, booking PricedBooking) error {
	if preferenceID == "" {
		return errors.New("bookings: preference id required")
	}
	raw, err := json.Marshal(booking)
	if err != nil {
		return fmt.Errorf("bookings: encode pending checkout: %w", err)
	}
	query := `INSERT INTO pending_checkouts (preference_id, booking) VALUES ($1, $2)
		ON CONFLICT (preference_id) DO UPDATE SET booking = EXCLUDED.booking`
	if _, err := s.db.Exec(ctx, query, preferenceID, raw); err != nil {
		return fmt.Errorf("bookings: upsert pending checkout: %w", err)
	}
	return nil
}
