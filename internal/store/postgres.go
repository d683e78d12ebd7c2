package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Lohit-Behera/canva/internal/models"
)

// PostgresStore keeps the authentication audit trail in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the auth_events table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS auth_events (
			id         BIGSERIAL PRIMARY KEY,
			user_id    VARCHAR(24)  NOT NULL DEFAULT '',
			email      VARCHAR(255) NOT NULL DEFAULT '',
			kind       VARCHAR(32)  NOT NULL,
			ip         VARCHAR(64)  NOT NULL DEFAULT '',
			user_agent TEXT         NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS auth_events_user_idx ON auth_events (user_id, created_at DESC);
	`)
	return err
}

func (s *PostgresStore) RecordEvent(ctx context.Context, ev models.AuthEvent) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO auth_events (user_id, email, kind, ip, user_agent)
		 VALUES ($1, $2, $3, $4, $5)`,
		ev.UserID, ev.Email, ev.Kind, ev.IP, ev.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("record auth event: %w", err)
	}
	return nil
}

// ListEvents returns the user's most recent events, newest first.
func (s *PostgresStore) ListEvents(ctx context.Context, userID string, limit int) ([]models.AuthEvent, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, email, kind, ip, user_agent, created_at
		 FROM auth_events WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list auth events: %w", err)
	}
	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.AuthEvent, error) {
		var ev models.AuthEvent
		err := row.Scan(&ev.ID, &ev.UserID, &ev.Email, &ev.Kind, &ev.IP, &ev.UserAgent, &ev.CreatedAt)
		return ev, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan auth events: %w", err)
	}
	if events == nil {
		events = []models.AuthEvent{}
	}
	return events, nil
}
