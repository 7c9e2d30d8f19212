// Package store provides storage backends for participant check-ins.
//
// This file implements a PostgreSQL-backed store.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	_ "github.com/lib/pq"

	"github.com/Balaji0706816/nurseproject/internal/models"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore persists check-ins in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")
	if cfg.DSN == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		db.Close()
		return nil, err
	}

	slog.Debug("Running Postgres migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")
	return &PostgresStore{db: db}, nil
}

// SaveCheckIn upserts a check-in keyed by participant and date.
func (s *PostgresStore) SaveCheckIn(ctx context.Context, c models.CheckIn) error {
	tags, err := marshalTags(c.Tags)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO check_ins (` + checkInColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (participant_id, checkin_date) DO UPDATE SET
			id = EXCLUDED.id,
			distress = EXCLUDED.distress,
			mood = EXCLUDED.mood,
			energy = EXCLUDED.energy,
			tags = EXCLUDED.tags,
			note = EXCLUDED.note,
			steadiness_score = EXCLUDED.steadiness_score,
			created_at = EXCLUDED.created_at`
	_, err = s.db.ExecContext(ctx, query, c.ID, c.ParticipantID, c.Date, c.Distress, c.Mood, c.Energy,
		tags, nilIfEmpty(c.Note), c.SteadinessScore, c.CreatedAt.UTC())
	if err != nil {
		slog.Error("PostgresStore SaveCheckIn failed", "error", err, "participantID", c.ParticipantID, "date", c.Date)
		return fmt.Errorf("failed to save check-in for %s on %s: %w", c.ParticipantID, c.Date, err)
	}
	slog.Debug("PostgresStore SaveCheckIn succeeded", "participantID", c.ParticipantID, "date", c.Date)
	return nil
}

// GetCheckIn returns the check-in for a participant on a date.
func (s *PostgresStore) GetCheckIn(ctx context.Context, participantID, date string) (models.CheckIn, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+checkInColumns+` FROM check_ins WHERE participant_id = $1 AND checkin_date = $2`,
		participantID, date)
	c, err := scanCheckIn(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CheckIn{}, ErrNotFound
	}
	if err != nil {
		slog.Error("PostgresStore GetCheckIn failed", "error", err, "participantID", participantID, "date", date)
		return models.CheckIn{}, err
	}
	return c, nil
}

// LastCheckIn returns the most recently created check-in.
func (s *PostgresStore) LastCheckIn(ctx context.Context, participantID string) (models.CheckIn, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+checkInColumns+` FROM check_ins WHERE participant_id = $1 ORDER BY created_at DESC LIMIT 1`,
		participantID)
	c, err := scanCheckIn(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CheckIn{}, ErrNotFound
	}
	if err != nil {
		slog.Error("PostgresStore LastCheckIn failed", "error", err, "participantID", participantID)
		return models.CheckIn{}, err
	}
	return c, nil
}

// CheckInHistory returns check-ins newest date first.
func (s *PostgresStore) CheckInHistory(ctx context.Context, participantID string, limit int) ([]models.CheckIn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+checkInColumns+` FROM check_ins WHERE participant_id = $1 ORDER BY checkin_date DESC LIMIT $2`,
		participantID, historyLimit(limit))
	if err != nil {
		slog.Error("PostgresStore CheckInHistory query failed", "error", err, "participantID", participantID)
		return nil, fmt.Errorf("failed to query check-ins: %w", err)
	}
	history, err := scanCheckIns(rows)
	if err != nil {
		slog.Error("PostgresStore CheckInHistory scan failed", "error", err, "participantID", participantID)
		return nil, err
	}
	slog.Debug("PostgresStore CheckInHistory succeeded", "participantID", participantID, "count", len(history))
	return history, nil
}

// ClearCheckIns deletes every check-in for a participant.
func (s *PostgresStore) ClearCheckIns(ctx context.Context, participantID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM check_ins WHERE participant_id = $1`, participantID); err != nil {
		slog.Error("PostgresStore ClearCheckIns failed", "error", err, "participantID", participantID)
		return err
	}
	return nil
}

// Close closes the Postgres database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
