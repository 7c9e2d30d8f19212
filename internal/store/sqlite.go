// Package store provides storage backends for participant check-ins.
//
// This file implements an SQLite-backed store.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Balaji0706816/nurseproject/internal/models"
)

// Constants for SQLite store configuration
const (
	// DefaultDirPermissions defines the default permissions for database directories
	DefaultDirPermissions = 0755
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists check-ins in an SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		db.Close()
		return nil, err
	}

	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// SaveCheckIn upserts a check-in keyed by participant and date.
func (s *SQLiteStore) SaveCheckIn(ctx context.Context, c models.CheckIn) error {
	tags, err := marshalTags(c.Tags)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO check_ins (` + checkInColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (participant_id, checkin_date) DO UPDATE SET
			id = excluded.id,
			distress = excluded.distress,
			mood = excluded.mood,
			energy = excluded.energy,
			tags = excluded.tags,
			note = excluded.note,
			steadiness_score = excluded.steadiness_score,
			created_at = excluded.created_at`
	_, err = s.db.ExecContext(ctx, query, c.ID, c.ParticipantID, c.Date, c.Distress, c.Mood, c.Energy,
		tags, nilIfEmpty(c.Note), c.SteadinessScore, c.CreatedAt.UTC())
	if err != nil {
		slog.Error("SQLiteStore SaveCheckIn failed", "error", err, "participantID", c.ParticipantID, "date", c.Date)
		return fmt.Errorf("failed to save check-in for %s on %s: %w", c.ParticipantID, c.Date, err)
	}
	slog.Debug("SQLiteStore SaveCheckIn succeeded", "participantID", c.ParticipantID, "date", c.Date)
	return nil
}

// GetCheckIn returns the check-in for a participant on a date.
func (s *SQLiteStore) GetCheckIn(ctx context.Context, participantID, date string) (models.CheckIn, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+checkInColumns+` FROM check_ins WHERE participant_id = ? AND checkin_date = ?`,
		participantID, date)
	c, err := scanCheckIn(row)
	if errors.Is(err, sql.ErrNoRows) {
		slog.Debug("SQLiteStore GetCheckIn not found", "participantID", participantID, "date", date)
		return models.CheckIn{}, ErrNotFound
	}
	if err != nil {
		slog.Error("SQLiteStore GetCheckIn failed", "error", err, "participantID", participantID, "date", date)
		return models.CheckIn{}, err
	}
	return c, nil
}

// LastCheckIn returns the most recently created check-in.
func (s *SQLiteStore) LastCheckIn(ctx context.Context, participantID string) (models.CheckIn, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+checkInColumns+` FROM check_ins WHERE participant_id = ? ORDER BY created_at DESC LIMIT 1`,
		participantID)
	c, err := scanCheckIn(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CheckIn{}, ErrNotFound
	}
	if err != nil {
		slog.Error("SQLiteStore LastCheckIn failed", "error", err, "participantID", participantID)
		return models.CheckIn{}, err
	}
	return c, nil
}

// CheckInHistory returns check-ins newest date first.
func (s *SQLiteStore) CheckInHistory(ctx context.Context, participantID string, limit int) ([]models.CheckIn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+checkInColumns+` FROM check_ins WHERE participant_id = ? ORDER BY checkin_date DESC LIMIT ?`,
		participantID, historyLimit(limit))
	if err != nil {
		slog.Error("SQLiteStore CheckInHistory query failed", "error", err, "participantID", participantID)
		return nil, fmt.Errorf("failed to query check-ins: %w", err)
	}
	history, err := scanCheckIns(rows)
	if err != nil {
		slog.Error("SQLiteStore CheckInHistory scan failed", "error", err, "participantID", participantID)
		return nil, err
	}
	slog.Debug("SQLiteStore CheckInHistory succeeded", "participantID", participantID, "count", len(history))
	return history, nil
}

// ClearCheckIns deletes every check-in for a participant.
func (s *SQLiteStore) ClearCheckIns(ctx context.Context, participantID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM check_ins WHERE participant_id = ?`, participantID); err != nil {
		slog.Error("SQLiteStore ClearCheckIns failed", "error", err, "participantID", participantID)
		return err
	}
	slog.Debug("SQLiteStore ClearCheckIns succeeded", "participantID", participantID)
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close SQLite database", "error", err)
	}
	return err
}
