// Package store provides storage backends for participant check-ins.
//
// The portal used to keep check-ins in browser storage; here they sit behind the Store
// interface so the chat orchestrator reads participant history through an injected
// dependency. Backends: in-memory, SQLite and PostgreSQL.
package store

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/Balaji0706816/nurseproject/internal/models"
)

// DefaultHistoryLimit caps check-in history kept per participant in memory and
// returned when callers pass no limit.
const DefaultHistoryLimit = 120

// ErrNotFound is returned when a requested check-in does not exist.
var ErrNotFound = errors.New("check-in not found")

// Store defines the interface for check-in persistence.
type Store interface {
	// SaveCheckIn stores a check-in, replacing any check-in for the same participant and date.
	SaveCheckIn(ctx context.Context, c models.CheckIn) error
	// GetCheckIn returns the check-in for a participant on a date, or ErrNotFound.
	GetCheckIn(ctx context.Context, participantID, date string) (models.CheckIn, error)
	// LastCheckIn returns the most recently created check-in, or ErrNotFound.
	LastCheckIn(ctx context.Context, participantID string) (models.CheckIn, error)
	// CheckInHistory returns up to limit check-ins, newest date first.
	CheckInHistory(ctx context.Context, participantID string, limit int) ([]models.CheckIn, error)
	// ClearCheckIns deletes every check-in for a participant.
	ClearCheckIns(ctx context.Context, participantID string) error
	// Close releases backend resources.
	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	DSN string // database connection string or file path
}

// Option defines a configuration option for store backends.
type Option func(*Opts)

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType returns "postgres" for PostgreSQL connection strings and "sqlite3" otherwise.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite3"
}

// New picks a backend from the DSN: in-memory when empty, otherwise PostgreSQL or SQLite.
func New(dsn string) (Store, error) {
	if dsn == "" {
		slog.Debug("store.New: no DSN provided, using in-memory store")
		return NewInMemoryStore(), nil
	}
	if DetectDSNType(dsn) == "postgres" {
		slog.Debug("store.New: detected PostgreSQL DSN", "dsn_set", true)
		return NewPostgresStore(WithPostgresDSN(dsn))
	}
	slog.Debug("store.New: detected SQLite DSN", "db_path", dsn)
	return NewSQLiteStore(WithSQLiteDSN(dsn))
}

// InMemoryStore is a simple in-memory store for check-ins.
// Each participant keeps at most DefaultHistoryLimit entries; the least recently saved
// entry is dropped first, so a save never evicts the check-in it just wrote.
type InMemoryStore struct {
	mu       sync.RWMutex
	seq      uint64
	checkIns map[string]map[string]storedCheckIn // participant -> date -> check-in
}

type storedCheckIn struct {
	checkIn models.CheckIn
	seq     uint64
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{checkIns: make(map[string]map[string]storedCheckIn)}
}

func cloneCheckIn(c models.CheckIn) models.CheckIn {
	if c.Tags != nil {
		c.Tags = append([]string(nil), c.Tags...)
	}
	return c
}

func (s *InMemoryStore) SaveCheckIn(ctx context.Context, c models.CheckIn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byDate, ok := s.checkIns[c.ParticipantID]
	if !ok {
		byDate = make(map[string]storedCheckIn)
		s.checkIns[c.ParticipantID] = byDate
	}
	s.seq++
	byDate[c.Date] = storedCheckIn{checkIn: cloneCheckIn(c), seq: s.seq}

	for len(byDate) > DefaultHistoryLimit {
		oldest := ""
		for date, stored := range byDate {
			if oldest == "" || stored.seq < byDate[oldest].seq {
				oldest = date
			}
		}
		delete(byDate, oldest)
	}
	slog.Debug("InMemoryStore SaveCheckIn succeeded", "participantID", c.ParticipantID, "date", c.Date)
	return nil
}

func (s *InMemoryStore) GetCheckIn(ctx context.Context, participantID, date string) (models.CheckIn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.checkIns[participantID][date]
	if !ok {
		return models.CheckIn{}, ErrNotFound
	}
	return cloneCheckIn(stored.checkIn), nil
}

func (s *InMemoryStore) LastCheckIn(ctx context.Context, participantID string) (models.CheckIn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var last models.CheckIn
	found := false
	for _, stored := range s.checkIns[participantID] {
		if !found || stored.checkIn.CreatedAt.After(last.CreatedAt) {
			last, found = stored.checkIn, true
		}
	}
	if !found {
		return models.CheckIn{}, ErrNotFound
	}
	return cloneCheckIn(last), nil
}

func (s *InMemoryStore) CheckInHistory(ctx context.Context, participantID string, limit int) ([]models.CheckIn, error) {
	limit = historyLimit(limit)
	s.mu.RLock()
	history := make([]models.CheckIn, 0, len(s.checkIns[participantID]))
	for _, stored := range s.checkIns[participantID] {
		history = append(history, cloneCheckIn(stored.checkIn))
	}
	s.mu.RUnlock()

	sort.Slice(history, func(i, j int) bool { return history[i].Date > history[j].Date })
	if len(history) > limit {
		history = history[:limit]
	}
	return history, nil
}

func (s *InMemoryStore) ClearCheckIns(ctx context.Context, participantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.checkIns, participantID)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
