package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Balaji0706816/nurseproject/internal/models"
)

const checkInColumns = `id, participant_id, checkin_date, distress, mood, energy, tags, note, steadiness_score, created_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func marshalTags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("marshal tags failed: %w", err)
	}
	return string(b), nil
}

// scanCheckIn scans a CheckIn selected with checkInColumns.
func scanCheckIn(row rowScanner) (models.CheckIn, error) {
	var c models.CheckIn
	var tagsJSON string
	var note sql.NullString
	err := row.Scan(
		&c.ID, &c.ParticipantID, &c.Date, &c.Distress, &c.Mood, &c.Energy,
		&tagsJSON, &note, &c.SteadinessScore, &c.CreatedAt,
	)
	if err != nil {
		return c, err
	}
	c.Note = note.String
	if tagsJSON != "" && tagsJSON != "[]" {
		if err := json.Unmarshal([]byte(tagsJSON), &c.Tags); err != nil {
			return c, fmt.Errorf("unmarshal tags failed: %w", err)
		}
	}
	return c, nil
}

func scanCheckIns(rows *sql.Rows) ([]models.CheckIn, error) {
	defer rows.Close()
	var out []models.CheckIn
	for rows.Next() {
		c, err := scanCheckIn(rows)
		if err != nil {
			return nil, fmt.Errorf("scan check-in failed: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate check-ins failed: %w", err)
	}
	return out, nil
}

func historyLimit(limit int) int {
	if limit <= 0 || limit > DefaultHistoryLimit {
		return DefaultHistoryLimit
	}
	return limit
}
