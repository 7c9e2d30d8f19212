package models

import (
	"fmt"
	"time"
)

// DateLayout is the calendar key used for check-ins.
const DateLayout = "2006-01-02"

// Validation constants for check-ins
const (
	// MaxCheckInTags defines the maximum number of tags on a check-in
	MaxCheckInTags = 20
	// MaxCheckInNoteLength defines the maximum allowed length for a check-in note
	MaxCheckInNoteLength = 2000
	// MaxSteadinessScore is the top of the steadiness scale
	MaxSteadinessScore = 100
)

// CheckIn is one daily self-report from a participant.
type CheckIn struct {
	ID              string    `json:"id"`
	ParticipantID   string    `json:"participant_id"`
	Date            string    `json:"date"`     // YYYY-MM-DD, participant local time
	Distress        float64   `json:"distress"` // 0-10
	Mood            float64   `json:"mood"`     // 0 unpleasant -> 10 pleasant
	Energy          float64   `json:"energy"`   // 0 drained -> 10 energized
	Tags            []string  `json:"tags,omitempty"`
	Note            string    `json:"note,omitempty"`
	SteadinessScore float64   `json:"steadiness_score"` // 0-100
	CreatedAt       time.Time `json:"created_at"`
}

// Validate checks field ranges and the date key.
func (c *CheckIn) Validate() error {
	if c.ParticipantID == "" {
		return ErrMissingParticipant
	}
	if _, err := time.Parse(DateLayout, c.Date); err != nil {
		return ErrInvalidDate
	}
	scores := []struct {
		name  string
		value float64
	}{{"distress", c.Distress}, {"mood", c.Mood}, {"energy", c.Energy}}
	for _, s := range scores {
		if s.value < MinDistress || s.value > MaxDistress {
			return fmt.Errorf("%w: %s must be between %d and %d", ErrScoreOutOfRange, s.name, MinDistress, MaxDistress)
		}
	}
	if c.SteadinessScore < 0 || c.SteadinessScore > MaxSteadinessScore {
		return fmt.Errorf("%w: steadiness_score must be between 0 and %d", ErrScoreOutOfRange, MaxSteadinessScore)
	}
	if len(c.Tags) > MaxCheckInTags {
		return ErrTooManyTags
	}
	if len(c.Note) > MaxCheckInNoteLength {
		return ErrNoteTooLong
	}
	return nil
}

// PreviousDate returns the calendar day before date, or "" if date is malformed.
func PreviousDate(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, -1).Format(DateLayout)
}
