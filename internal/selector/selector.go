// Package selector picks the pre-authored script row the chat agent presents next.
//
// Selection is a pure function of a participant snapshot and an immutable content
// library: Classify maps the snapshot to a conversation category, then Select runs a
// strict pass (domain, category, day and distress condition) and, only when that finds
// nothing, a fallback pass that ignores the category and the missed/end-of-week markers.
// Both passes return the first matching row in library order. Nothing is stored or
// mutated, so every function here is safe for concurrent use.
package selector

import (
	"iter"
	"slices"

	"github.com/Balaji0706816/nurseproject/internal/models"
)

// Distress thresholds used by Classify.
const (
	FollowUpThreshold   = 8
	ReflectiveThreshold = 5
)

// Pass identifies which matching tier produced a result.
type Pass string

const (
	PassStrict   Pass = "strict"
	PassFallback Pass = "fallback"
	PassNone     Pass = "none"
)

// Library is the read-only view of authored rows the selector iterates, in authoring order.
type Library interface {
	All() iter.Seq[models.ContentRow]
}

// Rows adapts a plain slice to Library.
type Rows []models.ContentRow

// All yields the rows in slice order.
func (r Rows) All() iter.Seq[models.ContentRow] {
	return slices.Values(r)
}

// Result is the outcome of one selection. Row is set if and only if Found is true.
type Result struct {
	Category models.ConversationCategory `json:"category" yaml:"category"`
	Pass     Pass                        `json:"pass" yaml:"pass"`
	Found    bool                        `json:"found" yaml:"found"`
	Row      *models.ContentRow          `json:"row,omitempty" yaml:"row,omitempty"`
}

// RowID returns the selected row's id, or "" for a no-match.
func (r Result) RowID() string {
	if r.Row == nil {
		return ""
	}
	return r.Row.ID
}

// Classify maps a snapshot to exactly one conversation category.
//
// Missed day wins over end of week, and both win over the distress thresholds.
// CategorySupportiveOpenEnded has no rule here; rows tagged with it are only reachable
// through the fallback pass.
func Classify(s models.ParticipantSnapshot) models.ConversationCategory {
	switch {
	case s.MissedDay:
		return models.CategoryReengagement
	case s.EndOfWeek:
		return models.CategoryProgressReflection
	case s.DistressScore >= FollowUpThreshold:
		return models.CategoryFollowUpReflection
	case s.DistressScore >= ReflectiveThreshold:
		return models.CategoryReflective
	default:
		return models.CategorySimple
	}
}

// SelectContent classifies the snapshot and selects a row for that category.
func SelectContent(s models.ParticipantSnapshot, lib Library) Result {
	return Select(s, Classify(s), lib)
}

// Select returns the first row matching the strict pass for category, else the first row
// matching the fallback pass, else a no-match result.
func Select(s models.ParticipantSnapshot, category models.ConversationCategory, lib Library) Result {
	if row, ok := first(lib, func(r models.ContentRow) bool { return strictMatch(r, s, category) }); ok {
		return Result{Category: category, Pass: PassStrict, Found: true, Row: &row}
	}
	if row, ok := first(lib, func(r models.ContentRow) bool { return fallbackMatch(r, s) }); ok {
		return Result{Category: category, Pass: PassFallback, Found: true, Row: &row}
	}
	return Result{Category: category, Pass: PassNone}
}

func first(lib Library, match func(models.ContentRow) bool) (models.ContentRow, bool) {
	for row := range lib.All() {
		if match(row) {
			return row.Clone(), true
		}
	}
	return models.ContentRow{}, false
}

func strictMatch(r models.ContentRow, s models.ParticipantSnapshot, category models.ConversationCategory) bool {
	if r.Domain != s.Domain || r.Category != category || !r.Day.Matches(s.Day) {
		return false
	}
	switch r.Distress.Kind {
	case models.DistressRange:
		return r.Distress.Contains(s.DistressScore)
	case models.DistressMissed:
		return s.MissedDay
	case models.DistressEndOfWeek:
		return s.EndOfWeek
	default:
		return false
	}
}

// fallbackMatch drops the category constraint; marker rows never match here.
func fallbackMatch(r models.ContentRow, s models.ParticipantSnapshot) bool {
	return r.Domain == s.Domain && r.Day.Matches(s.Day) && r.Distress.Contains(s.DistressScore)
}
