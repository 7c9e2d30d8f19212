// Package content holds the authored Stampley script library.
//
// A Library is validated as a whole when it is built and is immutable afterwards: it is
// reference data shared by every selection, not session state.
package content

import (
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/Balaji0706816/nurseproject/internal/models"
)

// Opts holds configuration options for building a Library.
type Opts struct {
	Source  string   // file name or label used in errors and logs
	Domains []string // closed domain set; empty accepts any non-empty domain
}

// Option defines a configuration option for building a Library.
type Option func(*Opts)

// WithSource labels the library for error messages.
func WithSource(source string) Option {
	return func(o *Opts) { o.Source = source }
}

// WithDomains restricts rows to the given domains.
func WithDomains(domains ...string) Option {
	return func(o *Opts) { o.Domains = append(o.Domains, domains...) }
}

// Library is an immutable, validated, ordered collection of content rows.
type Library struct {
	source  string
	rows    []models.ContentRow
	byID    map[string]int
	domains []string
}

// New validates rows and returns a Library holding private copies of them.
// Category labels are normalized to their canonical names. Any problem aborts the whole
// load with a *LoadError listing every issue.
func New(rows []models.ContentRow, opts ...Option) (*Library, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}

	allowed := make(map[string]bool, len(cfg.Domains))
	for _, d := range cfg.Domains {
		allowed[d] = true
	}

	lib := &Library{
		source: cfg.Source,
		rows:   make([]models.ContentRow, 0, len(rows)),
		byID:   make(map[string]int, len(rows)),
	}
	seenDomain := make(map[string]bool)
	var issues []Issue

	for i, in := range rows {
		row := in.Clone()
		row.ID = strings.TrimSpace(row.ID)
		report := func(format string, args ...interface{}) {
			issues = append(issues, Issue{Index: i, RowID: row.ID, Problem: fmt.Sprintf(format, args...)})
		}

		if row.ID == "" {
			report("id is required")
		} else if prev, dup := lib.byID[row.ID]; dup {
			report("duplicate id (first defined at row %d)", prev)
		} else {
			lib.byID[row.ID] = i
		}

		if row.Domain == "" {
			report("domain is required")
		} else if len(allowed) > 0 && !allowed[row.Domain] {
			report("domain %q is not in the configured domain set", row.Domain)
		}

		if cat, err := models.ParseConversationCategory(string(row.Category)); err != nil {
			report("%v", err)
		} else {
			row.Category = cat
		}

		for _, problem := range distressProblems(row.Distress) {
			report("%s", problem)
		}
		if problem := dayProblem(row.Day); problem != "" {
			report("%s", problem)
		}

		if row.Domain != "" && !seenDomain[row.Domain] {
			seenDomain[row.Domain] = true
			lib.domains = append(lib.domains, row.Domain)
		}
		lib.rows = append(lib.rows, row)
	}

	if len(issues) > 0 {
		slog.Error("content.New: library rejected", "source", cfg.Source, "rows", len(rows), "issues", len(issues))
		return nil, &LoadError{Source: cfg.Source, Issues: issues}
	}
	slog.Debug("content.New: library loaded", "source", cfg.Source, "rows", len(lib.rows), "domains", lib.domains)
	return lib, nil
}

func distressProblems(d models.DistressCondition) []string {
	switch d.Kind {
	case models.DistressRange:
		var problems []string
		if !onDistressScale(d.Min) {
			problems = append(problems, fmt.Sprintf("distress min %g outside [%d,%d]", d.Min, models.MinDistress, models.MaxDistress))
		}
		if !onDistressScale(d.Max) {
			problems = append(problems, fmt.Sprintf("distress max %g outside [%d,%d]", d.Max, models.MinDistress, models.MaxDistress))
		}
		if len(problems) == 0 && d.Min > d.Max {
			problems = append(problems, fmt.Sprintf("distress min %g greater than max %g", d.Min, d.Max))
		}
		return problems
	case models.DistressMissed, models.DistressEndOfWeek:
		return nil
	case models.DistressMalformed:
		return []string{"distress mixes forms; write either {min,max} bounds or a missed/end_of_week marker"}
	case "":
		return []string{"distress requires a {min,max} range or a missed/end_of_week marker"}
	default:
		return []string{fmt.Sprintf("unrecognized distress marker %q", d.Kind)}
	}
}

// onDistressScale is false for NaN, which fails every comparison.
func onDistressScale(v float64) bool {
	return v >= models.MinDistress && v <= models.MaxDistress
}

func dayProblem(a models.ApplicableDay) string {
	switch a.Kind {
	case models.DayNumbered:
		if a.Day < 1 {
			return fmt.Sprintf("day %d must be a positive integer", a.Day)
		}
		return ""
	case models.DayReplacement, models.DaySummary:
		return ""
	case "":
		return "day is required"
	default:
		return fmt.Sprintf("unrecognized day marker %q", a.Kind)
	}
}

// Source returns the label the library was loaded from.
func (l *Library) Source() string {
	return l.source
}

// Len returns the number of rows.
func (l *Library) Len() int {
	return len(l.rows)
}

// All yields the rows in authoring order. Yielded rows share slices with the library and
// must not be modified; copy with Clone before handing them out.
func (l *Library) All() iter.Seq[models.ContentRow] {
	return func(yield func(models.ContentRow) bool) {
		for _, row := range l.rows {
			if !yield(row) {
				return
			}
		}
	}
}

// Rows returns a copy of every row in authoring order.
func (l *Library) Rows() []models.ContentRow {
	out := make([]models.ContentRow, len(l.rows))
	for i, row := range l.rows {
		out[i] = row.Clone()
	}
	return out
}

// Get returns the row with the given id.
func (l *Library) Get(id string) (models.ContentRow, bool) {
	i, ok := l.byID[id]
	if !ok {
		return models.ContentRow{}, false
	}
	return l.rows[i].Clone(), true
}

// Domains lists the domains present in the library in first-seen order.
func (l *Library) Domains() []string {
	return append([]string(nil), l.domains...)
}
