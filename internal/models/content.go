package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConversationCategory is the coarse tone or purpose of an interaction.
type ConversationCategory string

const (
	CategorySimple              ConversationCategory = "Simple"
	CategoryReflective          ConversationCategory = "Reflective"
	CategoryFollowUpReflection  ConversationCategory = "FollowUpReflection"
	CategorySupportiveOpenEnded ConversationCategory = "SupportiveOpenEnded"
	CategoryReengagement        ConversationCategory = "Reengagement"
	CategoryProgressReflection  ConversationCategory = "ProgressReflection"
)

// AllCategories lists the closed category vocabulary in declaration order.
var AllCategories = []ConversationCategory{
	CategorySimple,
	CategoryReflective,
	CategoryFollowUpReflection,
	CategorySupportiveOpenEnded,
	CategoryReengagement,
	CategoryProgressReflection,
}

// IsValid reports whether c is one of the known categories.
func (c ConversationCategory) IsValid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseConversationCategory accepts the canonical names as well as the script authors'
// labels ("Follow-Up Reflection", "Re-engagement (variant)", ...).
func ParseConversationCategory(s string) (ConversationCategory, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.TrimSuffix(key, "(variant)")
	key = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(key)
	for _, known := range AllCategories {
		if strings.ToLower(string(known)) == key {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// DistressKind names the form of a row's distress condition.
type DistressKind string

const (
	// DistressRange gates the row on a closed numeric band.
	DistressRange DistressKind = "range"
	// DistressMissed gates the row on a missed prior-day check-in.
	DistressMissed DistressKind = "missed"
	// DistressEndOfWeek gates the row on the week's closing interaction.
	DistressEndOfWeek DistressKind = "end_of_week"
	// DistressMalformed marks an authored condition that names no single form, such as a
	// marker mixed with bounds. It never matches and fails library validation.
	DistressMalformed DistressKind = "malformed"
)

// Distress scale bounds.
const (
	MinDistress = 0
	MaxDistress = 10
)

// DistressCondition is either a numeric band [Min,Max] or a special marker.
type DistressCondition struct {
	Kind DistressKind
	Min  float64
	Max  float64
}

// RangeCondition returns a numeric distress band.
func RangeCondition(min, max float64) DistressCondition {
	return DistressCondition{Kind: DistressRange, Min: min, Max: max}
}

// MissedCondition returns the missed-day marker.
func MissedCondition() DistressCondition {
	return DistressCondition{Kind: DistressMissed}
}

// EndOfWeekCondition returns the end-of-week marker.
func EndOfWeekCondition() DistressCondition {
	return DistressCondition{Kind: DistressEndOfWeek}
}

// IsRange reports whether the condition is a numeric band.
func (d DistressCondition) IsRange() bool {
	return d.Kind == DistressRange
}

// Contains reports whether score lies inside a numeric band, bounds inclusive.
// Marker conditions never contain a score.
func (d DistressCondition) Contains(score float64) bool {
	return d.IsRange() && score >= d.Min && score <= d.Max
}

func (d DistressCondition) String() string {
	if d.IsRange() {
		return fmt.Sprintf("[%g,%g]", d.Min, d.Max)
	}
	return string(d.Kind)
}

type distressObject struct {
	Kind string   `json:"kind,omitempty" yaml:"kind,omitempty"`
	Min  *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max  *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// parseDistressMarker maps an authored marker name to a condition. Only the marker kinds
// are accepted here; a band must be written with bounds.
func parseDistressMarker(s string) DistressCondition {
	kind := DistressKind(strings.TrimSpace(s))
	if kind == DistressRange || kind == DistressMalformed {
		return DistressCondition{Kind: DistressMalformed}
	}
	return DistressCondition{Kind: kind}
}

func (o distressObject) condition() DistressCondition {
	if o.Kind != "" {
		if o.Min != nil || o.Max != nil {
			return DistressCondition{Kind: DistressMalformed}
		}
		return parseDistressMarker(o.Kind)
	}
	if o.Min == nil || o.Max == nil {
		// Kind left empty so validation reports the incomplete band.
		return DistressCondition{}
	}
	return RangeCondition(*o.Min, *o.Max)
}

// MarshalJSON encodes a band as {"min":..,"max":..} and a marker as its name.
func (d DistressCondition) MarshalJSON() ([]byte, error) {
	if d.IsRange() {
		return json.Marshal(distressObject{Min: &d.Min, Max: &d.Max})
	}
	return json.Marshal(string(d.Kind))
}

// UnmarshalJSON accepts a marker string, {"kind": marker} or {"min":..,"max":..}.
func (d *DistressCondition) UnmarshalJSON(data []byte) error {
	var marker string
	if err := json.Unmarshal(data, &marker); err == nil {
		*d = parseDistressMarker(marker)
		return nil
	}
	var obj distressObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("distress must be a marker string or a {min,max} object: %w", err)
	}
	*d = obj.condition()
	return nil
}

// MarshalYAML mirrors MarshalJSON.
func (d DistressCondition) MarshalYAML() (interface{}, error) {
	if d.IsRange() {
		return distressObject{Min: &d.Min, Max: &d.Max}, nil
	}
	return string(d.Kind), nil
}

// UnmarshalYAML mirrors UnmarshalJSON.
func (d *DistressCondition) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*d = parseDistressMarker(value.Value)
		return nil
	case yaml.MappingNode:
		var obj distressObject
		if err := value.Decode(&obj); err != nil {
			return err
		}
		*d = obj.condition()
		return nil
	default:
		return fmt.Errorf("line %d: distress must be a marker string or a {min,max} mapping", value.Line)
	}
}

// DayKind names the form of a row's applicable day.
type DayKind string

const (
	// DayNumbered applies to one study day.
	DayNumbered DayKind = "day"
	// DayReplacement applies to any day; authored for missed-day recovery.
	DayReplacement DayKind = "replacement"
	// DaySummary applies to any day; authored for end-of-week rollups.
	DaySummary DayKind = "summary"
)

// ApplicableDay is either a study-day number or a replacement/summary marker.
type ApplicableDay struct {
	Kind DayKind
	Day  int
}

// OnDay returns an applicable day for a single study day.
func OnDay(day int) ApplicableDay {
	return ApplicableDay{Kind: DayNumbered, Day: day}
}

// ReplacementDay returns the replacement marker.
func ReplacementDay() ApplicableDay {
	return ApplicableDay{Kind: DayReplacement}
}

// SummaryDay returns the summary marker.
func SummaryDay() ApplicableDay {
	return ApplicableDay{Kind: DaySummary}
}

// Matches reports whether the row may be used on the given study day.
func (a ApplicableDay) Matches(day int) bool {
	switch a.Kind {
	case DayReplacement, DaySummary:
		return true
	case DayNumbered:
		return a.Day == day
	default:
		return false
	}
}

func (a ApplicableDay) String() string {
	if a.Kind == DayNumbered {
		return strconv.Itoa(a.Day)
	}
	return string(a.Kind)
}

func parseDayScalar(s string) ApplicableDay {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return OnDay(n)
	}
	return ApplicableDay{Kind: DayKind(s)}
}

// MarshalJSON encodes a numbered day as a number and a marker as its name.
func (a ApplicableDay) MarshalJSON() ([]byte, error) {
	if a.Kind == DayNumbered {
		return json.Marshal(a.Day)
	}
	return json.Marshal(string(a.Kind))
}

// UnmarshalJSON accepts a day number or a marker string.
func (a *ApplicableDay) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*a = OnDay(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("day must be a number or a marker string: %w", err)
	}
	*a = parseDayScalar(s)
	return nil
}

// MarshalYAML mirrors MarshalJSON.
func (a ApplicableDay) MarshalYAML() (interface{}, error) {
	if a.Kind == DayNumbered {
		return a.Day, nil
	}
	return string(a.Kind), nil
}

// UnmarshalYAML mirrors UnmarshalJSON.
func (a *ApplicableDay) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: day must be a number or a marker string", value.Line)
	}
	*a = parseDayScalar(value.Value)
	return nil
}

// ContentRow is one authored unit of conversation content.
type ContentRow struct {
	ID                string               `json:"id" yaml:"id"`
	Domain            string               `json:"domain" yaml:"domain"`
	SubscaleItem      string               `json:"subscale_item,omitempty" yaml:"subscale_item,omitempty"`
	Category          ConversationCategory `json:"conversation_category" yaml:"conversation_category"`
	Distress          DistressCondition    `json:"distress" yaml:"distress"`
	Day               ApplicableDay        `json:"day" yaml:"day"`
	Prompt            string               `json:"prompt" yaml:"prompt"`
	PossibleResponses []string             `json:"possible_responses,omitempty" yaml:"possible_responses,omitempty"`
	ValidationLine    string               `json:"validation_line,omitempty" yaml:"validation_line,omitempty"`
	MicroSkill        string               `json:"micro_skill,omitempty" yaml:"micro_skill,omitempty"`
	SkillObjective    string               `json:"skill_objective,omitempty" yaml:"skill_objective,omitempty"`
	EducationNote     string               `json:"education_note,omitempty" yaml:"education_note,omitempty"`
	Affirmation       string               `json:"affirmation,omitempty" yaml:"affirmation,omitempty"`
}

// Clone returns a copy that shares no mutable state with r.
func (r ContentRow) Clone() ContentRow {
	if r.PossibleResponses != nil {
		r.PossibleResponses = append([]string(nil), r.PossibleResponses...)
	}
	return r
}
