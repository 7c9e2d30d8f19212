package models

import "math"

// DefaultDistressScore is used when a caller sends no distress score.
const DefaultDistressScore = 5

// ParticipantSnapshot is the per-turn input to the selector.
type ParticipantSnapshot struct {
	Domain        string  `json:"domain" yaml:"domain"`
	Day           int     `json:"day" yaml:"day"`
	DistressScore float64 `json:"distress_score" yaml:"distress_score"`
	MissedDay     bool    `json:"missed_day" yaml:"missed_day"`
	EndOfWeek     bool    `json:"end_of_week" yaml:"end_of_week"`
}

// ClampDistress limits score to the 0-10 scale. NaN maps to the default score.
func ClampDistress(score float64) float64 {
	if math.IsNaN(score) {
		return DefaultDistressScore
	}
	return math.Max(MinDistress, math.Min(MaxDistress, score))
}
