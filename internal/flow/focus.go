package flow

import "time"

// DefaultFocusDomains is the weekly focus rotation shown on the dashboard.
var DefaultFocusDomains = []string{"Diet", "Sleep", "Exercise", "Medication", "Stress", "Community"}

// WeeklyFocus returns the domain suggested for the ISO week containing t.
func (c *Conversation) WeeklyFocus(t time.Time) string {
	return WeeklyFocus(t, c.focusDomains)
}

// WeeklyFocus picks domains[isoWeek % len(domains)], or "" when domains is empty.
func WeeklyFocus(t time.Time, domains []string) string {
	if len(domains) == 0 {
		return ""
	}
	_, week := t.ISOWeek()
	return domains[week%len(domains)]
}
