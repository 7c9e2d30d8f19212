package models

import "strings"

// NudgeRequest asks the service to deliver the selected line to a participant.
type NudgeRequest struct {
	To            string   `json:"to"`
	ParticipantID string   `json:"participant_id"`
	Meta          ChatMeta `json:"meta"`
}

// Validate checks the recipient, participant and meta fields.
func (r *NudgeRequest) Validate() error {
	if strings.TrimSpace(r.To) == "" {
		return ErrMissingRecipient
	}
	if r.ParticipantID == "" {
		return ErrMissingParticipant
	}
	return r.Meta.Validate()
}
