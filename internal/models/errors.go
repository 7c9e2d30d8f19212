package models

import "errors"

// Error variables for better error handling and testability
var (
	ErrUnknownCategory    = errors.New("unknown conversation category")
	ErrUnknownRequestKind = errors.New("unknown chat request kind")
	ErrMissingParticipant = errors.New("participant_id is required")
	ErrMissingDomain      = errors.New("domain is required")
	ErrInvalidDay         = errors.New("day must be a positive integer")
	ErrMissingText        = errors.New("text is required for turn requests")
	ErrTextTooLong        = errors.New("text exceeds maximum length")
	ErrInvalidRole        = errors.New("message role must be user or assistant")
	ErrInvalidDate        = errors.New("date must be in YYYY-MM-DD format")
	ErrScoreOutOfRange    = errors.New("score is out of range")
	ErrTooManyTags        = errors.New("too many tags")
	ErrNoteTooLong        = errors.New("note exceeds maximum length")
	ErrMissingRecipient   = errors.New("recipient cannot be empty")
)
