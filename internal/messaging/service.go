// Package messaging delivers nurse-coach content to participants over an outbound channel.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
)

// MinRecipientDigits is the shortest phone number accepted as a recipient.
const MinRecipientDigits = 6

var phoneNumberRegex = regexp.MustCompile(`\D`)

// ErrInvalidRecipient is returned when a recipient cannot be canonicalized.
var ErrInvalidRecipient = errors.New("invalid recipient")

// Service defines a pluggable message delivery abstraction.
type Service interface {
	// ValidateAndCanonicalizeRecipient validates and canonicalizes a recipient identifier.
	// Returns the canonicalized recipient and an error if validation fails.
	ValidateAndCanonicalizeRecipient(recipient string) (string, error)

	// SendMessage sends a message to a recipient.
	SendMessage(ctx context.Context, to string, body string) error
}

// CanonicalizePhoneNumber strips every non-digit and requires at least MinRecipientDigits digits.
func CanonicalizePhoneNumber(recipient string) (string, error) {
	if recipient == "" {
		return "", fmt.Errorf("%w: recipient cannot be empty", ErrInvalidRecipient)
	}
	canonical := phoneNumberRegex.ReplaceAllString(recipient, "")
	if canonical == "" {
		return "", fmt.Errorf("%w: no digits found in recipient %q", ErrInvalidRecipient, recipient)
	}
	if len(canonical) < MinRecipientDigits {
		return "", fmt.Errorf("%w: %q is too short (minimum %d digits required)", ErrInvalidRecipient, canonical, MinRecipientDigits)
	}
	if canonical != recipient {
		slog.Debug("messaging.CanonicalizePhoneNumber: canonicalized recipient", "original", recipient, "canonical", canonical)
	}
	return canonical, nil
}
