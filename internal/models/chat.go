package models

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Chat contract limits
const (
	// MaxChatTextLength defines the maximum allowed length of a participant message
	MaxChatTextLength = 4096
	// MaxHistoryMessages is the number of most-recent messages kept on a request
	MaxHistoryMessages = 20
)

// ChatRequestKind tags the variant of a ChatRequest.
type ChatRequestKind string

const (
	// ChatRequestTurn answers a participant message.
	ChatRequestTurn ChatRequestKind = "turn"
	// ChatRequestSelect asks for the opening line of a session; no participant text.
	ChatRequestSelect ChatRequestKind = "select"
)

// ChatRole identifies who authored a history message.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMeta is the participant state sent by the portal with each turn.
// Nil pointers mean "not sent": the orchestrator applies defaults or derives the value.
type ChatMeta struct {
	Domain        string   `json:"domain"`
	Day           int      `json:"day"`
	DistressScore *float64 `json:"distress_score,omitempty"`
	MissedDay     *bool    `json:"missed_day,omitempty"`
	EndOfWeek     *bool    `json:"end_of_week,omitempty"`
}

// ChatMessage is one entry of the transcript the portal sends back.
type ChatMessage struct {
	Role      ChatRole `json:"role"`
	Text      string   `json:"text"`
	CreatedAt int64    `json:"created_at"`
}

// ChatRequest is the tagged request from the portal to the orchestrator.
type ChatRequest struct {
	Kind          ChatRequestKind `json:"kind"`
	ParticipantID string          `json:"participant_id"`
	Text          string          `json:"text,omitempty"`
	Meta          ChatMeta        `json:"meta"`
	Messages      []ChatMessage   `json:"messages,omitempty"`
}

// DecodeChatRequest strictly decodes and validates a ChatRequest.
// Unknown fields are rejected so malformed upstream payloads fail loudly.
func DecodeChatRequest(r io.Reader) (ChatRequest, error) {
	var req ChatRequest
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return ChatRequest{}, fmt.Errorf("invalid chat request: %w", err)
	}
	if err := req.Validate(); err != nil {
		return ChatRequest{}, err
	}
	return req, nil
}

// Validate performs validation on a ChatRequest according to its kind.
func (r *ChatRequest) Validate() error {
	switch r.Kind {
	case ChatRequestTurn:
		if strings.TrimSpace(r.Text) == "" {
			return ErrMissingText
		}
		if len(r.Text) > MaxChatTextLength {
			return ErrTextTooLong
		}
	case ChatRequestSelect:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRequestKind, r.Kind)
	}
	if r.ParticipantID == "" {
		return ErrMissingParticipant
	}
	if err := r.Meta.Validate(); err != nil {
		return err
	}
	for _, m := range r.Messages {
		if m.Role != ChatRoleUser && m.Role != ChatRoleAssistant {
			return fmt.Errorf("%w: %q", ErrInvalidRole, m.Role)
		}
	}
	return nil
}

// Validate checks the fields the selector cannot default.
func (m *ChatMeta) Validate() error {
	if strings.TrimSpace(m.Domain) == "" {
		return ErrMissingDomain
	}
	if m.Day < 1 {
		return ErrInvalidDay
	}
	return nil
}

// History returns at most the MaxHistoryMessages most recent messages.
func (r *ChatRequest) History() []ChatMessage {
	if len(r.Messages) <= MaxHistoryMessages {
		return r.Messages
	}
	return r.Messages[len(r.Messages)-MaxHistoryMessages:]
}

// ChatResponseKind tags the variant of a ChatResponse.
type ChatResponseKind string

const (
	// ChatResponseContent carries a selected row.
	ChatResponseContent ChatResponseKind = "content"
	// ChatResponseNoMatch carries only the generic fallback reply.
	ChatResponseNoMatch ChatResponseKind = "no_match"
)

// ChatResponse is the tagged reply from the orchestrator. Row is set if and only if
// Kind is ChatResponseContent.
type ChatResponse struct {
	Kind     ChatResponseKind     `json:"kind"`
	Category ConversationCategory `json:"category"`
	Pass     string               `json:"pass"`
	Snapshot ParticipantSnapshot  `json:"snapshot"`
	Row      *ContentRow          `json:"row,omitempty"`
	Reply    string               `json:"reply"`
}

// ContentResponse builds a response for a selected row.
func ContentResponse(category ConversationCategory, pass string, snap ParticipantSnapshot, row ContentRow, reply string) ChatResponse {
	return ChatResponse{
		Kind:     ChatResponseContent,
		Category: category,
		Pass:     pass,
		Snapshot: snap,
		Row:      &row,
		Reply:    reply,
	}
}

// NoMatchResponse builds a response for a selection with no row.
func NoMatchResponse(category ConversationCategory, snap ParticipantSnapshot, reply string) ChatResponse {
	return ChatResponse{
		Kind:     ChatResponseNoMatch,
		Category: category,
		Pass:     "none",
		Snapshot: snap,
		Reply:    reply,
	}
}
