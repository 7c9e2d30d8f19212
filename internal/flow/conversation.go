// Package flow orchestrates a nurse-coach chat turn: it turns the portal's meta into a
// participant snapshot, asks the selector for the next scripted row and renders the reply.
package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Balaji0706816/nurseproject/internal/messaging"
	"github.com/Balaji0706816/nurseproject/internal/models"
	"github.com/Balaji0706816/nurseproject/internal/selector"
	"github.com/Balaji0706816/nurseproject/internal/store"
)

// DefaultFallbackReply is sent when no row matches the snapshot.
const DefaultFallbackReply = "Thanks for sharing. What part felt the most difficult?"

// DaysPerWeek sets the end-of-week cadence used when the portal does not send the flag.
const DaysPerWeek = 7

// ErrMessagingUnavailable is returned by Nudge when no messaging service is configured.
var ErrMessagingUnavailable = errors.New("messaging service not configured")

// Opts holds configuration options for a Conversation.
type Opts struct {
	Messaging     messaging.Service
	FocusDomains  []string
	Clock         func() time.Time
	FallbackReply string
}

// Option defines a configuration option for a Conversation.
type Option func(*Opts)

// WithMessaging enables Nudge delivery over the given service.
func WithMessaging(svc messaging.Service) Option {
	return func(o *Opts) { o.Messaging = svc }
}

// WithFocusDomains replaces the weekly focus rotation.
func WithFocusDomains(domains ...string) Option {
	return func(o *Opts) { o.FocusDomains = append([]string(nil), domains...) }
}

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Opts) { o.Clock = now }
}

// WithFallbackReply overrides DefaultFallbackReply.
func WithFallbackReply(reply string) Option {
	return func(o *Opts) { o.FallbackReply = reply }
}

// Conversation answers chat turns from an immutable library and a participant store.
// It holds no per-participant state and is safe for concurrent use.
type Conversation struct {
	lib           selector.Library
	store         store.Store
	messenger     messaging.Service
	focusDomains  []string
	now           func() time.Time
	fallbackReply string
}

// NewConversation wires a Conversation. lib and st are required.
func NewConversation(lib selector.Library, st store.Store, opts ...Option) (*Conversation, error) {
	if lib == nil {
		return nil, fmt.Errorf("content library is required")
	}
	if st == nil {
		return nil, fmt.Errorf("store is required")
	}
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(cfg.FocusDomains) == 0 {
		cfg.FocusDomains = append([]string(nil), DefaultFocusDomains...)
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.FallbackReply == "" {
		cfg.FallbackReply = DefaultFallbackReply
	}
	slog.Debug("flow.NewConversation: created", "messaging_set", cfg.Messaging != nil, "focus_domains", len(cfg.FocusDomains))
	return &Conversation{
		lib:           lib,
		store:         st,
		messenger:     cfg.Messaging,
		focusDomains:  cfg.FocusDomains,
		now:           cfg.Clock,
		fallbackReply: cfg.FallbackReply,
	}, nil
}

// Today returns the current calendar key.
func (c *Conversation) Today() string {
	return c.now().Format(models.DateLayout)
}

// Snapshot builds the selector input for a participant from the portal's meta.
//
// Distress defaults to models.DefaultDistressScore and is clamped to the 0-10 scale.
// A nil MissedDay is derived as "day > 1 and no check-in recorded yesterday"; a nil
// EndOfWeek is derived as "day is a multiple of DaysPerWeek".
func (c *Conversation) Snapshot(ctx context.Context, participantID string, meta models.ChatMeta) models.ParticipantSnapshot {
	snap := models.ParticipantSnapshot{
		Domain:        strings.TrimSpace(meta.Domain),
		Day:           meta.Day,
		DistressScore: models.DefaultDistressScore,
	}
	if meta.DistressScore != nil {
		snap.DistressScore = models.ClampDistress(*meta.DistressScore)
	}
	if meta.MissedDay != nil {
		snap.MissedDay = *meta.MissedDay
	} else {
		snap.MissedDay = c.missedYesterday(ctx, participantID, meta.Day)
	}
	if meta.EndOfWeek != nil {
		snap.EndOfWeek = *meta.EndOfWeek
	} else {
		snap.EndOfWeek = meta.Day > 0 && meta.Day%DaysPerWeek == 0
	}
	return snap
}

func (c *Conversation) missedYesterday(ctx context.Context, participantID string, day int) bool {
	if day <= 1 || participantID == "" {
		return false
	}
	yesterday := models.PreviousDate(c.Today())
	_, err := c.store.GetCheckIn(ctx, participantID, yesterday)
	switch {
	case err == nil:
		return false
	case errors.Is(err, store.ErrNotFound):
		return true
	default:
		slog.Warn("Conversation.Snapshot: check-in lookup failed, assuming not missed", "participantID", participantID, "date", yesterday, "error", err)
		return false
	}
}

// Select runs the selector on a snapshot as given, without derivation.
func (c *Conversation) Select(snap models.ParticipantSnapshot) selector.Result {
	return selector.SelectContent(snap, c.lib)
}

// Turn answers one tagged chat request.
func (c *Conversation) Turn(ctx context.Context, req models.ChatRequest) (models.ChatResponse, error) {
	if err := req.Validate(); err != nil {
		slog.Debug("Conversation.Turn: invalid request", "error", err)
		return models.ChatResponse{}, err
	}
	snap := c.Snapshot(ctx, req.ParticipantID, req.Meta)
	result := c.Select(snap)

	slog.Info("Conversation.Turn: selected",
		"participantID", req.ParticipantID,
		"kind", req.Kind,
		"domain", snap.Domain,
		"day", snap.Day,
		"category", result.Category,
		"pass", result.Pass,
		"row", result.RowID(),
		"history", len(req.History()))

	return c.respond(result, snap), nil
}

func (c *Conversation) respond(result selector.Result, snap models.ParticipantSnapshot) models.ChatResponse {
	if !result.Found {
		return models.NoMatchResponse(result.Category, snap, c.fallbackReply)
	}
	reply := Render(*result.Row)
	if reply == "" {
		reply = c.fallbackReply
	}
	return models.ContentResponse(result.Category, string(result.Pass), snap, *result.Row, reply)
}

// Nudge selects the line for a participant and delivers it to the recipient.
// Nothing is sent when no row matches; the returned response then has the no-match kind.
func (c *Conversation) Nudge(ctx context.Context, req models.NudgeRequest) (models.ChatResponse, error) {
	if err := req.Validate(); err != nil {
		return models.ChatResponse{}, err
	}
	if c.messenger == nil {
		return models.ChatResponse{}, ErrMessagingUnavailable
	}
	to, err := c.messenger.ValidateAndCanonicalizeRecipient(req.To)
	if err != nil {
		return models.ChatResponse{}, err
	}

	snap := c.Snapshot(ctx, req.ParticipantID, req.Meta)
	resp := c.respond(c.Select(snap), snap)
	if resp.Kind != models.ChatResponseContent {
		slog.Info("Conversation.Nudge: no row matched, nothing sent", "participantID", req.ParticipantID, "category", resp.Category)
		return resp, nil
	}
	if err := c.messenger.SendMessage(ctx, to, resp.Reply); err != nil {
		slog.Error("Conversation.Nudge: delivery failed", "participantID", req.ParticipantID, "error", err)
		return models.ChatResponse{}, fmt.Errorf("nudge delivery failed: %w", err)
	}
	slog.Info("Conversation.Nudge: sent", "participantID", req.ParticipantID, "row", resp.Row.ID)
	return resp, nil
}

// RecordCheckIn fills in the id, date and creation time when missing, validates and saves.
func (c *Conversation) RecordCheckIn(ctx context.Context, in models.CheckIn) (models.CheckIn, error) {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = c.now()
	}
	if in.Date == "" {
		in.Date = in.CreatedAt.Format(models.DateLayout)
	}
	if err := in.Validate(); err != nil {
		return models.CheckIn{}, err
	}
	if err := c.store.SaveCheckIn(ctx, in); err != nil {
		return models.CheckIn{}, err
	}
	slog.Debug("Conversation.RecordCheckIn: saved", "participantID", in.ParticipantID, "date", in.Date)
	return in, nil
}

// Store exposes the participant store for read-only API routes.
func (c *Conversation) Store() store.Store {
	return c.store
}
