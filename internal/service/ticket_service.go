package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/ticketdesk/transcript-ledger/internal/domain"
	"github.com/ticketdesk/transcript-ledger/internal/events"
	"github.com/ticketdesk/transcript-ledger/internal/ledger"
	"github.com/ticketdesk/transcript-ledger/internal/observability"
	"github.com/ticketdesk/transcript-ledger/internal/reaction"
	"github.com/ticketdesk/transcript-ledger/internal/store"
	"github.com/ticketdesk/transcript-ledger/internal/transcript"
)

// Outcome describes what a handler did with an event.
type Outcome string

const (
	OutcomeIgnored       Outcome = "ignored"
	OutcomeLogged        Outcome = "logged"
	OutcomeAlreadyLogged Outcome = "already_logged"
	OutcomeInProgress    Outcome = "in_progress"
	OutcomeSkipped       Outcome = "skipped"
	OutcomeUpdated       Outcome = "updated"
	OutcomeUnrecognized  Outcome = "unrecognized"
	OutcomeFailed        Outcome = "failed"
)

// TicketLedger is the write path the workflow drives.
type TicketLedger interface {
	TryLogTicket(ctx context.Context, rec domain.TicketRecord) (ledger.LogResult, error)
	SetApproval(ctx context.Context, ticketNumber string, status domain.ApprovalStatus) error
	SetReferral(ctx context.Context, ticketNumber string, category domain.ReferralCategory) error
}

// ChatClient is the outbound side of the chat platform. It only carries
// user-visible feedback and message lookups.
type ChatClient interface {
	AddReactions(ctx context.Context, channelID, messageID string, symbols []string) error
	FetchMessage(ctx context.Context, channelID, messageID string) (transcript.Message, error)
}

// ReactionEvent is an inbound "reaction added" notification.
type ReactionEvent struct {
	ChannelID string
	MessageID string
	UserID    string
	Symbol    string
}

// Channels identifies who and where the workflow listens to.
type Channels struct {
	TranscriptChannelID string
	TicketBotID         string
	// SelfID is this bot's user id; its own reactions are ignored.
	SelfID string
}

// TicketService translates chat events into ledger operations. Handlers run
// one at a time; the chat transport may deliver events concurrently.
type TicketService struct {
	mu         sync.Mutex
	parser     *transcript.Parser
	ledger     TicketLedger
	chat       ChatClient
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	channels   Channels
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Parser     *transcript.Parser
	Ledger     TicketLedger
	Chat       ChatClient
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	Channels   Channels
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	parser := deps.Parser
	if parser == nil {
		parser = transcript.NewParser(nil)
	}
	return &TicketService{
		parser:     parser,
		ledger:     deps.Ledger,
		chat:       deps.Chat,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		channels:   deps.Channels,
	}
}

// SetSelfID records the bot's own user id once the chat session is up.
func (s *TicketService) SetSelfID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels.SelfID = id
}

// HandleTranscript logs a finalized transcript post. The ticket bot edits its
// message after sending, so this runs on the edit that carries the full embed.
func (s *TicketService) HandleTranscript(ctx context.Context, msg transcript.Message) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.ChannelID != s.channels.TranscriptChannelID || msg.AuthorID != s.channels.TicketBotID {
		return s.done("transcript", OutcomeIgnored), nil
	}

	rec, err := s.parser.Parse(msg)
	if err != nil {
		s.logger.Warn("skipping malformed transcript", zap.String("message_id", msg.ID), zap.Error(err))
		return s.done("transcript", OutcomeSkipped), err
	}
	number := rec.Bare()

	result, err := s.ledger.TryLogTicket(ctx, rec)
	if err != nil {
		s.storeFailure(err)
		s.logger.Error("failed to log ticket", zap.String("ticket", number), zap.Error(err))
		return s.done("transcript", OutcomeFailed), err
	}
	switch result {
	case ledger.AlreadyLogged:
		s.logger.Debug("ticket already logged", zap.String("ticket", number))
		return s.done("transcript", OutcomeAlreadyLogged), nil
	case ledger.InProgress:
		s.logger.Info("ticket not logged yet; another writer holds it", zap.String("ticket", number))
		return s.done("transcript", OutcomeInProgress), nil
	}

	s.offer(ctx, msg.ChannelID, msg.ID, reaction.ApprovalSymbols())
	s.publish(ctx, events.EventTicketLogged, number, "", msg.ID, events.TicketLoggedPayload{
		OwnerID:       rec.OwnerID,
		TranscriptURL: rec.TranscriptURL,
	})
	s.logger.Info("logged ticket; awaiting approval reaction", zap.String("ticket", number), zap.String("owner_id", rec.OwnerID))
	return s.done("transcript", OutcomeLogged), nil
}

// HandleReaction applies an approval or referral reaction to the ledger.
// Re-reacting overwrites the previous value.
func (s *TicketService) HandleReaction(ctx context.Context, evt ReactionEvent) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if evt.ChannelID != s.channels.TranscriptChannelID ||
		evt.UserID == s.channels.TicketBotID ||
		(s.channels.SelfID != "" && evt.UserID == s.channels.SelfID) {
		return s.done("reaction", OutcomeIgnored), nil
	}

	decision := reaction.Classify(evt.Symbol)
	if decision.Kind == reaction.Unrecognized {
		s.logger.Debug("invalid reaction detected", zap.String("symbol", evt.Symbol), zap.String("message_id", evt.MessageID))
		return s.done("reaction", OutcomeUnrecognized), nil
	}

	msg, err := s.chat.FetchMessage(ctx, evt.ChannelID, evt.MessageID)
	if err != nil {
		s.logger.Error("failed to fetch reacted message", zap.String("message_id", evt.MessageID), zap.Error(err))
		return s.done("reaction", OutcomeFailed), err
	}
	if msg.AuthorID != s.channels.TicketBotID {
		return s.done("reaction", OutcomeIgnored), nil
	}

	number, err := transcript.TicketNumber(msg)
	if err != nil {
		s.logger.Warn("reacted message has no ticket number", zap.String("message_id", evt.MessageID), zap.Error(err))
		return s.done("reaction", OutcomeSkipped), err
	}

	switch decision.Kind {
	case reaction.Approval:
		if err := s.ledger.SetApproval(ctx, number, decision.Approval); err != nil {
			return s.updateFailed(number, "approval", err)
		}
		if decision.UnlocksReferral() {
			s.offer(ctx, evt.ChannelID, evt.MessageID, reaction.ReferralSymbols())
		}
		s.publish(ctx, events.EventApprovalSet, number, evt.UserID, evt.MessageID, events.ApprovalSetPayload{Status: decision.Approval})
		s.logger.Info("set ticket approval", zap.String("ticket", number), zap.String("approval", string(decision.Approval)))
	case reaction.Referral:
		if err := s.ledger.SetReferral(ctx, number, decision.Referral); err != nil {
			return s.updateFailed(number, "referral", err)
		}
		s.publish(ctx, events.EventReferralSet, number, evt.UserID, evt.MessageID, events.ReferralSetPayload{Category: decision.Referral})
		s.logger.Info("set ticket referral", zap.String("ticket", number), zap.String("referral", string(decision.Referral)))
	}
	return s.done("reaction", OutcomeUpdated), nil
}

func (s *TicketService) updateFailed(number, field string, err error) (Outcome, error) {
	s.storeFailure(err)
	level := zap.ErrorLevel
	if errors.Is(err, ledger.ErrNotFound) || errors.Is(err, ledger.ErrRowMoved) {
		level = zap.WarnLevel
	}
	s.logger.Log(level, "failed to update ticket", zap.String("ticket", number), zap.String("field", field), zap.Error(err))
	return s.done("reaction", OutcomeFailed), err
}

// offer adds reaction affordances; failures only cost the user a shortcut.
func (s *TicketService) offer(ctx context.Context, channelID, messageID string, symbols []string) {
	if s.chat == nil {
		return
	}
	if err := s.chat.AddReactions(ctx, channelID, messageID, symbols); err != nil {
		s.logger.Warn("failed to add reactions", zap.String("message_id", messageID), zap.Strings("symbols", symbols), zap.Error(err))
	}
}

func (s *TicketService) publish(ctx context.Context, eventType events.EventType, number, actorID, messageID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	event := events.New(eventType, number, payload)
	event.ActorID = actorID
	event.MessageID = messageID
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed", zap.String("event", string(eventType)), zap.Error(err))
	}
}

func (s *TicketService) storeFailure(err error) {
	switch {
	case errors.Is(err, store.ErrStoreRateLimited):
		s.metrics.RecordStoreError("rate_limited")
	case errors.Is(err, store.ErrStoreUnavailable):
		s.metrics.RecordStoreError("unavailable")
	}
}

func (s *TicketService) done(kind string, outcome Outcome) Outcome {
	s.metrics.RecordEvent(kind, string(outcome))
	return outcome
}
