package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/ticketdesk/transcript-ledger/internal/domain"
	"github.com/ticketdesk/transcript-ledger/internal/events"
	"github.com/ticketdesk/transcript-ledger/internal/repository"
)

// HistoryService records every applied decision into the audit trail.
type HistoryService struct {
	dispatcher events.Dispatcher
	history    repository.DecisionHistoryRepository
	logger     *zap.Logger
}

// NewHistoryService creates the service. A nil repository only logs.
func NewHistoryService(dispatcher events.Dispatcher, history repository.DecisionHistoryRepository, logger *zap.Logger) *HistoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryService{
		dispatcher: dispatcher,
		history:    history,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (h *HistoryService) RegisterHandlers() {
	if h.dispatcher == nil {
		return
	}
	h.dispatcher.Subscribe(events.EventTicketLogged, h.handleTicketLogged)
	h.dispatcher.Subscribe(events.EventApprovalSet, h.handleApprovalSet)
	h.dispatcher.Subscribe(events.EventReferralSet, h.handleReferralSet)
}

func (h *HistoryService) handleTicketLogged(ctx context.Context, event events.Event) error {
	h.logger.Info("TicketLogged", zap.String("ticket", event.TicketNumber), zap.Any("payload", event.Payload))
	return nil
}

func (h *HistoryService) handleApprovalSet(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ApprovalSetPayload)
	if !ok {
		return nil
	}
	return h.record(ctx, event, domain.DecisionFieldApproval, string(payload.Status))
}

func (h *HistoryService) handleReferralSet(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ReferralSetPayload)
	if !ok {
		return nil
	}
	return h.record(ctx, event, domain.DecisionFieldReferral, string(payload.Category))
}

func (h *HistoryService) record(ctx context.Context, event events.Event, field domain.DecisionField, value string) error {
	h.logger.Info("DecisionApplied",
		zap.String("ticket", event.TicketNumber),
		zap.String("field", string(field)),
		zap.String("value", value),
		zap.String("actor_id", event.ActorID))
	if h.history == nil {
		return nil
	}
	entry := &domain.DecisionEntry{
		ID:           event.ID,
		TicketNumber: event.TicketNumber,
		Field:        field,
		Value:        value,
		ActorID:      event.ActorID,
		MessageID:    event.MessageID,
	}
	if err := h.history.Create(ctx, entry); err != nil {
		h.logger.Warn("failed to record decision history", zap.String("ticket", event.TicketNumber), zap.Error(err))
		return err
	}
	return nil
}

// History lists the recorded decisions for one ticket, oldest first.
func (h *HistoryService) History(ctx context.Context, ticketNumber string) ([]domain.DecisionEntry, error) {
	if h.history == nil {
		return nil, nil
	}
	return h.history.ListByTicket(ctx, domain.BareTicketNumber(ticketNumber))
}
