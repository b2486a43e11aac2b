package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/ticketdesk/transcript-ledger/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketLogged EventType = "ticket_logged"
	EventApprovalSet  EventType = "approval_set"
	EventReferralSet  EventType = "referral_set"
)

// Event represents a ledger change emitted by the workflow service.
type Event struct {
	ID           string      `json:"id"`
	Type         EventType   `json:"type"`
	TicketNumber string      `json:"ticket_number"`
	ActorID      string      `json:"actor_id,omitempty"`
	MessageID    string      `json:"message_id,omitempty"`
	Timestamp    time.Time   `json:"timestamp"`
	Payload      interface{} `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, ticketNumber string, payload interface{}) Event {
	return Event{
		ID:           uuid.NewString(),
		Type:         eventType,
		TicketNumber: ticketNumber,
		Timestamp:    time.Now().UTC(),
		Payload:      payload,
	}
}

// TicketLoggedPayload payload.
type TicketLoggedPayload struct {
	OwnerID       string `json:"owner_id"`
	TranscriptURL string `json:"transcript_url"`
}

// ApprovalSetPayload payload.
type ApprovalSetPayload struct {
	Status domain.ApprovalStatus `json:"status"`
}

// ReferralSetPayload payload.
type ReferralSetPayload struct {
	Category domain.ReferralCategory `json:"category"`
}
