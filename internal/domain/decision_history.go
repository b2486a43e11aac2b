package domain

import "time"

// DecisionField names the mutable ledger column a decision touched.
type DecisionField string

const (
	DecisionFieldApproval DecisionField = "APPROVAL"
	DecisionFieldReferral DecisionField = "REFERRAL"
)

// DecisionEntry is an immutable audit record of one reaction-driven write.
type DecisionEntry struct {
	ID           string
	TicketNumber string
	Field        DecisionField
	Value        string
	ActorID      string
	MessageID    string
	CreatedAt    time.Time
}
