package dto

import (
	"time"

	"github.com/ticketdesk/transcript-ledger/internal/domain"
	"github.com/ticketdesk/transcript-ledger/internal/reporting"
)

// TicketResponse is one ledger row.
type TicketResponse struct {
	Timestamp     string `json:"timestamp"`
	OwnerID       string `json:"owner_id"`
	TicketNumber  string `json:"ticket_number"`
	Approval      string `json:"approval,omitempty"`
	TranscriptURL string `json:"transcript_url"`
	Referral      string `json:"referral,omitempty"`
}

// ReferralStatsResponse is the referral tally.
type ReferralStatsResponse struct {
	Counts map[string]int `json:"counts"`
	Total  int            `json:"total"`
}

// ApprovalStatsResponse is the approval breakdown.
type ApprovalStatsResponse struct {
	Accepted   int `json:"accepted"`
	Denied     int `json:"denied"`
	Incomplete int `json:"incomplete"`
	Pending    int `json:"pending"`
	Total      int `json:"total"`
}

// DecisionResponse is one audit entry.
type DecisionResponse struct {
	ID        string    `json:"id"`
	Field     string    `json:"field"`
	Value     string    `json:"value"`
	ActorID   string    `json:"actor_id"`
	MessageID string    `json:"message_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TicketsFromRecords converts ledger records in order.
func TicketsFromRecords(records []domain.TicketRecord) []TicketResponse {
	out := make([]TicketResponse, 0, len(records))
	for _, r := range records {
		out = append(out, TicketResponse{
			Timestamp:     r.Timestamp,
			OwnerID:       r.OwnerID,
			TicketNumber:  r.Bare(),
			Approval:      string(r.ApprovalStatus),
			TranscriptURL: r.TranscriptURL,
			Referral:      string(r.ReferralCategory),
		})
	}
	return out
}

// ReferralStatsFrom converts the referral tally.
func ReferralStatsFrom(stats reporting.ReferralStats) ReferralStatsResponse {
	counts := make(map[string]int, len(stats.Counts))
	for category, n := range stats.Counts {
		counts[string(category)] = n
	}
	return ReferralStatsResponse{Counts: counts, Total: stats.Total}
}

// ApprovalStatsFrom converts the approval breakdown.
func ApprovalStatsFrom(stats reporting.ApprovalStats) ApprovalStatsResponse {
	return ApprovalStatsResponse{
		Accepted:   stats.Accepted,
		Denied:     stats.Denied,
		Incomplete: stats.Incomplete,
		Pending:    stats.Pending,
		Total:      stats.Total,
	}
}

// DecisionsFrom converts audit entries.
func DecisionsFrom(entries []domain.DecisionEntry) []DecisionResponse {
	out := make([]DecisionResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, DecisionResponse{
			ID:        e.ID,
			Field:     string(e.Field),
			Value:     e.Value,
			ActorID:   e.ActorID,
			MessageID: e.MessageID,
			CreatedAt: e.CreatedAt,
		})
	}
	return out
}
