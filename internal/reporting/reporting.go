// Package reporting answers read-only lookup and stats queries over the ledger.
package reporting

import (
	"context"

	"github.com/ticketdesk/transcript-ledger/internal/domain"
)

// Source is the read path the facade needs.
type Source interface {
	ListAll(ctx context.Context) ([]domain.TicketRecord, error)
}

// ReferralStats is the tally of referral categories. Total is the sum of
// Counts; cells holding anything but a known category are not counted.
type ReferralStats struct {
	Counts map[domain.ReferralCategory]int
	Total  int
}

// ApprovalStats tallies approval outcomes; Pending counts unset statuses.
type ApprovalStats struct {
	Accepted   int
	Denied     int
	Incomplete int
	Pending    int
	Total      int
}

// Service is the query facade.
type Service struct {
	source Source
}

// NewService builds the facade on top of source.
func NewService(source Source) *Service {
	return &Service{source: source}
}

// FindByOwner returns the owner's tickets in store row order.
func (s *Service) FindByOwner(ctx context.Context, ownerID string) ([]domain.TicketRecord, error) {
	records, err := s.source.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.TicketRecord
	for _, rec := range records {
		if rec.OwnerID == ownerID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// AggregateReferral counts records per known referral category.
func (s *Service) AggregateReferral(ctx context.Context) (ReferralStats, error) {
	records, err := s.source.ListAll(ctx)
	if err != nil {
		return ReferralStats{}, err
	}
	stats := ReferralStats{Counts: make(map[domain.ReferralCategory]int, 3)}
	for _, c := range domain.ReferralCategories() {
		stats.Counts[c] = 0
	}
	for _, rec := range records {
		if rec.ReferralCategory == domain.ReferralUnset || !rec.ReferralCategory.Valid() {
			continue
		}
		stats.Counts[rec.ReferralCategory]++
		stats.Total++
	}
	return stats, nil
}

// ApprovalBreakdown counts records per approval outcome.
func (s *Service) ApprovalBreakdown(ctx context.Context) (ApprovalStats, error) {
	records, err := s.source.ListAll(ctx)
	if err != nil {
		return ApprovalStats{}, err
	}
	var stats ApprovalStats
	for _, rec := range records {
		switch rec.ApprovalStatus {
		case domain.ApprovalAccepted:
			stats.Accepted++
		case domain.ApprovalDenied:
			stats.Denied++
		case domain.ApprovalIncomplete:
			stats.Incomplete++
		default:
			stats.Pending++
		}
		stats.Total++
	}
	return stats, nil
}
