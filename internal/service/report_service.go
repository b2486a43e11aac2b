package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/ticketdesk/transcript-ledger/internal/domain"
	"github.com/ticketdesk/transcript-ledger/internal/reporting"
)

var (
	// ErrWrongChannel is returned when a restricted command runs outside the staff channel.
	ErrWrongChannel = errors.New("command not available from this channel")
	// ErrUnknownStat is returned for a stats argument other than "referral".
	ErrUnknownStat = errors.New("unknown stats category")
)

// StatReferral is the only stats category.
const StatReferral = "referral"

// ReportService backs the lookup and stats commands.
type ReportService struct {
	reports        *reporting.Service
	staffChannelID string
	logger         *zap.Logger
}

// NewReportService constructs the service. Stats are restricted to staffChannelID.
func NewReportService(reports *reporting.Service, staffChannelID string, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{reports: reports, staffChannelID: staffChannelID, logger: logger}
}

// Lookup returns the tickets opened by ownerID in ledger order.
func (s *ReportService) Lookup(ctx context.Context, ownerID string) ([]domain.TicketRecord, error) {
	records, err := s.reports.FindByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("lookup failed", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("completed lookup", zap.String("owner_id", ownerID), zap.Int("tickets", len(records)))
	return records, nil
}

// CheckStats validates a stats request before any ledger read.
func (s *ReportService) CheckStats(channelID, category string) error {
	if channelID != s.staffChannelID {
		return ErrWrongChannel
	}
	if strings.TrimSpace(category) != StatReferral {
		return ErrUnknownStat
	}
	return nil
}

// Stats runs a stats query requested from channelID.
func (s *ReportService) Stats(ctx context.Context, channelID, category string) (reporting.ReferralStats, error) {
	if err := s.CheckStats(channelID, category); err != nil {
		return reporting.ReferralStats{}, err
	}
	stats, err := s.reports.AggregateReferral(ctx)
	if err != nil {
		s.logger.Error("referral stats failed", zap.Error(err))
		return reporting.ReferralStats{}, err
	}
	return stats, nil
}

// Referrals returns the referral tally without a channel check; the HTTP API
// enforces access with its own tokens.
func (s *ReportService) Referrals(ctx context.Context) (reporting.ReferralStats, error) {
	return s.reports.AggregateReferral(ctx)
}

// Approvals returns the approval breakdown.
func (s *ReportService) Approvals(ctx context.Context) (reporting.ApprovalStats, error) {
	return s.reports.ApprovalBreakdown(ctx)
}
