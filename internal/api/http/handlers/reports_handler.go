package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ticketdesk/transcript-ledger/internal/api/dto"
	"github.com/ticketdesk/transcript-ledger/internal/service"
	apperrors "github.com/ticketdesk/transcript-ledger/pkg/util"
)

// ReportsHandler exposes read-only ledger reports.
type ReportsHandler struct {
	reports *service.ReportService
	history *service.HistoryService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reports *service.ReportService, history *service.HistoryService) *ReportsHandler {
	return &ReportsHandler{reports: reports, history: history}
}

// OwnerTickets GET /reports/owners/:id/tickets.
func (h *ReportsHandler) OwnerTickets(c *fiber.Ctx) error {
	ownerID := strings.TrimSpace(c.Params("id"))
	if ownerID == "" {
		return apperrors.NewValidationError("owner id required", nil)
	}
	records, err := h.reports.Lookup(c.UserContext(), ownerID)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.TicketsFromRecords(records)})
}

// Referrals GET /reports/referrals.
func (h *ReportsHandler) Referrals(c *fiber.Ctx) error {
	stats, err := h.reports.Referrals(c.UserContext())
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.ReferralStatsFrom(stats)})
}

// Approvals GET /reports/approvals.
func (h *ReportsHandler) Approvals(c *fiber.Ctx) error {
	stats, err := h.reports.Approvals(c.UserContext())
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.ApprovalStatsFrom(stats)})
}

// TicketHistory GET /reports/tickets/:number/history.
func (h *ReportsHandler) TicketHistory(c *fiber.Ctx) error {
	number := strings.TrimSpace(c.Params("number"))
	if number == "" {
		return apperrors.NewValidationError("ticket number required", nil)
	}
	entries, err := h.history.History(c.UserContext(), number)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.DecisionsFrom(entries)})
}
