// Package export writes ledger snapshots to offline formats.
package export

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ticketdesk/transcript-ledger/internal/domain"
)

// SheetName is the worksheet holding the exported ledger.
const SheetName = "Ledger"

// Header mirrors the ledger's column order.
var Header = []string{"Timestamp", "Discord ID", "Ticket", "Approval", "Transcript", "Referral"}

// Source lists the ledger in row order.
type Source interface {
	ListAll(ctx context.Context) ([]domain.TicketRecord, error)
}

// WriteXLSX renders records as a workbook on w. Ticket numbers stay text so
// leading zeros survive.
func WriteXLSX(ctx context.Context, w io.Writer, records []domain.TicketRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		row := []interface{}{
			rec.Timestamp,
			rec.OwnerID,
			rec.Bare(),
			string(rec.ApprovalStatus),
			rec.TranscriptURL,
			string(rec.ReferralCategory),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "F", 20); err != nil {
		return err
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Ledger reads every record from src and writes it as a workbook.
func Ledger(ctx context.Context, src Source, w io.Writer) (int, error) {
	records, err := src.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list ledger: %w", err)
	}
	if err := WriteXLSX(ctx, w, records); err != nil {
		return 0, err
	}
	return len(records), nil
}
