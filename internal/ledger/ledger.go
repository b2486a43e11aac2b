// Package ledger enforces at-most-once logging of tickets and applies
// reaction-driven updates to existing rows.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ticketdesk/transcript-ledger/internal/domain"
	"github.com/ticketdesk/transcript-ledger/internal/store"
)

var (
	// ErrNotFound is returned when no row holds the ticket number.
	ErrNotFound = errors.New("ticket not found in ledger")
	// ErrRowMoved is returned when the resolved row no longer holds the
	// ticket number at write time.
	ErrRowMoved = errors.New("ticket row moved before write")
	// ErrInvalidValue is returned for an approval or referral outside the known set.
	ErrInvalidValue = errors.New("invalid ledger value")
)

// LogResult is the outcome of TryLogTicket.
type LogResult int

const (
	Logged LogResult = iota + 1
	AlreadyLogged
	// InProgress means another holder reserved the number and the ledger was
	// not read. The holder's append may still fail, so the ticket is not
	// known to be logged.
	InProgress
)

func (r LogResult) String() string {
	switch r {
	case Logged:
		return "logged"
	case AlreadyLogged:
		return "already_logged"
	case InProgress:
		return "in_progress"
	}
	return "unknown"
}

// Layout is the addressing contract with the spreadsheet.
type Layout struct {
	AppendRange    string
	FirstColumn    string
	LastColumn     string
	TicketColumn   string
	ApprovalColumn string
	ReferralColumn string
	FirstRow       int
	LastRow        int
}

// DefaultLayout matches the sheet the ticket bot has always written:
// header in row 1, ticket numbers in C, approval in D, referral in F.
func DefaultLayout() Layout {
	return Layout{
		AppendRange:    "A:F",
		FirstColumn:    "A",
		LastColumn:     "F",
		TicketColumn:   "C",
		ApprovalColumn: "D",
		ReferralColumn: "F",
		FirstRow:       2,
		LastRow:        10000,
	}
}

// NewLayout derives a layout from an append range such as A:F. The ticket,
// approval and referral columns must be the third, fourth and sixth columns
// of that range.
func NewLayout(appendRange, ticketCol, approvalCol, referralCol string, firstRow, lastRow int) (Layout, error) {
	start, end, err := store.ParseRange(appendRange)
	if err != nil {
		return Layout{}, fmt.Errorf("append range: %w", err)
	}
	if firstRow < 1 || lastRow < firstRow {
		return Layout{}, fmt.Errorf("invalid rows %d..%d", firstRow, lastRow)
	}
	layout := Layout{
		AppendRange:    appendRange,
		FirstColumn:    store.ColumnLabel(start.Col),
		LastColumn:     store.ColumnLabel(end.Col),
		TicketColumn:   strings.ToUpper(ticketCol),
		ApprovalColumn: strings.ToUpper(approvalCol),
		ReferralColumn: strings.ToUpper(referralCol),
		FirstRow:       firstRow,
		LastRow:        lastRow,
	}
	if end.Col-start.Col+1 < domain.RowWidth {
		return Layout{}, fmt.Errorf("append range %s narrower than %d columns", appendRange, domain.RowWidth)
	}
	// Rows are written and read positionally, so each column must sit at its
	// record offset from the start of the append range.
	for _, c := range []struct {
		name   string
		col    string
		offset int
	}{
		{"ticket", layout.TicketColumn, domain.ColTicketNumber},
		{"approval", layout.ApprovalColumn, domain.ColApprovalStatus},
		{"referral", layout.ReferralColumn, domain.ColReferralCategory},
	} {
		idx, err := store.ColumnIndex(c.col)
		if err != nil {
			return Layout{}, err
		}
		if want := store.ColumnLabel(start.Col + c.offset); idx != start.Col+c.offset {
			return Layout{}, fmt.Errorf("%s column %s does not match append range %s (want %s)", c.name, c.col, appendRange, want)
		}
	}
	return layout, nil
}

func (l Layout) ticketRange() string {
	return store.ColumnRange(l.TicketColumn, l.FirstRow, l.LastRow)
}

func (l Layout) recordRange() string {
	return store.BlockRange(l.FirstColumn, l.LastColumn, l.FirstRow, l.LastRow)
}

// Guard reserves a ticket number across processes while it is being logged.
type Guard interface {
	Acquire(ctx context.Context, ticketNumber string) (bool, error)
	Release(ctx context.Context, ticketNumber string) error
}

// Ledger is the ticket record book on top of a Store.
type Ledger struct {
	store  store.Store
	layout Layout
	guard  Guard
	logger *zap.Logger
}

// Dependencies bundles collaborators for the ledger.
type Dependencies struct {
	Store  store.Store
	Layout Layout
	Guard  Guard
	Logger *zap.Logger
}

// New constructs a ledger. A zero Layout means DefaultLayout.
func New(deps Dependencies) *Ledger {
	layout := deps.Layout
	if layout == (Layout{}) {
		layout = DefaultLayout()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{store: deps.Store, layout: layout, guard: deps.Guard, logger: logger}
}

// TryLogTicket appends rec unless its ticket number is already in the ledger.
//
// Known race: the dedupe read and the append are separate store calls, so two
// writers logging the same number at once can both append. Events arrive from
// a single upstream source and are handled one at a time, which keeps the
// window narrow; the optional Guard narrows it further across processes.
// A denied Guard yields InProgress, not AlreadyLogged: if the holder fails,
// a later re-delivery of the transcript logs the ticket.
func (l *Ledger) TryLogTicket(ctx context.Context, rec domain.TicketRecord) (LogResult, error) {
	number := rec.Bare()
	if number == "" {
		return 0, fmt.Errorf("%w: empty ticket number", ErrInvalidValue)
	}

	if l.guard != nil {
		ok, err := l.guard.Acquire(ctx, number)
		switch {
		case err != nil:
			l.logger.Warn("log guard unavailable; continuing unguarded", zap.String("ticket", number), zap.Error(err))
		case !ok:
			l.logger.Info("ticket is being logged elsewhere", zap.String("ticket", number))
			return InProgress, nil
		default:
			defer func() {
				if err := l.guard.Release(context.WithoutCancel(ctx), number); err != nil {
					l.logger.Warn("release log guard", zap.String("ticket", number), zap.Error(err))
				}
			}()
		}
	}

	numbers, err := l.store.ReadColumn(ctx, l.layout.ticketRange())
	if err != nil {
		return 0, fmt.Errorf("read ticket column: %w", err)
	}
	if indexOf(numbers, number) >= 0 {
		return AlreadyLogged, nil
	}

	rec.TicketNumber = domain.StoredTicketNumber(number)
	if err := l.store.AppendRow(ctx, l.layout.AppendRange, rec.Row()); err != nil {
		return 0, fmt.Errorf("append ticket %s: %w", number, err)
	}
	return Logged, nil
}

// ResolveRow returns the 1-based sheet row of the first exact match.
// Row positions shift as rows are appended or removed, so callers re-resolve
// before every write instead of holding on to a row.
func (l *Ledger) ResolveRow(ctx context.Context, ticketNumber string) (int, error) {
	number := domain.BareTicketNumber(ticketNumber)
	numbers, err := l.store.ReadColumn(ctx, l.layout.ticketRange())
	if err != nil {
		return 0, fmt.Errorf("read ticket column: %w", err)
	}
	idx := indexOf(numbers, number)
	if idx < 0 {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, number)
	}
	return l.layout.FirstRow + idx, nil
}

// SetApproval writes status into the approval column of the ticket's row.
// Re-applying overwrites the previous value.
func (l *Ledger) SetApproval(ctx context.Context, ticketNumber string, status domain.ApprovalStatus) error {
	if status == domain.ApprovalUnset || !status.Valid() {
		return fmt.Errorf("%w: approval %q", ErrInvalidValue, status)
	}
	return l.setField(ctx, ticketNumber, l.layout.ApprovalColumn, string(status))
}

// SetReferral writes category into the referral column of the ticket's row.
// Approval and referral are separate writes; one may land without the other.
func (l *Ledger) SetReferral(ctx context.Context, ticketNumber string, category domain.ReferralCategory) error {
	if category == domain.ReferralUnset || !category.Valid() {
		return fmt.Errorf("%w: referral %q", ErrInvalidValue, category)
	}
	return l.setField(ctx, ticketNumber, l.layout.ReferralColumn, string(category))
}

func (l *Ledger) setField(ctx context.Context, ticketNumber, column, value string) error {
	number := domain.BareTicketNumber(ticketNumber)
	row, err := l.ResolveRow(ctx, number)
	if err != nil {
		return err
	}

	// Revalidate: the sheet may have been edited between the resolve and now.
	current, err := l.store.ReadColumn(ctx, store.ColumnRange(l.layout.TicketColumn, row, row))
	if err != nil {
		return fmt.Errorf("revalidate row %d: %w", row, err)
	}
	if len(current) == 0 || domain.BareTicketNumber(current[0]) != number {
		return fmt.Errorf("%w: ticket %s, row %d", ErrRowMoved, number, row)
	}

	if err := l.store.UpdateCell(ctx, store.CellAddress(column, row), value); err != nil {
		return fmt.Errorf("update %s%d: %w", column, row, err)
	}
	l.logger.Debug("ledger cell updated",
		zap.String("ticket", number),
		zap.String("cell", store.CellAddress(column, row)),
		zap.String("value", value))
	return nil
}

// ListAll reads every record in store row order.
func (l *Ledger) ListAll(ctx context.Context) ([]domain.TicketRecord, error) {
	rows, err := l.store.ReadRows(ctx, l.layout.recordRange())
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	records := make([]domain.TicketRecord, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		records = append(records, domain.RecordFromRow(row))
	}
	return records, nil
}

func indexOf(numbers []string, number string) int {
	for i, n := range numbers {
		if domain.BareTicketNumber(n) == number {
			return i
		}
	}
	return -1
}
