package domain

import (
	"strings"
	"time"
)

// TimestampLayout is the spreadsheet rendering of a ticket close time.
const TimestampLayout = "01/02/2006 15:04:05"

// textMarker forces the store to keep ticket numbers as text (e.g. '0670).
const textMarker = "'"

// ApprovalStatus is the staff decision for a ticket.
type ApprovalStatus string

const (
	ApprovalUnset      ApprovalStatus = ""
	ApprovalAccepted   ApprovalStatus = "accepted"
	ApprovalDenied     ApprovalStatus = "denied"
	ApprovalIncomplete ApprovalStatus = "incomplete"
)

// Valid reports whether s is a known approval value (unset included).
func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalUnset, ApprovalAccepted, ApprovalDenied, ApprovalIncomplete:
		return true
	}
	return false
}

// ReferralCategory is the secondary classification of an accepted ticket.
type ReferralCategory string

const (
	ReferralUnset   ReferralCategory = ""
	ReferralOption1 ReferralCategory = "option1"
	ReferralOption2 ReferralCategory = "option2"
	ReferralOption3 ReferralCategory = "option3"
)

// ReferralCategories lists the settable categories in display order.
func ReferralCategories() []ReferralCategory {
	return []ReferralCategory{ReferralOption1, ReferralOption2, ReferralOption3}
}

// Valid reports whether c is a known referral value (unset included).
func (c ReferralCategory) Valid() bool {
	switch c {
	case ReferralUnset, ReferralOption1, ReferralOption2, ReferralOption3:
		return true
	}
	return false
}

// TicketRecord is one ledger row.
type TicketRecord struct {
	Timestamp        string
	OwnerID          string
	TicketNumber     string
	ApprovalStatus   ApprovalStatus
	TranscriptURL    string
	ReferralCategory ReferralCategory
}

// Column positions inside a ledger row (A..F).
const (
	ColTimestamp = iota
	ColOwnerID
	ColTicketNumber
	ColApprovalStatus
	ColTranscriptURL
	ColReferralCategory
	RowWidth
)

// Row renders the record as store cells in column order.
func (r TicketRecord) Row() []string {
	row := make([]string, RowWidth)
	row[ColTimestamp] = r.Timestamp
	row[ColOwnerID] = r.OwnerID
	row[ColTicketNumber] = r.TicketNumber
	row[ColApprovalStatus] = string(r.ApprovalStatus)
	row[ColTranscriptURL] = r.TranscriptURL
	row[ColReferralCategory] = string(r.ReferralCategory)
	return row
}

// RecordFromRow builds a record from store cells. The store trims trailing
// empty cells, so short rows are treated as unset.
func RecordFromRow(row []string) TicketRecord {
	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	return TicketRecord{
		Timestamp:        cell(ColTimestamp),
		OwnerID:          cell(ColOwnerID),
		TicketNumber:     cell(ColTicketNumber),
		ApprovalStatus:   ApprovalStatus(cell(ColApprovalStatus)),
		TranscriptURL:    cell(ColTranscriptURL),
		ReferralCategory: ReferralCategory(cell(ColReferralCategory)),
	}
}

// Bare returns the ticket number without the text marker.
func (r TicketRecord) Bare() string {
	return BareTicketNumber(r.TicketNumber)
}

// StoredTicketNumber prefixes n with the text marker unless already present.
func StoredTicketNumber(n string) string {
	if strings.HasPrefix(n, textMarker) {
		return n
	}
	return textMarker + n
}

// BareTicketNumber strips the text marker. The store drops it on read when the
// cell was entered as USER_ENTERED, but raw writes may keep it.
func BareTicketNumber(n string) string {
	return strings.TrimPrefix(strings.TrimSpace(n), textMarker)
}

// FormatTimestamp renders t in loc using TimestampLayout.
func FormatTimestamp(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(TimestampLayout)
}
