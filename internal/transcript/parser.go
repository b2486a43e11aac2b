// Package transcript turns a ticket bot's transcript message into a ledger record.
package transcript

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ticketdesk/transcript-ledger/internal/domain"
)

// ErrMalformedTranscript marks a payload that cannot be parsed. Never retried.
var ErrMalformedTranscript = errors.New("malformed transcript")

// Field positions in the ticket bot's transcript embed.
const (
	fieldOwner = iota
	fieldTicket
	fieldPlaceholder
	fieldTranscript
	fieldCount
)

// Field is one name/value pair of the transcript embed.
type Field struct {
	Name  string
	Value string
}

// Message is the transport-neutral view of a transcript post.
type Message struct {
	ID        string
	ChannelID string
	AuthorID  string
	CreatedAt time.Time
	Fields    []Field
}

// Parser builds records, rendering timestamps in a fixed zone.
type Parser struct {
	loc *time.Location
}

// NewParser returns a parser for loc; nil means UTC.
func NewParser(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.UTC
	}
	return &Parser{loc: loc}
}

// Parse extracts the canonical record with approval and referral unset.
func (p *Parser) Parse(msg Message) (domain.TicketRecord, error) {
	if len(msg.Fields) < fieldCount {
		return domain.TicketRecord{}, malformed("expected %d fields, got %d", fieldCount, len(msg.Fields))
	}
	number, err := TicketNumber(msg)
	if err != nil {
		return domain.TicketRecord{}, err
	}
	owner, err := ownerID(msg.Fields[fieldOwner].Value)
	if err != nil {
		return domain.TicketRecord{}, err
	}
	link, err := transcriptURL(msg.Fields[fieldTranscript].Value)
	if err != nil {
		return domain.TicketRecord{}, err
	}
	if msg.CreatedAt.IsZero() {
		return domain.TicketRecord{}, malformed("missing creation time")
	}

	return domain.TicketRecord{
		Timestamp:        domain.FormatTimestamp(msg.CreatedAt, p.loc),
		OwnerID:          owner,
		TicketNumber:     domain.StoredTicketNumber(number),
		ApprovalStatus:   domain.ApprovalUnset,
		TranscriptURL:    link,
		ReferralCategory: domain.ReferralUnset,
	}, nil
}

// TicketNumber returns the bare number from the status-prefixed label,
// e.g. closed-0670 -> 0670. The label is split once on '-'.
func TicketNumber(msg Message) (string, error) {
	if len(msg.Fields) <= fieldTicket {
		return "", malformed("missing ticket field")
	}
	label := strings.TrimSpace(msg.Fields[fieldTicket].Value)
	_, number, ok := strings.Cut(label, "-")
	if !ok || strings.TrimSpace(number) == "" {
		return "", malformed("ticket label %q has no number", label)
	}
	return strings.TrimSpace(number), nil
}

func ownerID(mention string) (string, error) {
	mention = strings.TrimSpace(mention)
	if !strings.HasPrefix(mention, "<@") || !strings.HasSuffix(mention, ">") {
		return "", malformed("owner %q is not a mention", mention)
	}
	id := strings.TrimPrefix(mention[2:len(mention)-1], "!")
	if id == "" || strings.Trim(id, "0123456789") != "" {
		return "", malformed("owner %q is not a numeric id", mention)
	}
	return id, nil
}

func transcriptURL(link string) (string, error) {
	link = strings.TrimSpace(link)
	open := strings.Index(link, "(")
	if open < 0 || !strings.HasSuffix(link, ")") || open+1 >= len(link)-1 {
		return "", malformed("transcript %q is not a hyperlink", link)
	}
	return link[open+1 : len(link)-1], nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedTranscript, fmt.Sprintf(format, args...))
}
