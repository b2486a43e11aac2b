// Package reaction maps reaction symbols onto ledger decisions.
package reaction

import "github.com/ticketdesk/transcript-ledger/internal/domain"

// Kind tags a Decision.
type Kind int

const (
	Unrecognized Kind = iota
	Approval
	Referral
)

func (k Kind) String() string {
	switch k {
	case Approval:
		return "approval"
	case Referral:
		return "referral"
	}
	return "unrecognized"
}

// Decision is the classification of one reaction symbol.
type Decision struct {
	Kind     Kind
	Approval domain.ApprovalStatus
	Referral domain.ReferralCategory
}

// UnlocksReferral reports whether the referral symbols should be offered
// after this decision is applied.
func (d Decision) UnlocksReferral() bool {
	return d.Kind == Approval && d.Approval == domain.ApprovalAccepted
}

// Reaction symbols.
const (
	SymbolAccepted   = "✅"
	SymbolDenied     = "❌"
	SymbolIncomplete = "❕"
	SymbolOption1    = "🟣"
	SymbolOption2    = "🔵"
	SymbolOption3    = "🟡"
)

// Classify is a pure mapping; prior ticket state never changes the result.
func Classify(symbol string) Decision {
	switch symbol {
	case SymbolAccepted:
		return Decision{Kind: Approval, Approval: domain.ApprovalAccepted}
	case SymbolDenied:
		return Decision{Kind: Approval, Approval: domain.ApprovalDenied}
	case SymbolIncomplete:
		return Decision{Kind: Approval, Approval: domain.ApprovalIncomplete}
	case SymbolOption1:
		return Decision{Kind: Referral, Referral: domain.ReferralOption1}
	case SymbolOption2:
		return Decision{Kind: Referral, Referral: domain.ReferralOption2}
	case SymbolOption3:
		return Decision{Kind: Referral, Referral: domain.ReferralOption3}
	}
	return Decision{Kind: Unrecognized}
}

// ApprovalSymbols are offered on a freshly logged transcript.
func ApprovalSymbols() []string {
	return []string{SymbolAccepted, SymbolDenied, SymbolIncomplete}
}

// ReferralSymbols are offered once a ticket is accepted.
func ReferralSymbols() []string {
	return []string{SymbolOption1, SymbolOption2, SymbolOption3}
}
