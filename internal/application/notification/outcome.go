package notification

import "github.com/shopspring/decimal"

// OutcomeKind classifies what the pipeline wants the user to know. Kinds
// marked terminal are delivered at most once per order and channel; the
// others may repeat across retries.
type OutcomeKind string

const (
	// OutcomeRegistrationSuccess and the credit kinds are terminal.
	OutcomeRegistrationSuccess  OutcomeKind = "registration_success"
	OutcomeDepositCredited      OutcomeKind = "deposit_credited"
	OutcomeOverpaidCredited     OutcomeKind = "overpaid_credited"
	OutcomeUnderpaidCredited    OutcomeKind = "underpaid_credited"
	OutcomeRegistrationPending  OutcomeKind = "registration_pending"
	OutcomeRegistrationFailed   OutcomeKind = "registration_failed"
	OutcomeAwaitingConfirmation OutcomeKind = "awaiting_confirmation"
)

// IsTerminalSuccess reports whether repeat delivery of this kind would be
// user-visible spam rather than useful progress.
func (k OutcomeKind) IsTerminalSuccess() bool {
	switch k {
	case OutcomeRegistrationSuccess, OutcomeDepositCredited, OutcomeOverpaidCredited:
		return true
	default:
		return false
	}
}

// Outcome carries the structured result of one confirmation event. Message
// rendering happens in the dispatcher; callers never pass markup.
type Outcome struct {
	Kind    OutcomeKind
	OrderID string
	OwnerID int64

	DomainName  string
	Nameservers []string

	AmountUSD    decimal.Decimal
	CreditedUSD  decimal.Decimal
	ShortfallUSD decimal.Decimal
	SurplusUSD   decimal.Decimal

	// ContactEmail is the delivery address for the email channel. Empty
	// means the user gave no address and only chat is attempted.
	ContactEmail string

	// Reason is a short human-readable explanation for failure kinds.
	Reason string
}
