package valueobjects

// PaymentStatus tracks an order through the payment pipeline. Transitions
// only move forward: pending -> confirmed -> completed, with failed and
// cancelled as terminal branches.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusConfirmed PaymentStatus = "confirmed"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

var statusRank = map[PaymentStatus]int{
	PaymentStatusPending:   0,
	PaymentStatusConfirmed: 1,
	PaymentStatusCompleted: 2,
	PaymentStatusFailed:    2,
	PaymentStatusCancelled: 2,
}

func (s PaymentStatus) IsValid() bool {
	_, ok := statusRank[s]
	return ok
}

func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusFailed || s == PaymentStatusCancelled
}

// CanAdvanceTo reports whether moving to next respects the forward-only
// ordering. Terminal statuses admit no further transitions.
func (s PaymentStatus) CanAdvanceTo(next PaymentStatus) bool {
	if !s.IsValid() || !next.IsValid() {
		return false
	}
	if s.IsTerminal() {
		return false
	}
	return statusRank[next] > statusRank[s]
}

func (s PaymentStatus) String() string {
	return string(s)
}
