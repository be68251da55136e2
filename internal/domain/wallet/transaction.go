package wallet

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"nomadly/internal/shared/biztime"
	"nomadly/internal/shared/id"
)

// TransactionType classifies wallet ledger entries.
type TransactionType string

const (
	TransactionTypePayment            TransactionType = "payment"
	TransactionTypeDeposit            TransactionType = "deposit"
	TransactionTypeWithdrawal         TransactionType = "withdrawal"
	TransactionTypeAdminAdjustment    TransactionType = "admin_adjustment"
	TransactionTypeOverpaymentCredit  TransactionType = "overpayment_credit"
	TransactionTypeUnderpaymentCredit TransactionType = "underpayment_credit"
)

func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypePayment, TransactionTypeDeposit, TransactionTypeWithdrawal,
		TransactionTypeAdminAdjustment, TransactionTypeOverpaymentCredit, TransactionTypeUnderpaymentCredit:
		return true
	default:
		return false
	}
}

func (t TransactionType) String() string {
	return string(t)
}

// Transaction is one append-only wallet ledger entry. The wallet balance is
// the sum of an owner's transactions; it is never stored redundantly, so it
// can never drift without an audit trail. Debits carry a negative amount.
type Transaction struct {
	id              uint
	transactionID   string
	ownerID         int64
	amountUSD       decimal.Decimal
	transactionType TransactionType
	referenceOrder  string
	description     string
	metadata        map[string]interface{}
	createdAt       time.Time
}

func NewTransaction(ownerID int64, amountUSD decimal.Decimal, txType TransactionType, referenceOrderID, description string) (*Transaction, error) {
	if ownerID == 0 {
		return nil, fmt.Errorf("owner ID is required")
	}
	if !txType.IsValid() {
		return nil, fmt.Errorf("invalid transaction type %q", txType)
	}
	if amountUSD.IsZero() {
		return nil, fmt.Errorf("amount cannot be zero")
	}
	switch txType {
	case TransactionTypeWithdrawal, TransactionTypePayment:
		if amountUSD.IsPositive() {
			return nil, fmt.Errorf("%s transactions must be negative", txType)
		}
	case TransactionTypeDeposit, TransactionTypeOverpaymentCredit, TransactionTypeUnderpaymentCredit:
		if amountUSD.IsNegative() {
			return nil, fmt.Errorf("%s transactions must be positive", txType)
		}
	}

	return &Transaction{
		transactionID:   id.MustGenerateWithPrefix(id.PrefixTransaction, id.DefaultLength),
		ownerID:         ownerID,
		amountUSD:       amountUSD,
		transactionType: txType,
		referenceOrder:  referenceOrderID,
		description:     description,
		metadata:        make(map[string]interface{}),
		createdAt:       biztime.NowUTC(),
	}, nil
}

func (t *Transaction) SetMetadata(key string, value interface{}) {
	if t.metadata == nil {
		t.metadata = make(map[string]interface{})
	}
	t.metadata[key] = value
}

func (t *Transaction) SetID(id uint) { t.id = id }

func (t *Transaction) ID() uint                          { return t.id }
func (t *Transaction) TransactionID() string             { return t.transactionID }
func (t *Transaction) OwnerID() int64                    { return t.ownerID }
func (t *Transaction) AmountUSD() decimal.Decimal        { return t.amountUSD }
func (t *Transaction) Type() TransactionType             { return t.transactionType }
func (t *Transaction) ReferenceOrderID() string          { return t.referenceOrder }
func (t *Transaction) Description() string               { return t.description }
func (t *Transaction) Metadata() map[string]interface{}  { return t.metadata }
func (t *Transaction) CreatedAt() time.Time              { return t.createdAt }

// ReconstructParams carries persisted state back into a Transaction.
type ReconstructParams struct {
	ID               uint
	TransactionID    string
	OwnerID          int64
	AmountUSD        decimal.Decimal
	Type             TransactionType
	ReferenceOrderID string
	Description      string
	Metadata         map[string]interface{}
	CreatedAt        time.Time
}

func Reconstruct(p ReconstructParams) *Transaction {
	metadata := p.Metadata
	if metadata == nil {
		metadata = make(map[string]interface{})
	}
	return &Transaction{
		id:              p.ID,
		transactionID:   p.TransactionID,
		ownerID:         p.OwnerID,
		amountUSD:       p.AmountUSD,
		transactionType: p.Type,
		referenceOrder:  p.ReferenceOrderID,
		description:     p.Description,
		metadata:        metadata,
		createdAt:       p.CreatedAt,
	}
}
