package order

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	vo "nomadly/internal/domain/order/valueobjects"
	"nomadly/internal/shared/biztime"
	"nomadly/internal/shared/id"
)

// Order is a unit of requested paid work (domain registration or wallet
// deposit) tracked from payment-address issuance to a terminal status.
// Orders are never deleted; payment status only moves forward.
type Order struct {
	orderID            string
	ownerID            int64
	serviceType        vo.ServiceType
	requestedAmountUSD decimal.Decimal
	cryptoCurrency     string
	paymentAddress     string
	requiredCrypto     decimal.Decimal
	paymentStatus      vo.PaymentStatus
	serviceDetails     vo.ServiceDetails

	// registrationPending flags a confirmed order whose fulfillment did not
	// finish yet. It is a dedicated field, not metadata, so the retry sweep
	// can select on it in the database.
	registrationPending bool

	metadata map[string]interface{}

	version   int
	createdAt time.Time
	updatedAt time.Time
}

func NewOrder(ownerID int64, serviceType vo.ServiceType, requestedUSD decimal.Decimal, cryptoCurrency string, details vo.ServiceDetails) (*Order, error) {
	if ownerID == 0 {
		return nil, fmt.Errorf("owner ID is required")
	}
	if !serviceType.IsValid() {
		return nil, fmt.Errorf("invalid service type %q", serviceType)
	}
	if requestedUSD.IsNegative() || requestedUSD.IsZero() {
		return nil, fmt.Errorf("requested amount must be positive")
	}
	if cryptoCurrency == "" {
		return nil, fmt.Errorf("crypto currency is required")
	}
	if serviceType == vo.ServiceTypeDomainRegistration {
		if details.DomainName == "" {
			return nil, fmt.Errorf("domain name is required for domain registration orders")
		}
		if !details.NameserverChoice.IsValid() {
			return nil, fmt.Errorf("invalid nameserver choice %q", details.NameserverChoice)
		}
	}

	now := biztime.NowUTC()
	return &Order{
		orderID:            id.MustGenerateWithPrefix(id.PrefixOrder, id.DefaultLength),
		ownerID:            ownerID,
		serviceType:        serviceType,
		requestedAmountUSD: requestedUSD,
		cryptoCurrency:     cryptoCurrency,
		paymentStatus:      vo.PaymentStatusPending,
		serviceDetails:     details,
		metadata:           make(map[string]interface{}),
		createdAt:          now,
		updatedAt:          now,
	}, nil
}

// SetPaymentTerms records the gateway-issued address and the crypto amount
// required at creation-time rates.
func (o *Order) SetPaymentTerms(address string, requiredCrypto decimal.Decimal) {
	o.paymentAddress = address
	o.requiredCrypto = requiredCrypto
	o.touch()
}

func (o *Order) advance(next vo.PaymentStatus) error {
	if o.paymentStatus == next {
		return nil
	}
	if !o.paymentStatus.CanAdvanceTo(next) {
		return fmt.Errorf("cannot transition order %s from %s to %s", o.orderID, o.paymentStatus, next)
	}
	o.paymentStatus = next
	o.touch()
	return nil
}

// MarkConfirmed records that the payment reached its confirmation threshold.
func (o *Order) MarkConfirmed() error {
	return o.advance(vo.PaymentStatusConfirmed)
}

// MarkCompleted records terminal success (fulfillment finished).
func (o *Order) MarkCompleted() error {
	return o.advance(vo.PaymentStatusCompleted)
}

// MarkFailed records terminal failure with a reason kept in metadata.
func (o *Order) MarkFailed(reason string) error {
	if err := o.advance(vo.PaymentStatusFailed); err != nil {
		return err
	}
	o.metadata["failure_reason"] = reason
	return nil
}

// MarkCancelled records terminal cancellation.
func (o *Order) MarkCancelled() error {
	return o.advance(vo.PaymentStatusCancelled)
}

// SetRegistrationPending marks or clears the order for the background
// registration retry sweep.
func (o *Order) SetRegistrationPending(pending bool) {
	if o.registrationPending == pending {
		return
	}
	o.registrationPending = pending
	o.touch()
}

func (o *Order) SetMetadata(key string, value interface{}) {
	if o.metadata == nil {
		o.metadata = make(map[string]interface{})
	}
	if value == nil {
		delete(o.metadata, key)
	} else {
		o.metadata[key] = value
	}
	o.touch()
}

func (o *Order) MetadataValue(key string) (interface{}, bool) {
	v, ok := o.metadata[key]
	return v, ok
}

func (o *Order) touch() {
	o.updatedAt = biztime.NowUTC()
	o.version++
}

func (o *Order) OrderID() string                       { return o.orderID }
func (o *Order) OwnerID() int64                        { return o.ownerID }
func (o *Order) ServiceType() vo.ServiceType           { return o.serviceType }
func (o *Order) RequestedAmountUSD() decimal.Decimal   { return o.requestedAmountUSD }
func (o *Order) CryptoCurrency() string                { return o.cryptoCurrency }
func (o *Order) PaymentAddress() string                { return o.paymentAddress }
func (o *Order) RequiredCryptoAmount() decimal.Decimal { return o.requiredCrypto }
func (o *Order) PaymentStatus() vo.PaymentStatus       { return o.paymentStatus }
func (o *Order) RegistrationPending() bool             { return o.registrationPending }
func (o *Order) ServiceDetails() vo.ServiceDetails     { return o.serviceDetails }
func (o *Order) Metadata() map[string]interface{}      { return o.metadata }
func (o *Order) Version() int                          { return o.version }
func (o *Order) CreatedAt() time.Time                  { return o.createdAt }
func (o *Order) UpdatedAt() time.Time                  { return o.updatedAt }

// ReconstructParams carries persisted state back into an Order.
type ReconstructParams struct {
	OrderID             string
	OwnerID             int64
	ServiceType         vo.ServiceType
	RequestedAmountUSD  decimal.Decimal
	CryptoCurrency      string
	PaymentAddress      string
	RequiredCrypto      decimal.Decimal
	PaymentStatus       vo.PaymentStatus
	RegistrationPending bool
	ServiceDetails      vo.ServiceDetails
	Metadata            map[string]interface{}
	Version             int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Reconstruct rebuilds an Order from persistence without revalidating
// invariants that held at creation time.
func Reconstruct(p ReconstructParams) *Order {
	metadata := p.Metadata
	if metadata == nil {
		metadata = make(map[string]interface{})
	}
	return &Order{
		orderID:             p.OrderID,
		ownerID:             p.OwnerID,
		serviceType:         p.ServiceType,
		requestedAmountUSD:  p.RequestedAmountUSD,
		cryptoCurrency:      p.CryptoCurrency,
		paymentAddress:      p.PaymentAddress,
		requiredCrypto:      p.RequiredCrypto,
		paymentStatus:       p.PaymentStatus,
		registrationPending: p.RegistrationPending,
		serviceDetails:      p.ServiceDetails,
		metadata:            metadata,
		version:             p.Version,
		createdAt:           p.CreatedAt,
		updatedAt:           p.UpdatedAt,
	}
}
