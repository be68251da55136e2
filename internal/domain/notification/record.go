package notification

import (
	"fmt"
	"time"

	"nomadly/internal/shared/biztime"
)

// Channel identifies a delivery channel.
type Channel string

const (
	ChannelChat  Channel = "chat"
	ChannelEmail Channel = "email"
)

func (c Channel) IsValid() bool {
	return c == ChannelChat || c == ChannelEmail
}

func (c Channel) String() string { return string(c) }

// DeliveryStatus tracks the state of one delivery attempt sequence.
type DeliveryStatus string

const (
	DeliveryStatusSent    DeliveryStatus = "sent"
	DeliveryStatusFailed  DeliveryStatus = "failed"
	DeliveryStatusRetried DeliveryStatus = "retried"
)

// Record tracks delivery attempts for one order, channel and outcome kind.
// It exists so repeated pipeline runs do not spam the user with duplicate
// terminal-success notifications while still supporting at-least-once
// delivery of pending and failure notices.
type Record struct {
	id       uint
	orderID  string
	ownerID  int64
	channel  Channel
	kind     string
	status   DeliveryStatus
	attempts int
	lastErr  string

	createdAt time.Time
	updatedAt time.Time
}

func NewRecord(orderID string, ownerID int64, channel Channel, kind string) (*Record, error) {
	if orderID == "" {
		return nil, fmt.Errorf("order ID is required")
	}
	if !channel.IsValid() {
		return nil, fmt.Errorf("invalid channel %q", channel)
	}
	if kind == "" {
		return nil, fmt.Errorf("outcome kind is required")
	}
	now := biztime.NowUTC()
	return &Record{
		orderID:   orderID,
		ownerID:   ownerID,
		channel:   channel,
		kind:      kind,
		status:    DeliveryStatusFailed,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// RecordAttempt logs one delivery attempt and its result.
func (r *Record) RecordAttempt(err error) {
	r.attempts++
	if err != nil {
		r.lastErr = err.Error()
		if r.attempts > 1 {
			r.status = DeliveryStatusRetried
		} else {
			r.status = DeliveryStatusFailed
		}
	} else {
		r.lastErr = ""
		r.status = DeliveryStatusSent
	}
	r.updatedAt = biztime.NowUTC()
}

func (r *Record) SetID(id uint) { r.id = id }

func (r *Record) ID() uint               { return r.id }
func (r *Record) OrderID() string        { return r.orderID }
func (r *Record) OwnerID() int64         { return r.ownerID }
func (r *Record) Channel() Channel       { return r.channel }
func (r *Record) Kind() string           { return r.kind }
func (r *Record) Status() DeliveryStatus { return r.status }
func (r *Record) Attempts() int          { return r.attempts }
func (r *Record) LastError() string      { return r.lastErr }
func (r *Record) CreatedAt() time.Time   { return r.createdAt }
func (r *Record) UpdatedAt() time.Time   { return r.updatedAt }

// ReconstructParams carries persisted state back into a Record.
type ReconstructParams struct {
	ID        uint
	OrderID   string
	OwnerID   int64
	Channel   Channel
	Kind      string
	Status    DeliveryStatus
	Attempts  int
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func Reconstruct(p ReconstructParams) *Record {
	return &Record{
		id:        p.ID,
		orderID:   p.OrderID,
		ownerID:   p.OwnerID,
		channel:   p.Channel,
		kind:      p.Kind,
		status:    p.Status,
		attempts:  p.Attempts,
		lastErr:   p.LastError,
		createdAt: p.CreatedAt,
		updatedAt: p.UpdatedAt,
	}
}
