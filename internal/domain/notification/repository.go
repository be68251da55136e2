package notification

import "context"

type RecordRepository interface {
	Save(ctx context.Context, record *Record) error

	// GetByOrderChannelKind returns the existing record for the tuple, or a
	// not-found error. Used to skip re-sending an already-delivered
	// terminal notification.
	GetByOrderChannelKind(ctx context.Context, orderID string, channel Channel, kind string) (*Record, error)

	ListByOrder(ctx context.Context, orderID string) ([]*Record, error)
}
