package usecases

import "context"

// ContactCache is a fast lookaside for registrar contact handles, keyed by
// owner. The contact repository remains the source of truth; cache failures
// are never fatal.
type ContactCache interface {
	GetHandle(ctx context.Context, ownerID int64) (string, error)
	SetHandle(ctx context.Context, ownerID int64, handle string) error
}
