package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	regusecases "nomadly/internal/application/registration/usecases"
)

const (
	contactHandlePrefix = "registrar:contact:"
	contactHandleTTL    = 30 * 24 * time.Hour
)

// ContactHandleStore is the Redis lookaside for registrar contact handles.
// The contact repository in the database remains the source of truth; a
// cache miss just costs one extra query.
type ContactHandleStore struct {
	client *redis.Client
}

var _ regusecases.ContactCache = (*ContactHandleStore)(nil)

func NewContactHandleStore(client *redis.Client) *ContactHandleStore {
	return &ContactHandleStore{client: client}
}

func (s *ContactHandleStore) GetHandle(ctx context.Context, ownerID int64) (string, error) {
	handle, err := s.client.Get(ctx, contactHandlePrefix+strconv.FormatInt(ownerID, 10)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read contact handle: %w", err)
	}
	return handle, nil
}

func (s *ContactHandleStore) SetHandle(ctx context.Context, ownerID int64, handle string) error {
	key := contactHandlePrefix + strconv.FormatInt(ownerID, 10)
	if err := s.client.Set(ctx, key, handle, contactHandleTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache contact handle: %w", err)
	}
	return nil
}
