package metadata

import (
	"context"
)

// Repository holds the persisted session keys. Get returns (nil, nil) for
// an absent key; deleting an absent key is not an error.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}
