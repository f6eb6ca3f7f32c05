package idempotency

import (
	"context"
	"time"
)

// Repository caches the outcome of a request under a client supplied key.
type Repository interface {
	// Get returns the stored payload and whether one existed.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}

type nopRepo struct{}

// NewNop returns a Repository that never remembers anything.
func NewNop() Repository {
	return nopRepo{}
}

func (nopRepo) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (nopRepo) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}
