package cache

import (
	"context"
	"time"
)

// ReceiptCache holds rendered receipt PDFs so re-prints from history skip
// the rendering pass. A miss is never an error.
type ReceiptCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type NoopReceiptCache struct{}

func (NoopReceiptCache) Get(_ context.Context, _ string) ([]byte, bool, error) {
	return nil, false, nil
}

func (NoopReceiptCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return nil
}
