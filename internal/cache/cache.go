package cache

import (
	"context"
	"time"
)

// BytesCache — минимальный контракт байтового кэша (redis либо фейк в тестах).
type BytesCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
