package kvstore

import "context"

// Store is the persistent string key-value contract shared by the dashboard
// and auth engines. Values are JSON documents serialized by callers; the
// store never inspects them.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	MultiRemove(ctx context.Context, keys []string) error
	Keys(ctx context.Context) ([]string, error)
}
