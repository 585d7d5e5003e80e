package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock taken by DistributedLocker.Lock. It is called
// with a context that outlives request cancellation, so a preview session is
// not left locked because its HTTP client went away.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes transitions of one preview session across
// replicas of the HTTP or MCP host. session.Manager takes the lock around
// every load, save and update, keyed by session ID.
type DistributedLocker interface {
	// Lock blocks until the session is free or ctx is done. ttl bounds how
	// long the lock survives a replica that dies while holding it.
	Lock(ctx context.Context, sessionID string, ttl time.Duration) (UnlockFunc, error)
}

// LockerFunc adapts a plain function to DistributedLocker.
type LockerFunc func(ctx context.Context, sessionID string, ttl time.Duration) (UnlockFunc, error)

// Lock calls f.
func (f LockerFunc) Lock(ctx context.Context, sessionID string, ttl time.Duration) (UnlockFunc, error) {
	return f(ctx, sessionID, ttl)
}
