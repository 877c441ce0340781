package main

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type locker interface {
	SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	DeleteIfValue(ctx context.Context, key, value string) (bool, error)
}

// acquireRunLock takes key for owner. When the lock store fails the run goes
// ahead unlocked. The returned release only deletes a lock this run still holds.
func acquireRunLock(ctx context.Context, l locker, key, owner string, ttl time.Duration, log *zap.Logger) (release func(), ok bool) {
	noop := func() {}

	acquired, err := l.SetIfNotExists(ctx, key, owner, ttl)
	if err != nil {
		log.Warn("expire lock unavailable, running without it", zap.Error(err))
		return noop, true
	}
	if !acquired {
		return noop, false
	}

	return func() {
		released, err := l.DeleteIfValue(context.Background(), key, owner)
		switch {
		case err != nil:
			log.Warn("release expire lock", zap.Error(err))
		case !released:
			log.Warn("expire lock expired before the run finished", zap.Duration("ttl", ttl))
		}
	}, true
}
