// Package lock provides named, expiring mutual exclusion.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrHeld = errors.New("lock already held")

// Locker takes a named lock for at most ttl. The returned func releases it.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}

// Local is an in-process Locker for single-instance deployments and tests.
type Local struct {
	mu      sync.Mutex
	holders map[string]localHolder
	seq     uint64
	now     func() time.Time
}

type localHolder struct {
	seq     uint64
	expires time.Time
}

func NewLocal() *Local {
	return &Local{holders: make(map[string]localHolder), now: time.Now}
}

func (l *Local) Acquire(_ context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if h, ok := l.holders[key]; ok && now.Before(h.expires) {
		return nil, ErrHeld
	}
	l.seq++
	seq := l.seq
	l.holders[key] = localHolder{seq: seq, expires: now.Add(ttl)}

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if h, ok := l.holders[key]; ok && h.seq == seq {
			delete(l.holders, key)
		}
		return nil
	}, nil
}
