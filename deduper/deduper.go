// Package deduper prevents seeding the same candidate URL twice within
// a run.
package deduper

import (
	"context"
	"sync"
)

type Deduper interface {
	// AddIfNotExists returns true when the key was not seen before.
	AddIfNotExists(context.Context, string) bool
}

func New() Deduper {
	return &deduper{
		seen: make(map[string]struct{}),
	}
}

type deduper struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func (d *deduper) AddIfNotExists(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return false
	}

	d.seen[key] = struct{}{}

	return true
}
