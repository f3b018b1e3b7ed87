// Package exiter cancels a scrape run once every seeded candidate has
// completed, so the process does not idle waiting for inactivity
// timeouts.
package exiter

import (
	"context"
	"sync"
	"time"
)

type Exiter interface {
	SetCandidateCount(int)
	SetCancelFunc(context.CancelFunc)
	IncrCandidatesFound(int)
	IncrCandidatesCompleted(int)
	Run(context.Context)
}

func New() Exiter {
	return &exiter{}
}

type exiter struct {
	mu sync.Mutex

	candidateCount      int
	candidatesFound     int
	candidatesCompleted int

	cancel context.CancelFunc
}

func (e *exiter) SetCandidateCount(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.candidateCount = n
}

func (e *exiter) SetCancelFunc(cancel context.CancelFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancel = cancel
}

func (e *exiter) IncrCandidatesFound(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.candidatesFound += n
}

func (e *exiter) IncrCandidatesCompleted(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.candidatesCompleted += n
}

func (e *exiter) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if e.isDone() {
				e.mu.Lock()
				cancel := e.cancel
				e.mu.Unlock()

				if cancel != nil {
					cancel()
				}

				return
			}
		}
	}
}

func (e *exiter) isDone() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.candidateCount == 0 {
		return false
	}

	return e.candidatesCompleted >= e.candidateCount
}
