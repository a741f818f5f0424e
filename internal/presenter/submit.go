package presenter

import (
	"context"
	"errors"
	"sync"
)

var ErrPending = errors.New("action is pending")

// Submitter keeps an action button disabled while its request runs.
type Submitter struct {
	mu      sync.Mutex
	pending map[string]bool
}

func NewSubmitter() *Submitter {
	return &Submitter{pending: make(map[string]bool)}
}

func (s *Submitter) Disabled(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending[key]
}

// Submit runs fn unless an action with the same key is still pending.
func (s *Submitter) Submit(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	if s.pending[key] {
		s.mu.Unlock()
		return ErrPending
	}
	s.pending[key] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.pending, key)
		s.mu.Unlock()
	}()
	return fn(ctx)
}
