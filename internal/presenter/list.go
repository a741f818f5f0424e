package presenter

import (
	"context"
	"sync"
)

type State int

const (
	Loading State = iota
	Empty
	Populated
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Empty:
		return "empty"
	case Populated:
		return "populated"
	default:
		return "unknown"
	}
}

type Fetch[T any] func(ctx context.Context) ([]T, error)

// List is the state of a list page. A failed load leaves the previous items
// in place; only the newest load may change them.
type List[T any] struct {
	fetch  Fetch[T]
	notify func(error)

	mu      sync.Mutex
	items   []T
	loaded  bool
	loading bool
	lastErr error
	seq     uint64
}

// NewList builds a list page over fetch. notify, when set, is called once for
// every failed load.
func NewList[T any](fetch Fetch[T], notify func(error)) *List[T] {
	return &List[T]{fetch: fetch, notify: notify}
}

func (l *List[T]) Load(ctx context.Context) error {
	l.mu.Lock()
	l.seq++
	seq := l.seq
	l.loading = true
	l.mu.Unlock()

	items, err := l.fetch(ctx)

	l.mu.Lock()
	if seq != l.seq {
		l.mu.Unlock()
		return err
	}
	l.loading = false
	l.lastErr = err
	if err == nil {
		l.items = items
		l.loaded = true
	}
	l.mu.Unlock()

	if err != nil && ctx.Err() == nil && l.notify != nil {
		l.notify(err)
	}
	return err
}

func (l *List[T]) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch {
	case len(l.items) > 0:
		return Populated
	case l.loading || (!l.loaded && l.lastErr == nil):
		return Loading
	default:
		return Empty
	}
}

// Items returns a copy of the last successfully loaded items.
func (l *List[T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

func (l *List[T]) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}
