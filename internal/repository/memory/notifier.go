package memory

import (
	"context"
	"sync"
)

// Notifier implements repository.ChangeNotifier within a single process.
type Notifier struct {
	mu   sync.Mutex
	subs map[string]map[chan struct{}]struct{}
}

// NewNotifier creates an in-process change notifier.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[string]map[chan struct{}]struct{})}
}

// Notify wakes every subscriber of session. Slow subscribers coalesce signals.
func (n *Notifier) Notify(_ context.Context, session string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for ch := range n.subs[session] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}

// Subscribe registers a subscriber for session.
func (n *Notifier) Subscribe(ctx context.Context, session string) (<-chan struct{}, func(), error) {
	ch := make(chan struct{}, 1)

	n.mu.Lock()
	if n.subs[session] == nil {
		n.subs[session] = make(map[chan struct{}]struct{})
	}
	n.subs[session][ch] = struct{}{}
	n.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		<-ctx.Done()
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs[session], ch)
		if len(n.subs[session]) == 0 {
			delete(n.subs, session)
		}
		close(ch)
	}()

	return ch, cancel, nil
}
