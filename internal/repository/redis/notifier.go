package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/helloivanco/fanrc/internal/repository"
	"github.com/helloivanco/fanrc/pkg/database"
)

// Notifier implements repository.ChangeNotifier over Redis pub/sub so that
// watchers in every replica learn about changes made through any replica.
type Notifier struct {
	client *redis.Client
}

// NewNotifier creates a pub/sub change notifier.
func NewNotifier(client *redis.Client) *Notifier {
	return &Notifier{client: client}
}

func channel(session string) string {
	return repository.KeyPrefix + ":changed:" + session
}

// Notify publishes a change signal for session.
func (n *Notifier) Notify(ctx context.Context, session string) (err error) {
	ch := channel(session)
	ctx, end := database.TraceCommand(ctx, "PUBLISH", ch)
	defer func() { end(err) }()

	if err := n.client.Publish(ctx, ch, "changed").Err(); err != nil {
		return fmt.Errorf("redis publish wishlist change: %w", err)
	}
	return nil
}

// Subscribe listens for change signals for session.
func (n *Notifier) Subscribe(ctx context.Context, session string) (<-chan struct{}, func(), error) {
	ps := n.client.Subscribe(ctx, channel(session))
	// Wait for the subscription confirmation so no publish is missed after
	// Subscribe returns.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("redis subscribe wishlist changes: %w", err)
	}

	out := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(ctx)
	msgs := ps.Channel()

	go func() {
		defer close(out)
		defer func() { _ = ps.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()

	return out, cancel, nil
}
