package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_DeliversToSubscriber(t *testing.T) {
	client, _ := setupTestRedis(t)
	n := NewNotifier(client)
	ctx := context.Background()

	changes, cancel, err := n.Subscribe(ctx, "s1")
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, n.Notify(ctx, "s1"))

	select {
	case <-changes:
	case <-time.After(2 * time.Second):
		t.Fatal("no change signal received")
	}
}

func TestNotifier_OtherSessionNotDelivered(t *testing.T) {
	client, _ := setupTestRedis(t)
	n := NewNotifier(client)
	ctx := context.Background()

	changes, cancel, err := n.Subscribe(ctx, "s1")
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, n.Notify(ctx, "s2"))

	select {
	case <-changes:
		t.Fatal("unexpected change signal")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestNotifier_CancelClosesChannel(t *testing.T) {
	client, _ := setupTestRedis(t)
	n := NewNotifier(client)

	changes, cancel, err := n.Subscribe(context.Background(), "s1")
	require.NoError(t, err)
	cancel()

	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-changes:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 5*time.Millisecond)
}
