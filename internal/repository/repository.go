package repository

import (
	"context"

	"github.com/helloivanco/fanrc/internal/domain"
)

// KeyPrefix namespaces wishlist blobs; the full key is KeyPrefix + session.
const KeyPrefix = "fanrc_wishlist"

// WishlistRepository persists one wishlist blob per session.
type WishlistRepository interface {
	// Load returns the stored wishlist. A session without a blob yields an
	// empty wishlist and no error; unreadable or corrupt blobs yield an error.
	Load(ctx context.Context, session string) (domain.Wishlist, error)

	// Save overwrites the session's blob with w.
	Save(ctx context.Context, session string, w domain.Wishlist) error

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}

// ChangeNotifier fans out "this session's wishlist changed" signals to
// watchers, possibly across processes.
type ChangeNotifier interface {
	// Notify signals a change for session.
	Notify(ctx context.Context, session string) error

	// Subscribe returns a channel that receives a value after each change of
	// session. The channel is closed once cancel is called or ctx ends.
	Subscribe(ctx context.Context, session string) (changes <-chan struct{}, cancel func(), err error)
}
