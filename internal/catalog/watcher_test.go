package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helloivanco/fanrc/internal/domain"
	"github.com/helloivanco/fanrc/pkg/logger"
)

type stubLoader struct {
	products []domain.Product
	err      error
	calls    atomic.Int32
}

func (s *stubLoader) Load(context.Context) ([]domain.Product, error) {
	s.calls.Add(1)
	return s.products, s.err
}

func (s *stubLoader) Source() string { return "stub" }

func TestReloader_ReloadNotifiesSubscribers(t *testing.T) {
	store := NewStore()
	r := NewReloader(store, &stubLoader{products: testProducts()}, logger.Discard())

	var got *Snapshot
	r.Subscribe(func(s *Snapshot) { got = s })

	snap, err := r.Reload(context.Background())
	require.NoError(t, err)
	assert.Same(t, snap, got)
	assert.Same(t, snap, store.Current())
}

func TestReloader_LoadErrorKeepsPrevious(t *testing.T) {
	store := NewStore()
	loader := &stubLoader{products: testProducts()}
	r := NewReloader(store, loader, logger.Discard())

	first, err := r.Reload(context.Background())
	require.NoError(t, err)

	loader.err = errors.New("disk on fire")
	_, err = r.Reload(context.Background())
	assert.ErrorContains(t, err, "disk on fire")
	assert.Same(t, first, store.Current())
}

func TestReloader_RunWithoutSourcesReturns(t *testing.T) {
	r := NewReloader(NewStore(), &stubLoader{}, logger.Discard())
	assert.NoError(t, r.Run(context.Background()))
}

func TestReloader_PeriodicRefresh(t *testing.T) {
	loader := &stubLoader{products: testProducts()}
	r := NewReloader(NewStore(), loader, logger.Discard(), WithRefreshInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	assert.Eventually(t, func() bool { return loader.calls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestReloader_FileWatchReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	writeCatalog(t, path, testProducts())

	store := NewStore()
	r := NewReloader(store, NewFileLoader(path), logger.Discard(), WithFileWatch(true))
	r.debounce = 10 * time.Millisecond
	_, err := r.Reload(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, store.Current().Len())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = r.Run(ctx) }()

	// Give the watcher time to register before writing.
	time.Sleep(50 * time.Millisecond)
	writeCatalog(t, path, testProducts()[:2])

	assert.Eventually(t, func() bool { return store.Current().Len() == 2 }, 3*time.Second, 10*time.Millisecond)
}

func TestReloader_FileWatchIgnoresInvalidRewrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	writeCatalog(t, path, testProducts())

	store := NewStore()
	r := NewReloader(store, NewFileLoader(path), logger.Discard(), WithFileWatch(true))
	r.debounce = 10 * time.Millisecond
	first, err := r.Reload(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = r.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))
	time.Sleep(200 * time.Millisecond)

	assert.Same(t, first, store.Current())
}
