package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bagerileve/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockStore struct {
	products map[string]domain.Product
	calls    atomic.Int32
	delay    time.Duration
}

func (m *mockStore) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	m.calls.Add(1)
	time.Sleep(m.delay)
	p, ok := m.products[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrProductNotFound)
	}
	return &p, nil
}

type mockCache struct {
	mu     sync.Mutex
	items  map[string]domain.Product
	getErr error
}

func newMockCache() *mockCache {
	return &mockCache{items: map[string]domain.Product{}}
}

func (m *mockCache) Get(_ context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.items[id]
	if !ok {
		return nil, ErrCacheMiss
	}
	return &p, nil
}

func (m *mockCache) Set(_ context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[product.ID] = *product
	return nil
}

func (m *mockCache) has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[id]
	return ok
}

func testStore() *mockStore {
	return &mockStore{products: map[string]domain.Product{
		"surdegsbrod": {ID: "surdegsbrod", Title: "Surdegsbröd"},
	}}
}

func TestCachedCatalog_MissFillsCache(t *testing.T) {
	store := testStore()
	cache := newMockCache()
	c := NewCachedCatalog(store, cache, zap.NewNop())

	p, err := c.GetProduct(context.Background(), "surdegsbrod")

	require.NoError(t, err)
	assert.Equal(t, "Surdegsbröd", p.Title)
	assert.Eventually(t, func() bool { return cache.has("surdegsbrod") }, time.Second, 10*time.Millisecond)

	_, err = c.GetProduct(context.Background(), "surdegsbrod")
	require.NoError(t, err)
	assert.Equal(t, int32(1), store.calls.Load())
}

func TestCachedCatalog_NotFoundIsNotCached(t *testing.T) {
	store := testStore()
	cache := newMockCache()
	c := NewCachedCatalog(store, cache, zap.NewNop())

	_, err := c.GetProduct(context.Background(), "kanelbulle")

	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.False(t, cache.has("kanelbulle"))
}

func TestCachedCatalog_CacheErrorFallsBackToStore(t *testing.T) {
	store := testStore()
	cache := newMockCache()
	cache.getErr = errors.New("redis down")
	c := NewCachedCatalog(store, cache, zap.NewNop())

	p, err := c.GetProduct(context.Background(), "surdegsbrod")

	require.NoError(t, err)
	assert.Equal(t, "surdegsbrod", p.ID)
}

func TestCachedCatalog_ConcurrentMissesShareOneQuery(t *testing.T) {
	store := testStore()
	store.delay = 50 * time.Millisecond
	c := NewCachedCatalog(store, newMockCache(), zap.NewNop())

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.GetProduct(context.Background(), "surdegsbrod")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Less(t, store.calls.Load(), int32(10))
}

func TestCachedCatalog_ReturnsCopies(t *testing.T) {
	c := NewCachedCatalog(testStore(), newMockCache(), zap.NewNop())

	first, err := c.GetProduct(context.Background(), "surdegsbrod")
	require.NoError(t, err)
	first.Title = "changed"

	second, err := c.GetProduct(context.Background(), "surdegsbrod")
	require.NoError(t, err)
	assert.Equal(t, "Surdegsbröd", second.Title)
}

// blockingStore holds every lookup until release is closed or the lookup's
// ctx is done.
type blockingStore struct {
	product domain.Product
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingStore(p domain.Product) *blockingStore {
	return &blockingStore{product: p, started: make(chan struct{}), release: make(chan struct{})}
}

func (s *blockingStore) GetProduct(ctx context.Context, _ string) (*domain.Product, error) {
	s.once.Do(func() { close(s.started) })
	select {
	case <-s.release:
		p := s.product
		return &p, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestCachedCatalog_CancelledCallerDoesNotFailOthers(t *testing.T) {
	store := newBlockingStore(domain.Product{ID: "surdegsbrod", Title: "Surdegsbröd"})
	c := NewCachedCatalog(store, newMockCache(), zap.NewNop())

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := c.GetProduct(ctxA, "surdegsbrod")
		errA <- err
	}()
	<-store.started

	type result struct {
		product *domain.Product
		err     error
	}
	resB := make(chan result, 1)
	go func() {
		p, err := c.GetProduct(context.Background(), "surdegsbrod")
		resB <- result{p, err}
	}()

	cancelA()
	select {
	case err := <-errA:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting")
	}

	// Give a lookup bound to A's ctx time to fail before releasing.
	time.Sleep(20 * time.Millisecond)
	close(store.release)

	select {
	case res := <-resB:
		require.NoError(t, res.err)
		assert.Equal(t, "Surdegsbröd", res.product.Title)
	case <-time.After(time.Second):
		t.Fatal("live caller got no answer")
	}
}

func TestCachedCatalog_CopiesAreDeep(t *testing.T) {
	limit := 4
	store := &mockStore{products: map[string]domain.Product{
		"prinsesstarta": {
			ID:                  "prinsesstarta",
			Title:               "Prinsesstårta",
			Variants:            []domain.Variant{{ID: "6-bitar", Price: 350}},
			MaxQuantityPerOrder: &limit,
			PickupDates:         []string{"2025-10-24"},
		},
	}}
	c := NewCachedCatalog(store, newMockCache(), zap.NewNop())

	first, err := c.GetProduct(context.Background(), "prinsesstarta")
	require.NoError(t, err)
	first.Variants[0].Price = 1
	first.PickupDates[0] = "2030-01-01"
	*first.MaxQuantityPerOrder = 0

	second, err := c.GetProduct(context.Background(), "prinsesstarta")
	require.NoError(t, err)
	assert.Equal(t, 350.0, second.Variants[0].Price)
	assert.Equal(t, []string{"2025-10-24"}, second.PickupDates)
	assert.Equal(t, 4, *second.MaxQuantityPerOrder)
}
