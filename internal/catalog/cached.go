package catalog

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/bagerileve/storefront/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type Store interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

// CachedCatalog reads products through the cache. Concurrent misses for the
// same product share one store query.
type CachedCatalog struct {
	store  Store
	cache  ProductCache
	sfg    singleflight.Group
	logger *zap.Logger
}

func NewCachedCatalog(store Store, cache ProductCache, logger *zap.Logger) *CachedCatalog {
	return &CachedCatalog{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// lookupTimeout bounds a shared lookup once it no longer follows any single
// caller's context.
const lookupTimeout = 5 * time.Second

// GetProduct returns a copy of the product that the caller owns. The shared
// lookup outlives any one caller; each caller stops waiting when its own ctx
// is done.
func (c *CachedCatalog) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	ch := c.sfg.DoChan(id, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()
		return c.load(ctx, id)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return cloneProduct(res.Val.(*domain.Product)), nil
	}
}

func (c *CachedCatalog) load(ctx context.Context, id string) (*domain.Product, error) {
	product, err := c.cache.Get(ctx, id)
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		c.logger.Warn("cache get failed", zap.String("product_id", id), zap.Error(err))
	}

	product, err = c.store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	fill := cloneProduct(product)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := c.cache.Set(ctx, fill); err != nil {
			c.logger.Warn("cache set failed", zap.String("product_id", id), zap.Error(err))
		}
	}()

	return product, nil
}

func cloneProduct(p *domain.Product) *domain.Product {
	out := *p
	out.Variants = slices.Clone(p.Variants)
	out.PickupDates = slices.Clone(p.PickupDates)
	if p.MaxQuantityPerOrder != nil {
		maxQty := *p.MaxQuantityPerOrder
		out.MaxQuantityPerOrder = &maxQty
	}
	return &out
}
