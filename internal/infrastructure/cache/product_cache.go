// Package cache adds an optional redis read-through in front of the product
// catalog. Without a client it degrades to a plain pass-through.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gurungd265/webshop/app/internal/domain/catalog"
)

const defaultTTL = time.Minute

type ProductCache struct {
	next   catalog.Provider
	client *redis.Client
	ttl    time.Duration
}

func NewProductCache(next catalog.Provider) *ProductCache {
	return &ProductCache{next: next, ttl: defaultTTL}
}

// SetRedisClient enables caching. Safe to leave unset.
func (c *ProductCache) SetRedisClient(client *redis.Client) {
	c.client = client
}

func (c *ProductCache) FindProduct(ctx context.Context, id string) (*catalog.Product, error) {
	key := productKey(id)

	if c.client != nil {
		cached, err := c.client.Get(ctx, key).Result()
		if err == nil {
			var p catalog.Product
			if err := json.Unmarshal([]byte(cached), &p); err == nil {
				return &p, nil
			}
		}
	}

	p, err := c.next.FindProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if c.client != nil {
		if data, err := json.Marshal(p); err == nil {
			c.client.Set(ctx, key, data, c.ttl)
		}
	}
	return p, nil
}

// AdjustStock writes through and drops the cached entry so the next read
// sees the new stock counter.
func (c *ProductCache) AdjustStock(ctx context.Context, id string, delta int) error {
	if err := c.next.AdjustStock(ctx, id, delta); err != nil {
		return err
	}
	if c.client != nil {
		c.client.Del(ctx, productKey(id))
	}
	return nil
}

func productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}
