package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/xenopets/backend/internal/domain/model"
)

const catalogPrefix = "catalog:shop_items:"

// CatalogCache keeps per-shop listing pages in redis so browsing does not
// hit the record store on every request.
type CatalogCache struct {
	client *goredis.Client
}

func NewCatalogCache(client *goredis.Client) *CatalogCache {
	return &CatalogCache{client: client}
}

func (c *CatalogCache) GetShopItems(ctx context.Context, shopID uuid.UUID) ([]model.ShopItem, bool, error) {
	if c.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}

	raw, err := c.client.Get(ctx, catalogKey(shopID)).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached shop items: %w", err)
	}

	var listings []model.ShopItem
	if err := json.Unmarshal(raw, &listings); err != nil {
		return nil, false, fmt.Errorf("decode cached shop items: %w", err)
	}
	return listings, true, nil
}

func (c *CatalogCache) SetShopItems(ctx context.Context, shopID uuid.UUID, listings []model.ShopItem, ttl time.Duration) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if ttl <= 0 {
		return fmt.Errorf("cache ttl must be positive")
	}

	raw, err := json.Marshal(listings)
	if err != nil {
		return fmt.Errorf("encode shop items for cache: %w", err)
	}
	if err := c.client.Set(ctx, catalogKey(shopID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("set cached shop items: %w", err)
	}
	return nil
}

// InvalidateShopItems drops the cached page after an admin catalog write.
func (c *CatalogCache) InvalidateShopItems(ctx context.Context, shopID uuid.UUID) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := c.client.Del(ctx, catalogKey(shopID)).Err(); err != nil {
		return fmt.Errorf("invalidate cached shop items: %w", err)
	}
	return nil
}

func catalogKey(shopID uuid.UUID) string {
	return catalogPrefix + shopID.String()
}
