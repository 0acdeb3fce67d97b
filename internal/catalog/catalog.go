// Package catalog читает товары и категории через кэш.
package catalog

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/iurnickita/bakery/internal/cache"
	"github.com/iurnickita/bakery/internal/model"
)

// Source: часть клиента бэкенда, отвечающая за каталог.
type Source interface {
	ListProducts(ctx context.Context, category string) ([]model.Product, error)
	GetProduct(ctx context.Context, productID string) (model.Product, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
}

type Catalog interface {
	Products(ctx context.Context, category string) ([]model.Product, error)
	Product(ctx context.Context, productID string) (model.Product, error)
	Categories(ctx context.Context) ([]model.Category, error)
	// Invalidate сбрасывает закэшированный каталог после изменений в админке
	Invalidate(ctx context.Context)
}

type catalog struct {
	source Source
	cache  cache.Cache
	ttl    time.Duration
	zaplog *zap.Logger
}

func NewCatalog(source Source, cache cache.Cache, ttl time.Duration, zaplog *zap.Logger) Catalog {
	return &catalog{
		source: source,
		cache:  cache,
		ttl:    ttl,
		zaplog: zaplog,
	}
}

func (c *catalog) Products(ctx context.Context, category string) ([]model.Product, error) {
	var products []model.Product
	err := c.cached(ctx, "products", category, &products, func() (any, error) {
		return c.source.ListProducts(ctx, category)
	})
	return products, err
}

func (c *catalog) Product(ctx context.Context, productID string) (model.Product, error) {
	var product model.Product
	err := c.cached(ctx, "product", productID, &product, func() (any, error) {
		return c.source.GetProduct(ctx, productID)
	})
	return product, err
}

func (c *catalog) Categories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := c.cached(ctx, "categories", "all", &categories, func() (any, error) {
		return c.source.ListCategories(ctx)
	})
	return categories, err
}

// Ключи содержат версию каталога: смена версии делает старые записи недостижимыми,
// а истекают они сами по TTL.
func (c *catalog) Invalidate(ctx context.Context) {
	if c.cache == nil {
		return
	}
	version := strconv.FormatInt(time.Now().UnixNano(), 36)
	if err := c.cache.Set(ctx, c.cache.GenerateKey("catalog", "version"), []byte(version), 0); err != nil {
		c.zaplog.Warn("catalog invalidation failed", zap.Error(err))
	}
}

func (c *catalog) version(ctx context.Context) (string, error) {
	version, err := c.cache.Get(ctx, c.cache.GenerateKey("catalog", "version"))
	if err != nil {
		return "", err
	}
	if version == nil {
		return "0", nil
	}
	return string(version), nil
}

// cached отдаёт значение из кэша в dst или берёт его из load и кладёт в кэш.
// Ошибки кэша не мешают чтению из бэкенда.
func (c *catalog) cached(ctx context.Context, operation, key string, dst any, load func() (any, error)) error {
	var cacheKey string
	if c.cache != nil {
		version, err := c.version(ctx)
		if err == nil {
			cacheKey = c.cache.GenerateKey(operation, version+":"+key)
			data, err := c.cache.Get(ctx, cacheKey)
			if err == nil && data != nil && json.Unmarshal(data, dst) == nil {
				return nil
			}
			if err != nil {
				c.zaplog.Warn("catalog cache read failed", zap.String("key", cacheKey), zap.Error(err))
			}
		} else {
			c.zaplog.Warn("catalog cache unavailable", zap.Error(err))
		}
	}

	value, err := load()
	if err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return err
	}

	if cacheKey != "" {
		if err := c.cache.Set(ctx, cacheKey, data, c.ttl); err != nil {
			c.zaplog.Warn("catalog cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return nil
}
