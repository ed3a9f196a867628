package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Swyp/Swyp-Backend/internal/payment/domain"
	"github.com/Swyp/Swyp-Backend/internal/payment/repository"
	"github.com/patrickmn/go-cache"
)

// Cache is an in-process TTL cache.
type Cache struct {
	c *cache.Cache
}

func NewCache(ttl, cleanup time.Duration) *Cache {
	return &Cache{c: cache.New(ttl, cleanup)}
}

func (cm *Cache) Insert(k string, x interface{}) {
	cm.c.Set(k, x, cache.DefaultExpiration)
}

func (cm *Cache) Get(key string) (interface{}, error) {
	val, found := cm.c.Get(key)
	if found {
		return val, nil
	}

	return nil, fmt.Errorf("value not found")
}

func (cm *Cache) Delete(key string) {
	cm.c.Delete(key)
}

func (cm *Cache) Stop() error {
	cm.c.Flush()
	return nil
}

// MerchantCache serves merchant lookups from memory for a short while.
// Fee, limit and webhook changes take effect once the entry expires.
type MerchantCache struct {
	repo  repository.MerchantRepository
	cache *Cache
}

func NewMerchantCache(repo repository.MerchantRepository, ttl time.Duration) *MerchantCache {
	return &MerchantCache{repo: repo, cache: NewCache(ttl, 2*ttl)}
}

func merchantKey(id int64) string {
	return "merchant:" + strconv.FormatInt(id, 10)
}

func (m *MerchantCache) GetMerchant(ctx context.Context, id int64) (*domain.Merchant, error) {
	if v, err := m.cache.Get(merchantKey(id)); err == nil {
		merchant := *v.(*domain.Merchant)
		return &merchant, nil
	}

	merchant, err := m.repo.GetMerchant(ctx, id)
	if err != nil {
		return nil, err
	}
	stored := *merchant
	m.cache.Insert(merchantKey(id), &stored)
	return merchant, nil
}

func (m *MerchantCache) Invalidate(id int64) {
	m.cache.Delete(merchantKey(id))
}
