package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bnema/orca/internal/domain"
	"github.com/bnema/orca/internal/ports"
	goredis "github.com/redis/go-redis/v9"
)

const (
	tenantKeyPrefix = "user:"
	tenantKeySuffix = ":container"
	scanBatch       = 100
)

// Cache keeps the tenant to host mapping in Redis. The mapping itself does not
// expire; the last-used marker expires after the idle timeout, so an absent
// marker means the host is idle.
type Cache struct {
	client goredis.Cmdable
}

var _ ports.HostCache = (*Cache)(nil)

func NewCache(client goredis.Cmdable) (*Cache, error) {
	if client == nil {
		return nil, errors.New("redis client is nil")
	}
	return &Cache{client: client}, nil
}

func (c *Cache) Get(ctx context.Context, tenant domain.TenantID) (domain.HostCacheEntry, bool, error) {
	hostID, err := c.client.Get(ctx, tenantKey(tenant)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return domain.HostCacheEntry{}, false, nil
		}
		return domain.HostCacheEntry{}, false, fmt.Errorf("get host mapping: %w", err)
	}

	lastUsed, err := c.lastUsed(ctx, hostID)
	if err != nil {
		return domain.HostCacheEntry{}, false, err
	}

	return domain.HostCacheEntry{TenantID: tenant, HostID: hostID, LastUsed: lastUsed}, true, nil
}

func (c *Cache) Put(ctx context.Context, entry domain.HostCacheEntry, idle time.Duration) error {
	_, err := c.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, tenantKey(entry.TenantID), entry.HostID, 0)
		pipe.Set(ctx, lastUsedKey(entry.HostID), entry.LastUsed.UTC().Format(time.RFC3339Nano), idle)
		return nil
	})
	if err != nil {
		return fmt.Errorf("put host mapping: %w", err)
	}
	return nil
}

func (c *Cache) Evict(ctx context.Context, tenant domain.TenantID) error {
	hostID, err := c.client.Get(ctx, tenantKey(tenant)).Result()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return fmt.Errorf("get host mapping: %w", err)
	}

	keys := []string{tenantKey(tenant)}
	if hostID != "" {
		keys = append(keys, lastUsedKey(hostID))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("evict host mapping: %w", err)
	}
	return nil
}

func (c *Cache) List(ctx context.Context) ([]domain.HostCacheEntry, error) {
	var entries []domain.HostCacheEntry

	iter := c.client.Scan(ctx, 0, tenantKeyPrefix+"*"+tenantKeySuffix, scanBatch).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		tenant := domain.TenantID(strings.TrimSuffix(strings.TrimPrefix(key, tenantKeyPrefix), tenantKeySuffix))

		entry, ok, err := c.Get(ctx, tenant)
		if err != nil {
			return nil, err
		}
		if ok {
			entries = append(entries, entry)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan host mappings: %w", err)
	}

	return entries, nil
}

func (c *Cache) lastUsed(ctx context.Context, hostID string) (time.Time, error) {
	raw, err := c.client.Get(ctx, lastUsedKey(hostID)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("get host last used: %w", err)
	}

	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, nil
	}
	return parsed, nil
}

func tenantKey(tenant domain.TenantID) string {
	return tenantKeyPrefix + string(tenant) + tenantKeySuffix
}

func lastUsedKey(hostID string) string {
	return "container:" + hostID + ":last_used"
}
