package ports

import (
	"context"
	"time"

	"github.com/bnema/orca/internal/domain"
)

// HostEngine is the isolation engine that runs tenant hosts.
type HostEngine interface {
	Create(ctx context.Context, spec domain.HostSpec) (string, error)
	Inspect(ctx context.Context, id string) (domain.HostState, error)
	Remove(ctx context.Context, id string) error
	RemoveByName(ctx context.Context, name string) error
	List(ctx context.Context) ([]domain.HostState, error)
}

type HostCache interface {
	Get(ctx context.Context, tenant domain.TenantID) (domain.HostCacheEntry, bool, error)
	Put(ctx context.Context, entry domain.HostCacheEntry, idle time.Duration) error
	Evict(ctx context.Context, tenant domain.TenantID) error
	List(ctx context.Context) ([]domain.HostCacheEntry, error)
}
