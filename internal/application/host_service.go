package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bnema/orca/internal/domain"
	"github.com/bnema/orca/internal/logging"
	"github.com/bnema/orca/internal/ports"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	hostDataMount   = "/data"
	hostKernelMount = "/app/kernel"
	workspaceMode   = 0o755
	removeTimeout   = 10 * time.Second

	// creationSlack covers the engine calls around the readiness wait.
	creationSlack = 30 * time.Second

	defaultIdleTimeout  = 30 * time.Minute
	defaultReadyPoll    = 500 * time.Millisecond
	defaultReadyTimeout = 30 * time.Second
)

type HostServiceConfig struct {
	WorkspaceRoot string
	Image         string
	MemoryBytes   int64
	NanoCPUs      int64
	IdleTimeout   time.Duration
	ReadyPoll     time.Duration
	ReadyTimeout  time.Duration
}

// HostService keeps one running isolated host per tenant.
type HostService struct {
	cfg    HostServiceConfig
	engine ports.HostEngine
	cache  ports.HostCache
	loader ports.ConnectionLoader
	clock  ports.Clock
	logger *zap.Logger

	group singleflight.Group

	mu        sync.Mutex
	tenants   map[domain.TenantID]*sync.Mutex
	inflight  map[domain.TenantID]int
	onRemoved []func(hostID string)
}

func NewHostService(cfg HostServiceConfig, engine ports.HostEngine, cache ports.HostCache, loader ports.ConnectionLoader, clock ports.Clock, logger *zap.Logger) *HostService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = defaultIdleTimeout
	}
	if cfg.ReadyPoll <= 0 {
		cfg.ReadyPoll = defaultReadyPoll
	}
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = defaultReadyTimeout
	}

	return &HostService{
		cfg:      cfg,
		engine:   engine,
		cache:    cache,
		loader:   loader,
		clock:    clock,
		logger:   logging.OrNop(logger).Named("hosts"),
		tenants:  map[domain.TenantID]*sync.Mutex{},
		inflight: map[domain.TenantID]int{},
	}
}

// OnHostRemoved registers fn to run after a host is removed or replaced.
func (s *HostService) OnHostRemoved(fn func(hostID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRemoved = append(s.onRemoved, fn)
}

// GetOrCreateHost returns the tenant's running host, creating it when the
// cached one is gone or stopped. Concurrent calls for one tenant share a
// single lookup or creation.
func (s *HostService) GetOrCreateHost(ctx context.Context, tenant domain.TenantID) (domain.Host, error) {
	if err := ctx.Err(); err != nil {
		return domain.Host{}, err
	}
	if err := tenant.Validate(); err != nil {
		return domain.Host{}, err
	}

	// The shared call is detached from whichever caller started it.
	ch := s.group.DoChan(string(tenant), func() (any, error) {
		createCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ReadyTimeout+creationSlack)
		defer cancel()

		lock := s.tenantLock(tenant)
		lock.Lock()
		defer lock.Unlock()
		return s.getOrCreate(createCtx, tenant)
	})

	select {
	case <-ctx.Done():
		return domain.Host{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.Host{}, res.Err
		}
		return res.Val.(domain.Host), nil
	}
}

// AcquireHost is GetOrCreateHost plus an in-flight mark that keeps the host
// safe from the idle sweep until release is called.
func (s *HostService) AcquireHost(ctx context.Context, tenant domain.TenantID) (domain.Host, func(), error) {
	s.mu.Lock()
	s.inflight[tenant]++
	s.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.inflight[tenant]--
			if s.inflight[tenant] <= 0 {
				delete(s.inflight, tenant)
			}
		})
	}

	host, err := s.GetOrCreateHost(ctx, tenant)
	if err != nil {
		release()
		return domain.Host{}, nil, err
	}
	return host, release, nil
}

func (s *HostService) getOrCreate(ctx context.Context, tenant domain.TenantID) (domain.Host, error) {
	logger := s.logger.With(zap.String("tenant_id", string(tenant)))

	entry, found, err := s.cache.Get(ctx, tenant)
	if err != nil {
		logger.Warn("host cache lookup failed; creating host", zap.Error(err))
		found = false
	}

	if found {
		state, err := s.engine.Inspect(ctx, entry.HostID)
		switch {
		case err == nil && state.Status == domain.HostRunning:
			now := s.clock.Now()
			if err := s.cache.Put(ctx, domain.HostCacheEntry{TenantID: tenant, HostID: entry.HostID, LastUsed: now}, s.cfg.IdleTimeout); err != nil {
				logger.Warn("touch host last used", zap.Error(err))
			}
			return s.hostFrom(tenant, state, now), nil
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return domain.Host{}, fmt.Errorf("inspect host %s: %w", entry.HostID, err)
		}

		logger.Info("cached host not running; replacing", zap.String("host_id", entry.HostID), zap.String("status", string(state.Status)))
		if err := s.cache.Evict(ctx, tenant); err != nil {
			logger.Warn("evict host cache entry", zap.Error(err))
		}
		s.notifyRemoved(entry.HostID)
	}

	return s.create(ctx, tenant, logger)
}

func (s *HostService) create(ctx context.Context, tenant domain.TenantID, logger *zap.Logger) (domain.Host, error) {
	workspace := domain.TenantDir(s.cfg.WorkspaceRoot, tenant)
	kernelDir := domain.KernelDir(s.cfg.WorkspaceRoot, tenant)
	if err := os.MkdirAll(kernelDir, workspaceMode); err != nil {
		return domain.Host{}, fmt.Errorf("%w: create tenant workspace: %w", domain.ErrStartupFailure, err)
	}

	connectionPath := filepath.Join(kernelDir, domain.ConnectionFileName)
	if err := os.Remove(connectionPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return domain.Host{}, fmt.Errorf("%w: remove stale connection file: %w", domain.ErrStartupFailure, err)
	}

	name := domain.HostName(tenant)
	if err := s.engine.RemoveByName(ctx, name); err != nil {
		return domain.Host{}, fmt.Errorf("remove previous host %s: %w", name, err)
	}

	workspaceAbs, err := filepath.Abs(workspace)
	if err != nil {
		return domain.Host{}, fmt.Errorf("resolve tenant workspace: %w", err)
	}
	kernelAbs, err := filepath.Abs(kernelDir)
	if err != nil {
		return domain.Host{}, fmt.Errorf("resolve kernel directory: %w", err)
	}

	id, err := s.engine.Create(ctx, domain.HostSpec{
		TenantID: tenant,
		Name:     name,
		Image:    s.cfg.Image,
		Binds: []domain.BindMount{
			{Source: workspaceAbs, Target: hostDataMount},
			{Source: kernelAbs, Target: hostKernelMount},
		},
		Env: map[string]string{domain.TenantEnvVar: string(tenant)},
		Labels: map[string]string{
			domain.LabelManaged: "true",
			domain.LabelTenant:  string(tenant),
		},
		MemoryBytes: s.cfg.MemoryBytes,
		NanoCPUs:    s.cfg.NanoCPUs,
	})
	if err != nil {
		return domain.Host{}, fmt.Errorf("create host %s: %w", name, err)
	}
	logger = logger.With(zap.String("host_id", id))

	if err := s.awaitConnectionFile(ctx, connectionPath); err != nil {
		return domain.Host{}, s.abandon(ctx, id, name, err)
	}

	state, err := s.engine.Inspect(ctx, id)
	if err != nil {
		return domain.Host{}, s.abandon(ctx, id, name, fmt.Errorf("inspect new host: %w", err))
	}

	now := s.clock.Now()
	if err := s.cache.Put(ctx, domain.HostCacheEntry{TenantID: tenant, HostID: id, LastUsed: now}, s.cfg.IdleTimeout); err != nil {
		logger.Warn("cache host", zap.Error(err))
	}

	logger.Info("host ready", zap.String("address", state.Address))
	return s.hostFrom(tenant, state, now), nil
}

// abandon removes a host that never became usable and reports cause as a
// startup failure.
func (s *HostService) abandon(ctx context.Context, id, name string, cause error) error {
	removeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), removeTimeout)
	defer cancel()
	if err := s.engine.Remove(removeCtx, id); err != nil {
		cause = errors.Join(cause, fmt.Errorf("remove host %s: %w", id, err))
	}
	return fmt.Errorf("%w: host %s: %w", domain.ErrStartupFailure, name, cause)
}

// awaitConnectionFile polls until the host's interpreter has written a
// connection file that parses.
func (s *HostService) awaitConnectionFile(ctx context.Context, path string) error {
	waitCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadyTimeout)
	defer cancel()

	ticker := time.NewTicker(s.cfg.ReadyPoll)
	defer ticker.Stop()

	var lastErr error
	for {
		_, err := s.loader.Load(path)
		if err == nil {
			return nil
		}
		lastErr = err

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("interpreter not ready after %s: %w", s.cfg.ReadyTimeout, lastErr)
		case <-ticker.C:
		}
	}
}

func (s *HostService) hostFrom(tenant domain.TenantID, state domain.HostState, lastUsed time.Time) domain.Host {
	name := state.Name
	if name == "" {
		name = domain.HostName(tenant)
	}
	return domain.Host{
		ID:                 state.ID,
		TenantID:           tenant,
		Name:               name,
		Status:             state.Status,
		WorkspacePath:      domain.TenantDir(s.cfg.WorkspaceRoot, tenant),
		KernelMetadataPath: domain.KernelDir(s.cfg.WorkspaceRoot, tenant),
		Address:            state.Address,
		LastUsed:           lastUsed,
	}
}

// Reap removes hosts idle for longer than the idle timeout. Hosts with an
// execution in flight are skipped. It returns the tenants whose host was
// removed.
func (s *HostService) Reap(ctx context.Context) ([]domain.TenantID, error) {
	entries, err := s.cache.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cached hosts: %w", err)
	}

	now := s.clock.Now()
	var reaped []domain.TenantID
	var errs error
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return reaped, errors.Join(errs, err)
		}
		if !entry.LastUsed.IsZero() && now.Sub(entry.LastUsed) < s.cfg.IdleTimeout {
			continue
		}

		removed, err := s.reapOne(ctx, entry)
		if err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		if removed {
			reaped = append(reaped, entry.TenantID)
		}
	}
	return reaped, errs
}

func (s *HostService) reapOne(ctx context.Context, entry domain.HostCacheEntry) (bool, error) {
	lock := s.tenantLock(entry.TenantID)
	lock.Lock()
	defer lock.Unlock()

	if s.busy(entry.TenantID) {
		return false, nil
	}

	current, found, err := s.cache.Get(ctx, entry.TenantID)
	if err != nil {
		return false, fmt.Errorf("reload host cache entry %s: %w", entry.TenantID, err)
	}
	if !found || current.HostID != entry.HostID {
		return false, nil
	}
	if !current.LastUsed.IsZero() && s.clock.Now().Sub(current.LastUsed) < s.cfg.IdleTimeout {
		return false, nil
	}

	if err := s.engine.Remove(ctx, entry.HostID); err != nil {
		return false, fmt.Errorf("remove idle host %s: %w", entry.HostID, err)
	}
	if err := s.cache.Evict(ctx, entry.TenantID); err != nil {
		return false, fmt.Errorf("evict idle host %s: %w", entry.HostID, err)
	}
	s.notifyRemoved(entry.HostID)

	s.logger.Info("reaped idle host",
		zap.String("tenant_id", string(entry.TenantID)),
		zap.String("host_id", entry.HostID))
	return true, nil
}

// ListHosts reports the managed hosts the engine knows about.
func (s *HostService) ListHosts(ctx context.Context) ([]domain.HostState, error) {
	states, err := s.engine.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list hosts: %w", err)
	}
	return states, nil
}

// RemoveHost stops and removes the tenant's host and forgets it.
func (s *HostService) RemoveHost(ctx context.Context, tenant domain.TenantID) error {
	if err := tenant.Validate(); err != nil {
		return err
	}

	lock := s.tenantLock(tenant)
	lock.Lock()
	defer lock.Unlock()

	entry, found, err := s.cache.Get(ctx, tenant)
	if err != nil {
		return fmt.Errorf("get cached host: %w", err)
	}

	if found {
		if err := s.engine.Remove(ctx, entry.HostID); err != nil {
			return fmt.Errorf("remove host %s: %w", entry.HostID, err)
		}
		s.notifyRemoved(entry.HostID)
	} else if err := s.engine.RemoveByName(ctx, domain.HostName(tenant)); err != nil {
		return fmt.Errorf("remove host %s: %w", domain.HostName(tenant), err)
	}

	if err := s.cache.Evict(ctx, tenant); err != nil {
		return fmt.Errorf("evict host cache entry: %w", err)
	}
	return nil
}

func (s *HostService) busy(tenant domain.TenantID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight[tenant] > 0
}

func (s *HostService) tenantLock(tenant domain.TenantID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.tenants[tenant]
	if !ok {
		lock = &sync.Mutex{}
		s.tenants[tenant] = lock
	}
	return lock
}

func (s *HostService) notifyRemoved(hostID string) {
	s.mu.Lock()
	hooks := append([]func(string){}, s.onRemoved...)
	s.mu.Unlock()

	for _, hook := range hooks {
		hook(hostID)
	}
}
