package application

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/bnema/orca/internal/domain"
	"github.com/bnema/orca/internal/logging"
	"github.com/bnema/orca/internal/ports"
	"go.uber.org/zap"
)

const defaultProbeTimeout = time.Second

type ExecutorConfig struct {
	ProbeTimeout   time.Duration
	SettleWindow   time.Duration
	DefaultTimeout time.Duration
}

// ExecutorService runs tenant code inside the tenant's isolated host.
type ExecutorService struct {
	cfg    ExecutorConfig
	hosts  *HostService
	dialer ports.KernelDialer
	loader ports.ConnectionLoader
	logger *zap.Logger

	mu      sync.Mutex
	clients map[string]*hostClient
}

// hostClient is the cached connection to one host's interpreter.
type hostClient struct {
	client ports.KernelClient
	lock   chan struct{}
}

func (h *hostClient) acquire(ctx context.Context) error {
	select {
	case h.lock <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *hostClient) release() {
	<-h.lock
}

func NewExecutorService(cfg ExecutorConfig, hosts *HostService, dialer ports.KernelDialer, loader ports.ConnectionLoader, logger *zap.Logger) *ExecutorService {
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = defaultProbeTimeout
	}
	if cfg.SettleWindow <= 0 {
		cfg.SettleWindow = defaultSettleWindow
	}
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = domain.DefaultExecutionTimeout
	}

	s := &ExecutorService{
		cfg:     cfg,
		hosts:   hosts,
		dialer:  dialer,
		loader:  loader,
		logger:  logging.OrNop(logger).Named("executor"),
		clients: map[string]*hostClient{},
	}
	hosts.OnHostRemoved(s.forget)
	return s
}

// Execute runs code in the tenant's host. The partial result is returned
// together with domain.ErrTimeout when the budget runs out.
func (s *ExecutorService) Execute(ctx context.Context, tenant domain.TenantID, code string, timeout time.Duration) (domain.RichExecutionResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.RichExecutionResult{}, err
	}
	if timeout <= 0 {
		timeout = s.cfg.DefaultTimeout
	}

	host, release, err := s.hosts.AcquireHost(ctx, tenant)
	if err != nil {
		return domain.RichExecutionResult{}, fmt.Errorf("get host for %s: %w", tenant, err)
	}
	defer release()

	hc, err := s.lockedClient(ctx, host)
	if err != nil {
		return domain.RichExecutionResult{}, err
	}
	defer hc.release()

	c, err := collect(ctx, hc.client, code, collectOptions{
		Timeout: timeout,
		Settle:  s.cfg.SettleWindow,
		Logger:  s.logger.With(zap.String("tenant_id", string(tenant))),
	})
	if err != nil {
		return c.rich(), fmt.Errorf("execute for %s: %w", tenant, err)
	}
	return c.rich(), nil
}

// lockedClient returns a live client for the host with its execution lock
// held. A cached client is probed first and replaced when the probe fails.
func (s *ExecutorService) lockedClient(ctx context.Context, host domain.Host) (*hostClient, error) {
	for {
		s.mu.Lock()
		cached, ok := s.clients[host.ID]
		s.mu.Unlock()

		if ok {
			if err := cached.acquire(ctx); err != nil {
				return nil, err
			}

			probeCtx, cancel := context.WithTimeout(ctx, s.cfg.ProbeTimeout)
			err := cached.client.KernelInfo(probeCtx)
			cancel()
			if err == nil {
				return cached, nil
			}
			cached.release()
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			s.logger.Info("cached kernel client failed probe; reconnecting",
				zap.String("host_id", host.ID), zap.Error(err))
			s.forgetClient(host.ID, cached)
		}

		hc, err := s.connect(ctx, host)
		if err != nil {
			return nil, err
		}
		hc.lock <- struct{}{}

		s.mu.Lock()
		if _, raced := s.clients[host.ID]; raced {
			s.mu.Unlock()
			_ = hc.client.Close()
			continue
		}
		s.clients[host.ID] = hc
		s.mu.Unlock()

		return hc, nil
	}
}

func (s *ExecutorService) connect(ctx context.Context, host domain.Host) (*hostClient, error) {
	info, err := s.loader.Load(filepath.Join(host.KernelMetadataPath, domain.ConnectionFileName))
	if err != nil {
		return nil, fmt.Errorf("load connection file for host %s: %w", host.ID, err)
	}
	if host.Address != "" {
		info.IP = host.Address
	}

	client, err := s.dialer.Dial(ctx, info)
	if err != nil {
		return nil, fmt.Errorf("connect to host %s: %w", host.ID, err)
	}
	return &hostClient{client: client, lock: make(chan struct{}, 1)}, nil
}

// forgetClient drops hc from the cache unless it was already replaced.
func (s *ExecutorService) forgetClient(hostID string, hc *hostClient) {
	s.mu.Lock()
	if s.clients[hostID] == hc {
		delete(s.clients, hostID)
	}
	s.mu.Unlock()

	_ = hc.client.Close()
}

func (s *ExecutorService) forget(hostID string) {
	s.mu.Lock()
	hc, ok := s.clients[hostID]
	delete(s.clients, hostID)
	s.mu.Unlock()

	if ok {
		if err := hc.client.Close(); err != nil {
			s.logger.Debug("close kernel client", zap.String("host_id", hostID), zap.Error(err))
		}
	}
}

// Close releases every cached client. Hosts keep running.
func (s *ExecutorService) Close() error {
	s.mu.Lock()
	clients := s.clients
	s.clients = map[string]*hostClient{}
	s.mu.Unlock()

	for _, hc := range clients {
		_ = hc.client.Close()
	}
	return nil
}
