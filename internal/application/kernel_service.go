package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bnema/orca/internal/domain"
	"github.com/bnema/orca/internal/logging"
	"github.com/bnema/orca/internal/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	sessionsDirName           = "sessions"
	sessionDirMode            = 0o755
	defaultMaxSessions        = 50
	defaultReadinessTimeout   = 10 * time.Second
	rollbackUnregisterTimeout = 5 * time.Second
)

type KernelServiceConfig struct {
	WorkspaceRoot    string
	MaxSessions      int
	TTL              time.Duration
	ReadinessTimeout time.Duration
	SettleWindow     time.Duration
	DefaultTimeout   time.Duration
}

// KernelService owns the interpreter sessions running on this machine and
// routes executions for sessions owned elsewhere.
type KernelService struct {
	cfg       KernelServiceConfig
	launcher  ports.KernelLauncher
	dialer    ports.KernelDialer
	registry  ports.SessionRegistry
	forwarder ports.Forwarder
	clock     ports.Clock
	logger    *zap.Logger
	newID     func() string

	startMu  sync.Mutex
	mu       sync.RWMutex
	sessions map[domain.SessionID]*kernelHandle
}

type kernelHandle struct {
	process ports.KernelProcess
	client  ports.KernelClient
	// lock is a context-aware mutex serializing executions.
	lock chan struct{}

	mu      sync.Mutex
	session domain.Session
}

func (h *kernelHandle) acquire(ctx context.Context) error {
	select {
	case h.lock <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *kernelHandle) release() {
	<-h.lock
}

func (h *kernelHandle) setState(state domain.SessionState, at time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.session.State = state
	h.session.LastActivity = at
}

func (h *kernelHandle) snapshot() domain.Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.session
}

func NewKernelService(cfg KernelServiceConfig, launcher ports.KernelLauncher, dialer ports.KernelDialer, registry ports.SessionRegistry, forwarder ports.Forwarder, clock ports.Clock, logger *zap.Logger) *KernelService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = defaultMaxSessions
	}
	if cfg.TTL <= 0 {
		cfg.TTL = domain.DefaultSessionTTL
	}
	if cfg.ReadinessTimeout <= 0 {
		cfg.ReadinessTimeout = defaultReadinessTimeout
	}
	if cfg.SettleWindow <= 0 {
		cfg.SettleWindow = defaultSettleWindow
	}
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = domain.DefaultExecutionTimeout
	}

	return &KernelService{
		cfg:       cfg,
		launcher:  launcher,
		dialer:    dialer,
		registry:  registry,
		forwarder: forwarder,
		clock:     clock,
		logger:    logging.OrNop(logger).Named("kernels"),
		newID:     uuid.NewString,
		sessions:  map[domain.SessionID]*kernelHandle{},
	}
}

// CreateSession starts an interpreter for a new session on this machine and
// registers this machine as its owner. Startups are serialized.
func (s *KernelService) CreateSession(ctx context.Context) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}

	s.startMu.Lock()
	defer s.startMu.Unlock()

	s.mu.RLock()
	active := len(s.sessions)
	s.mu.RUnlock()
	if active >= s.cfg.MaxSessions {
		return domain.Session{}, fmt.Errorf("create session (%d active): %w", active, domain.ErrCapacity)
	}

	id := domain.SessionID(s.newID())
	workDir := filepath.Join(s.cfg.WorkspaceRoot, sessionsDirName, string(id))
	logger := s.logger.With(zap.String("session_id", string(id)))

	if err := os.MkdirAll(workDir, sessionDirMode); err != nil {
		return domain.Session{}, fmt.Errorf("%w: create session directory: %w", domain.ErrStartupFailure, err)
	}

	process, err := s.launcher.Launch(ctx, ports.KernelSpec{ID: string(id), WorkDir: workDir})
	if err != nil {
		return domain.Session{}, s.rollback(id, workDir, nil, fmt.Errorf("launch interpreter: %w", err))
	}

	client, err := s.dialer.Dial(ctx, process.ConnectionInfo())
	if err != nil {
		return domain.Session{}, s.rollback(id, workDir, &kernelHandle{process: process}, fmt.Errorf("open interpreter channels: %w", err))
	}

	now := s.clock.Now()
	handle := &kernelHandle{
		process: process,
		client:  client,
		lock:    make(chan struct{}, 1),
		session: domain.Session{
			ID:            id,
			OwningMachine: s.registry.Self(),
			State:         domain.SessionStarting,
			WorkDir:       workDir,
			CreatedAt:     now,
			LastActivity:  now,
			TTL:           s.cfg.TTL,
		},
	}

	s.mu.Lock()
	s.sessions[id] = handle
	s.mu.Unlock()

	if !s.registry.Register(ctx, id, s.cfg.TTL) {
		logger.Warn("session not registered; cross-machine routing disabled for it")
	}

	if err := s.awaitReady(ctx, client); err != nil {
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			logger.Warn("interpreter not ready in time; admitting session", zap.Duration("timeout", s.cfg.ReadinessTimeout))
		} else {
			return domain.Session{}, s.rollback(id, workDir, handle, fmt.Errorf("wait for interpreter: %w", err))
		}
	}

	handle.setState(domain.SessionReady, s.clock.Now())
	logger.Info("session created", zap.String("work_dir", workDir))
	return handle.snapshot(), nil
}

func (s *KernelService) awaitReady(ctx context.Context, client ports.KernelClient) error {
	readyCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadinessTimeout)
	defer cancel()
	return client.KernelInfo(readyCtx)
}

// rollback undoes a partial startup. Every step runs; failures are joined to
// the cause.
func (s *KernelService) rollback(id domain.SessionID, workDir string, handle *kernelHandle, cause error) error {
	var rollbackErr error

	if handle != nil {
		if handle.client != nil {
			if err := handle.client.Close(); err != nil {
				rollbackErr = errors.Join(rollbackErr, fmt.Errorf("close interpreter client: %w", err))
			}
		}
		if err := handle.process.Kill(); err != nil {
			rollbackErr = errors.Join(rollbackErr, fmt.Errorf("kill interpreter: %w", err))
		}
	}

	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()

	if err := os.RemoveAll(workDir); err != nil {
		rollbackErr = errors.Join(rollbackErr, fmt.Errorf("remove session directory: %w", err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), rollbackUnregisterTimeout)
	defer cancel()
	s.registry.Unregister(ctx, id)

	if rollbackErr != nil {
		return fmt.Errorf("%w: %w", domain.ErrStartupFailure, errors.Join(cause, rollbackErr))
	}
	return fmt.Errorf("%w: %w", domain.ErrStartupFailure, cause)
}

// Execute runs code in the session wherever it lives. Sessions owned by
// another machine are forwarded to it.
func (s *KernelService) Execute(ctx context.Context, id domain.SessionID, code string, timeout time.Duration) (domain.ExecutionResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.ExecutionResult{}, err
	}

	if _, ok := s.lookup(id); ok {
		return s.ExecuteLocal(ctx, id, code, timeout)
	}

	owner, ok := s.registry.LookupOwner(ctx, id)
	if !ok {
		return domain.ExecutionResult{}, fmt.Errorf("execute %s: %w", id, domain.ErrSessionNotFound)
	}

	self := s.registry.Self()
	if owner == self.MachineID {
		return domain.ExecutionResult{}, fmt.Errorf("execute %s: %w", id, domain.ErrSessionNotLocal)
	}

	address, ok := s.registry.LookupAddress(ctx, id)
	if !ok {
		return domain.ExecutionResult{}, fmt.Errorf("execute %s: %w", id, domain.ErrSessionNotFound)
	}

	s.logger.Debug("forwarding session execution",
		zap.String("session_id", string(id)),
		zap.String("owner", owner))

	result, err := s.forwarder.Forward(ctx, domain.MachineRecord{MachineID: owner, Address: address}, id, code, s.timeout(timeout))
	if err != nil {
		return domain.ExecutionResult{}, fmt.Errorf("forward %s to %s: %w", id, owner, err)
	}
	return result, nil
}

// ExecuteLocal runs code in a session held by this machine. It never
// forwards; it is the entry point for requests relayed by other machines.
// On timeout the partial output is returned together with the error.
func (s *KernelService) ExecuteLocal(ctx context.Context, id domain.SessionID, code string, timeout time.Duration) (domain.ExecutionResult, error) {
	handle, ok := s.lookup(id)
	if !ok {
		return domain.ExecutionResult{}, fmt.Errorf("execute %s: %w", id, domain.ErrSessionNotFound)
	}

	if !s.registry.ExtendTTL(ctx, id, s.cfg.TTL) {
		s.logger.Debug("session ttl not extended", zap.String("session_id", string(id)))
	}

	if err := handle.acquire(ctx); err != nil {
		return domain.ExecutionResult{}, err
	}
	defer handle.release()

	if !handle.process.Alive() {
		return domain.ExecutionResult{}, &domain.ConnectivityError{
			Target: "interpreter " + string(id),
			Err:    errors.New("interpreter process exited"),
		}
	}

	handle.setState(domain.SessionExecuting, s.clock.Now())
	c, err := collect(ctx, handle.client, code, collectOptions{
		Timeout: s.timeout(timeout),
		Settle:  s.cfg.SettleWindow,
		Logger:  s.logger.With(zap.String("session_id", string(id))),
	})
	handle.setState(domain.SessionReady, s.clock.Now())

	if err != nil {
		return c.local(), fmt.Errorf("execute %s: %w", id, err)
	}
	return c.local(), nil
}

// DeleteSession stops the session's interpreter. Deleting an unknown or
// already deleted session succeeds. Registry records owned by another
// machine are left to their owner.
func (s *KernelService) DeleteSession(ctx context.Context, id domain.SessionID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	handle, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		if owner, found := s.registry.LookupOwner(ctx, id); found && owner == s.registry.Self().MachineID {
			s.registry.Unregister(ctx, id)
		}
		return nil
	}

	handle.setState(domain.SessionTerminated, s.clock.Now())

	var errs error
	if err := handle.client.Close(); err != nil {
		errs = errors.Join(errs, fmt.Errorf("close interpreter client: %w", err))
	}
	if err := handle.process.Kill(); err != nil {
		errs = errors.Join(errs, fmt.Errorf("kill interpreter: %w", err))
	}
	s.registry.Unregister(ctx, id)
	if err := os.RemoveAll(handle.snapshot().WorkDir); err != nil {
		errs = errors.Join(errs, fmt.Errorf("remove session directory: %w", err))
	}

	if errs != nil {
		return fmt.Errorf("delete session %s: %w", id, errs)
	}

	s.logger.Info("session deleted", zap.String("session_id", string(id)))
	return nil
}

// ListSessions returns the sessions held by this machine, oldest first.
func (s *KernelService) ListSessions() []domain.Session {
	s.mu.RLock()
	handles := make([]*kernelHandle, 0, len(s.sessions))
	for _, handle := range s.sessions {
		handles = append(handles, handle)
	}
	s.mu.RUnlock()

	sessions := make([]domain.Session, 0, len(handles))
	for _, handle := range handles {
		sessions = append(sessions, handle.snapshot())
	}
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
	return sessions
}

// Close deletes every local session.
func (s *KernelService) Close(ctx context.Context) error {
	var errs error
	for _, session := range s.ListSessions() {
		if err := s.DeleteSession(ctx, session.ID); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}

func (s *KernelService) Self() domain.MachineRecord {
	return s.registry.Self()
}

func (s *KernelService) lookup(id domain.SessionID) (*kernelHandle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	handle, ok := s.sessions[id]
	return handle, ok
}

func (s *KernelService) timeout(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return s.cfg.DefaultTimeout
	}
	return timeout
}
