package docker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bnema/orca/internal/domain"
	"github.com/bnema/orca/internal/logging"
	"github.com/bnema/orca/internal/ports"
	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"go.uber.org/zap"
)

const (
	defaultPingTimeout = 5 * time.Second
	stopTimeoutSeconds = 10
	preferredNetwork   = "bridge"
	engineTarget       = "docker engine"
)

type containerAPI interface {
	Ping(ctx context.Context) (types.Ping, error)
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerInspect(ctx context.Context, containerID string) (container.InspectResponse, error)
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
	Close() error
}

// Engine runs tenant hosts as Docker containers. The engine connection is
// established on first use and reused for the life of the process.
type Engine struct {
	endpoints   []Endpoint
	dial        dialFunc
	pingTimeout time.Duration
	logger      *zap.Logger

	mu  sync.Mutex
	api containerAPI
}

var _ ports.HostEngine = (*Engine)(nil)

func NewEngine(opts Options, logger *zap.Logger) *Engine {
	return newEngine(Endpoints(opts), dialEndpoint, opts.PingTimeout, logger)
}

func newEngine(eps []Endpoint, dial dialFunc, pingTimeout time.Duration, logger *zap.Logger) *Engine {
	if pingTimeout <= 0 {
		pingTimeout = defaultPingTimeout
	}

	return &Engine{
		endpoints:   eps,
		dial:        dial,
		pingTimeout: pingTimeout,
		logger:      logging.OrNop(logger).Named("docker"),
	}
}

func (e *Engine) connect(ctx context.Context) (containerAPI, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.api != nil {
		return e.api, nil
	}

	api, ep, err := connectChain(ctx, e.endpoints, e.dial, e.pingTimeout)
	if err != nil {
		e.logger.Error("docker engine unreachable", zap.Error(err))
		return nil, err
	}

	e.logger.Info("connected to docker engine", zap.String("endpoint", ep.Name))
	e.api = api
	return api, nil
}

func (e *Engine) Create(ctx context.Context, spec domain.HostSpec) (string, error) {
	api, err := e.connect(ctx)
	if err != nil {
		return "", err
	}

	binds := make([]string, 0, len(spec.Binds))
	for _, bind := range spec.Binds {
		binds = append(binds, bind.Source+":"+bind.Target+":rw")
	}

	resp, err := api.ContainerCreate(ctx,
		&container.Config{
			Image:  spec.Image,
			Env:    envList(spec.Env),
			Labels: spec.Labels,
		},
		&container.HostConfig{
			Binds:       binds,
			NetworkMode: container.NetworkMode(preferredNetwork),
			Resources: container.Resources{
				Memory:   spec.MemoryBytes,
				NanoCPUs: spec.NanoCPUs,
			},
		},
		nil, nil, spec.Name)
	if err != nil {
		return "", engineError("create container "+spec.Name, err, true)
	}

	if err := api.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		if rmErr := api.ContainerRemove(ctx, resp.ID, container.RemoveOptions{Force: true}); rmErr != nil {
			e.logger.Warn("remove container after failed start", zap.String("host_id", resp.ID), zap.Error(rmErr))
		}
		return "", engineError("start container "+spec.Name, err, true)
	}

	return resp.ID, nil
}

func (e *Engine) Inspect(ctx context.Context, id string) (domain.HostState, error) {
	api, err := e.connect(ctx)
	if err != nil {
		return domain.HostState{}, err
	}

	info, err := api.ContainerInspect(ctx, id)
	if err != nil {
		if client.IsErrNotFound(err) {
			return domain.HostState{}, fmt.Errorf("inspect container %s: %w", id, domain.ErrHostNotFound)
		}
		return domain.HostState{}, engineError("inspect container "+id, err, false)
	}

	return stateFromInspect(info), nil
}

func (e *Engine) Remove(ctx context.Context, id string) error {
	api, err := e.connect(ctx)
	if err != nil {
		return err
	}

	timeout := stopTimeoutSeconds
	if err := api.ContainerStop(ctx, id, container.StopOptions{Timeout: &timeout}); err != nil && !client.IsErrNotFound(err) {
		e.logger.Warn("stop container", zap.String("host_id", id), zap.Error(err))
	}

	if err := api.ContainerRemove(ctx, id, container.RemoveOptions{Force: true}); err != nil {
		if client.IsErrNotFound(err) {
			return nil
		}
		return engineError("remove container "+id, err, false)
	}

	return nil
}

// RemoveByName removes a container by name. Docker resolves names wherever
// it accepts ids.
func (e *Engine) RemoveByName(ctx context.Context, name string) error {
	return e.Remove(ctx, name)
}

func (e *Engine) List(ctx context.Context) ([]domain.HostState, error) {
	api, err := e.connect(ctx)
	if err != nil {
		return nil, err
	}

	summaries, err := api.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("label", domain.LabelManaged+"=true")),
	})
	if err != nil {
		return nil, engineError("list containers", err, false)
	}

	states := make([]domain.HostState, 0, len(summaries))
	for _, summary := range summaries {
		states = append(states, stateFromSummary(summary))
	}

	return states, nil
}

// Close releases the engine connection, if one was made.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.api == nil {
		return nil
	}
	err := e.api.Close()
	e.api = nil
	return err
}

// engineError classifies a Docker API failure other than not-found. A daemon
// that cannot be reached is a connectivity failure. A daemon that answers but
// refuses to create or start a host is a startup failure; on every other call
// it counts as the engine being unavailable.
func engineError(op string, err error, startup bool) error {
	wrapped := fmt.Errorf("%s: %w", op, err)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return wrapped
	case client.IsErrConnectionFailed(err), cerrdefs.IsUnavailable(err), !startup:
		return &domain.ConnectivityError{Target: engineTarget, Err: wrapped}
	default:
		return fmt.Errorf("%w: %w", domain.ErrStartupFailure, wrapped)
	}
}

func stateFromInspect(info container.InspectResponse) domain.HostState {
	state := domain.HostState{Status: domain.HostMissing}
	if info.ContainerJSONBase != nil {
		state.ID = info.ID
		state.Name = strings.TrimPrefix(info.Name, "/")
		if info.State != nil {
			state.Status = hostStatus(string(info.State.Status))
		}
	}
	if info.Config != nil {
		state.TenantID = domain.TenantID(info.Config.Labels[domain.LabelTenant])
	}
	if info.NetworkSettings != nil {
		state.Address = pickAddress(info.NetworkSettings.Networks)
	}

	return state
}

func stateFromSummary(summary container.Summary) domain.HostState {
	state := domain.HostState{
		ID:       summary.ID,
		TenantID: domain.TenantID(summary.Labels[domain.LabelTenant]),
		Status:   hostStatus(string(summary.State)),
	}
	if len(summary.Names) > 0 {
		state.Name = strings.TrimPrefix(summary.Names[0], "/")
	}
	if summary.NetworkSettings != nil {
		state.Address = pickAddress(summary.NetworkSettings.Networks)
	}

	return state
}

func hostStatus(raw string) domain.HostStatus {
	switch raw {
	case "running":
		return domain.HostRunning
	case "created", "restarting":
		return domain.HostStarting
	case "":
		return domain.HostMissing
	default:
		return domain.HostStopped
	}
}

func pickAddress(networks map[string]*network.EndpointSettings) string {
	if ep, ok := networks[preferredNetwork]; ok && ep != nil && ep.IPAddress != "" {
		return ep.IPAddress
	}

	names := make([]string, 0, len(networks))
	for name := range networks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if ep := networks[name]; ep != nil && ep.IPAddress != "" {
			return ep.IPAddress
		}
	}
	return ""
}

func envList(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for key := range env {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	list := make([]string, 0, len(keys))
	for _, key := range keys {
		list = append(list, key+"="+env[key])
	}
	return list
}
