package docker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bnema/orca/internal/domain"
	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/errdefs"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	created     []string
	createCfg   *container.Config
	hostCfg     *container.HostConfig
	createErr   error
	startErr    error
	inspectErr  error
	listErr     error
	inspect     map[string]container.InspectResponse
	list        []container.Summary
	listOptions container.ListOptions
	stopped     []string
	removed     []string
	closed      bool
}

func (f *fakeAPI) Ping(context.Context) (types.Ping, error) { return types.Ping{}, nil }

func (f *fakeAPI) ContainerCreate(_ context.Context, cfg *container.Config, hostCfg *container.HostConfig, _ *network.NetworkingConfig, _ *ocispec.Platform, name string) (container.CreateResponse, error) {
	if f.createErr != nil {
		return container.CreateResponse{}, f.createErr
	}
	f.created = append(f.created, name)
	f.createCfg = cfg
	f.hostCfg = hostCfg
	return container.CreateResponse{ID: "id-" + name}, nil
}

func (f *fakeAPI) ContainerStart(context.Context, string, container.StartOptions) error {
	return f.startErr
}

func (f *fakeAPI) ContainerInspect(_ context.Context, id string) (container.InspectResponse, error) {
	if f.inspectErr != nil {
		return container.InspectResponse{}, f.inspectErr
	}
	info, ok := f.inspect[id]
	if !ok {
		return container.InspectResponse{}, errdefs.NotFound(errors.New("no such container"))
	}
	return info, nil
}

func (f *fakeAPI) ContainerList(_ context.Context, options container.ListOptions) ([]container.Summary, error) {
	f.listOptions = options
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.list, nil
}

func (f *fakeAPI) ContainerStop(_ context.Context, id string, _ container.StopOptions) error {
	f.stopped = append(f.stopped, id)
	return nil
}

func (f *fakeAPI) ContainerRemove(_ context.Context, id string, _ container.RemoveOptions) error {
	if id == "gone" {
		return errdefs.NotFound(errors.New("no such container"))
	}
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeAPI) Close() error {
	f.closed = true
	return nil
}

func engineWith(api *fakeAPI) *Engine {
	return newEngine([]Endpoint{{Name: "fake"}}, func(context.Context, Endpoint) (containerAPI, error) {
		return api, nil
	}, time.Second, nil)
}

func TestEndpointsOrder(t *testing.T) {
	t.Parallel()

	eps := endpoints(Options{
		TCPHost:  "tcp://docker:2375",
		UnixHost: "unix:///custom/docker.sock",
		Sockets:  []string{"/var/run/docker.sock", "/missing.sock", "/custom/docker.sock"},
	}, func(path string) bool { return path != "/missing.sock" })

	names := make([]string, 0, len(eps))
	for _, ep := range eps {
		names = append(names, ep.Name)
	}
	assert.Equal(t, []string{
		"tcp://docker:2375",
		"unix:///var/run/docker.sock",
		"unix:///custom/docker.sock",
		"environment",
	}, names)
}

func TestConnectChainUsesFirstReachableEndpoint(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	var tried []string
	got, ep, err := connectChain(context.Background(), []Endpoint{{Name: "a"}, {Name: "b"}, {Name: "c"}},
		func(_ context.Context, ep Endpoint) (containerAPI, error) {
			tried = append(tried, ep.Name)
			if ep.Name == "b" {
				return api, nil
			}
			return nil, errors.New("refused")
		}, time.Second)
	require.NoError(t, err)
	assert.Same(t, api, got)
	assert.Equal(t, "b", ep.Name)
	assert.Equal(t, []string{"a", "b"}, tried)
}

func TestConnectChainReportsEveryAttempt(t *testing.T) {
	t.Parallel()

	_, _, err := connectChain(context.Background(), []Endpoint{{Name: "tcp://x"}, {Name: "environment"}},
		func(context.Context, Endpoint) (containerAPI, error) {
			return nil, errors.New("refused")
		}, time.Second)
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrConnectivity)

	var connErr *domain.ConnectivityError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, []string{"tcp://x", "environment"}, connErr.Attempts)
	assert.ErrorContains(t, err, "refused")
}

func TestConnectChainStopsOnCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, _, err := connectChain(ctx, []Endpoint{{Name: "a"}, {Name: "b"}},
		func(ctx context.Context, _ Endpoint) (containerAPI, error) {
			calls++
			return nil, ctx.Err()
		}, time.Second)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestEngineConnectsOnceAndCaches(t *testing.T) {
	t.Parallel()

	dials := 0
	api := &fakeAPI{}
	engine := newEngine([]Endpoint{{Name: "fake"}}, func(context.Context, Endpoint) (containerAPI, error) {
		dials++
		return api, nil
	}, time.Second, nil)

	_, err := engine.List(context.Background())
	require.NoError(t, err)
	_, err = engine.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, dials)

	require.NoError(t, engine.Close())
	assert.True(t, api.closed)
}

func TestEngineCreateBuildsContainerSpec(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	engine := engineWith(api)

	id, err := engine.Create(context.Background(), domain.HostSpec{
		TenantID: "alice",
		Name:     "orca-user-alice",
		Image:    "orca-executor:latest",
		Binds: []domain.BindMount{
			{Source: "/srv/orca/tenants/alice", Target: "/data"},
			{Source: "/srv/orca/tenants/alice/kernel", Target: "/app/kernel"},
		},
		Env:         map[string]string{domain.TenantEnvVar: "alice"},
		Labels:      map[string]string{domain.LabelManaged: "true", domain.LabelTenant: "alice"},
		MemoryBytes: 2 << 30,
		NanoCPUs:    2_000_000_000,
	})
	require.NoError(t, err)
	assert.Equal(t, "id-orca-user-alice", id)

	assert.Equal(t, []string{"ORCA_TENANT_ID=alice"}, api.createCfg.Env)
	assert.Equal(t, "true", api.createCfg.Labels[domain.LabelManaged])
	assert.Equal(t, []string{
		"/srv/orca/tenants/alice:/data:rw",
		"/srv/orca/tenants/alice/kernel:/app/kernel:rw",
	}, api.hostCfg.Binds)
	assert.Equal(t, int64(2<<30), api.hostCfg.Memory)
	assert.Equal(t, int64(2_000_000_000), api.hostCfg.NanoCPUs)
}

func TestEngineCreateRemovesContainerWhenStartFails(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{startErr: errors.New("port conflict")}
	engine := engineWith(api)

	_, err := engine.Create(context.Background(), domain.HostSpec{Name: "orca-user-bob", Image: "img"})
	require.Error(t, err)
	assert.ErrorContains(t, err, "port conflict")
	assert.Equal(t, domain.KindStartupFailure, domain.KindOf(err))
	assert.Equal(t, []string{"id-orca-user-bob"}, api.removed)
}

func TestEngineClassifiesDaemonFailures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	create := engineWith(&fakeAPI{createErr: errdefs.System(errors.New("no such image"))})
	_, err := create.Create(ctx, domain.HostSpec{Name: "orca-user-bob", Image: "img"})
	assert.Equal(t, domain.KindStartupFailure, domain.KindOf(err))
	assert.ErrorContains(t, err, "no such image")

	unavailable := engineWith(&fakeAPI{createErr: errdefs.Unavailable(errors.New("daemon shutting down"))})
	_, err = unavailable.Create(ctx, domain.HostSpec{Name: "orca-user-bob", Image: "img"})
	assert.Equal(t, domain.KindConnectivity, domain.KindOf(err))

	inspect := engineWith(&fakeAPI{inspectErr: errdefs.System(errors.New("engine hiccup"))})
	_, err = inspect.Inspect(ctx, "c-1")
	assert.Equal(t, domain.KindConnectivity, domain.KindOf(err))
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorContains(t, err, "inspect container c-1")

	list := engineWith(&fakeAPI{listErr: errors.New("broken pipe")})
	_, err = list.List(ctx)
	assert.Equal(t, domain.KindConnectivity, domain.KindOf(err))

	canceled := engineWith(&fakeAPI{inspectErr: context.Canceled})
	_, err = canceled.Inspect(ctx, "c-1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrConnectivity)
}

func TestEngineInspectMapsState(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{inspect: map[string]container.InspectResponse{
		"c-1": {
			ContainerJSONBase: &container.ContainerJSONBase{
				ID:    "c-1",
				Name:  "/orca-user-alice",
				State: &container.State{Status: "running"},
			},
			Config: &container.Config{Labels: map[string]string{domain.LabelTenant: "alice"}},
			NetworkSettings: &container.NetworkSettings{
				Networks: map[string]*network.EndpointSettings{
					"custom": {IPAddress: "10.0.0.9"},
					"bridge": {IPAddress: "172.17.0.3"},
				},
			},
		},
		"c-2": {
			ContainerJSONBase: &container.ContainerJSONBase{
				ID:    "c-2",
				State: &container.State{Status: "exited"},
			},
		},
	}}
	engine := engineWith(api)

	state, err := engine.Inspect(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Equal(t, domain.HostState{
		ID:       "c-1",
		Name:     "orca-user-alice",
		TenantID: "alice",
		Status:   domain.HostRunning,
		Address:  "172.17.0.3",
	}, state)

	state, err = engine.Inspect(context.Background(), "c-2")
	require.NoError(t, err)
	assert.Equal(t, domain.HostStopped, state.Status)

	_, err = engine.Inspect(context.Background(), "nope")
	require.ErrorIs(t, err, domain.ErrHostNotFound)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEngineRemoveToleratesMissingContainer(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	engine := engineWith(api)

	require.NoError(t, engine.Remove(context.Background(), "c-1"))
	require.NoError(t, engine.Remove(context.Background(), "gone"))
	require.NoError(t, engine.RemoveByName(context.Background(), "orca-user-alice"))

	assert.Equal(t, []string{"c-1", "gone", "orca-user-alice"}, api.stopped)
	assert.Equal(t, []string{"c-1", "orca-user-alice"}, api.removed)
}

func TestEngineListFiltersManagedContainers(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{list: []container.Summary{{
		ID:     "c-1",
		Names:  []string{"/orca-user-alice"},
		State:  "running",
		Labels: map[string]string{domain.LabelTenant: "alice"},
		NetworkSettings: &container.NetworkSettingsSummary{
			Networks: map[string]*network.EndpointSettings{"bridge": {IPAddress: "172.17.0.3"}},
		},
	}}}
	engine := engineWith(api)

	states, err := engine.List(context.Background())
	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.Equal(t, domain.HostState{
		ID: "c-1", Name: "orca-user-alice", TenantID: "alice", Status: domain.HostRunning, Address: "172.17.0.3",
	}, states[0])

	assert.True(t, api.listOptions.All)
	assert.Equal(t, []string{"orca.managed=true"}, api.listOptions.Filters.Get("label"))
}

func TestEngineUnreachableReturnsConnectivityError(t *testing.T) {
	t.Parallel()

	engine := newEngine([]Endpoint{{Name: "environment"}}, func(context.Context, Endpoint) (containerAPI, error) {
		return nil, errors.New("no engine")
	}, time.Second, nil)

	_, err := engine.Create(context.Background(), domain.HostSpec{Name: "x"})
	require.ErrorIs(t, err, domain.ErrConnectivity)
	assert.Equal(t, domain.KindConnectivity, domain.KindOf(err))
}
