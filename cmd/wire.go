package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/bnema/orca/internal/adapters/engine/docker"
	"github.com/bnema/orca/internal/adapters/fleetauth"
	"github.com/bnema/orca/internal/adapters/forwarder"
	redishostcache "github.com/bnema/orca/internal/adapters/hostcache/redis"
	tomlhostcache "github.com/bnema/orca/internal/adapters/hostcache/toml"
	"github.com/bnema/orca/internal/adapters/httpapi"
	"github.com/bnema/orca/internal/adapters/jupyter"
	"github.com/bnema/orca/internal/adapters/redisclient"
	localregistry "github.com/bnema/orca/internal/adapters/registry/local"
	redisregistry "github.com/bnema/orca/internal/adapters/registry/redis"
	statusadapter "github.com/bnema/orca/internal/adapters/render/status"
	"github.com/bnema/orca/internal/adapters/workspace/file"
	"github.com/bnema/orca/internal/application"
	"github.com/bnema/orca/internal/config"
	"github.com/bnema/orca/internal/domain"
	"github.com/bnema/orca/internal/logging"
	"github.com/bnema/orca/internal/ports"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	hostsStateFile    = "hosts.toml"
	kernelRuntimeDir  = "runtime"
	defaultServerURL  = "http://localhost:8000"
	serverEnvVar      = "ORCA_SERVER"
	forwardIdleConns  = 32
	forwardConnsPerIP = 8
)

// rootOptions carries the persistent flags. Config and clients are built
// lazily so flags are parsed first.
type rootOptions struct {
	v          *viper.Viper
	configFile string
	envFile    string
	server     string
	now        func() time.Time
	render     func(application.Status, statusadapter.RenderOptions) (string, error)
}

func newRootOptions() *rootOptions {
	return &rootOptions{
		v:      viper.New(),
		now:    time.Now,
		render: statusadapter.Render,
	}
}

func (o *rootOptions) loadConfig() (config.Config, error) {
	if err := config.LoadDotEnv(o.envFile); err != nil {
		return config.Config{}, err
	}
	if o.configFile != "" {
		o.v.SetConfigFile(o.configFile)
	}

	cfg, err := config.Load(o.v)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (o *rootOptions) client() (*httpapi.Client, error) {
	if err := config.LoadDotEnv(o.envFile); err != nil {
		return nil, err
	}

	server := o.server
	if server == "" {
		server = envOrDefault(serverEnvVar, defaultServerURL)
	}
	return httpapi.NewClient(server, &http.Client{})
}

// app is the fully wired server side of one machine.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	redis    *goredis.Client
	engine   *docker.Engine
	signer   *fleetauth.Signer
	kernels  *application.KernelService
	hosts    *application.HostService
	executor *application.ExecutorService
	files    *file.Store
}

func wireApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	logger = logging.OrNop(logger)
	self := domain.MachineRecord{MachineID: cfg.Machine.ID, Address: cfg.Machine.PublicAddress}

	a := &app{cfg: cfg, logger: logger}

	if cfg.Registry.RedisURL != "" {
		client, err := redisclient.Open(ctx, cfg.Registry.RedisURL, logger)
		if err != nil {
			return nil, fmt.Errorf("wire redis client: %w", err)
		}
		a.redis = client
	}

	registry, err := wireRegistry(cfg, self, a.redis, logger)
	if err != nil {
		return nil, errors.Join(err, a.closeRedis())
	}

	cache, err := wireHostCache(cfg, a.redis)
	if err != nil {
		return nil, errors.Join(err, a.closeRedis())
	}

	a.engine = docker.NewEngine(docker.Options{
		TCPHost:     cfg.Docker.TCPHost,
		UnixHost:    cfg.Docker.UnixHost,
		Sockets:     cfg.Docker.Sockets,
		PingTimeout: cfg.Docker.PingTimeout,
	}, logger)

	loader := jupyter.ConnectionFiles{}
	dialer := jupyter.NewDialer(logger)
	launcher := jupyter.NewLauncher(cfg.Kernel.Python, filepath.Join(cfg.Workspace.StateDir, kernelRuntimeDir), logger)

	a.signer = fleetauth.NewSigner(cfg.Forward.Secret)
	fwd := &forwarder.Forwarder{
		Origin:         self.MachineID,
		InstanceHeader: cfg.Forward.InstanceHeader,
		Signer:         a.signer,
		HTTPClient: &http.Client{Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        forwardIdleConns,
			MaxIdleConnsPerHost: forwardConnsPerIP,
			IdleConnTimeout:     90 * time.Second,
		}},
		MaxResponseBytes: cfg.Forward.MaxResponseBytes,
		Logger:           logger,
	}

	a.kernels = application.NewKernelService(application.KernelServiceConfig{
		WorkspaceRoot:    cfg.Workspace.Root,
		MaxSessions:      cfg.Sessions.Max,
		TTL:              cfg.Sessions.TTL,
		ReadinessTimeout: cfg.Sessions.ReadinessTimeout,
		SettleWindow:     cfg.Sessions.SettleWindow,
		DefaultTimeout:   cfg.Sessions.ExecTimeout,
	}, launcher, dialer, registry, fwd, ports.SystemClock{}, logger)

	a.hosts = application.NewHostService(application.HostServiceConfig{
		WorkspaceRoot: cfg.Workspace.Root,
		Image:         cfg.Hosts.Image,
		MemoryBytes:   cfg.Hosts.MemoryBytes,
		NanoCPUs:      cfg.Hosts.NanoCPUs,
		IdleTimeout:   cfg.Hosts.IdleTimeout,
		ReadyPoll:     cfg.Hosts.ReadyPoll,
		ReadyTimeout:  cfg.Hosts.ReadyTimeout,
	}, a.engine, cache, loader, ports.SystemClock{}, logger)

	a.executor = application.NewExecutorService(application.ExecutorConfig{
		ProbeTimeout:   cfg.Hosts.ProbeTimeout,
		SettleWindow:   cfg.Sessions.SettleWindow,
		DefaultTimeout: cfg.Sessions.ExecTimeout,
	}, a.hosts, dialer, loader, logger)

	a.files = file.NewStore(cfg.Workspace.Root)

	return a, nil
}

func wireRegistry(cfg config.Config, self domain.MachineRecord, client *goredis.Client, logger *zap.Logger) (ports.SessionRegistry, error) {
	if cfg.Registry.Backend != config.RegistryRedis {
		logger.Info("session registry disabled; sessions are reachable only on this machine")
		return localregistry.NewRegistry(self), nil
	}

	registry, err := redisregistry.NewRegistry(client, self, logger)
	if err != nil {
		return nil, fmt.Errorf("wire session registry: %w", err)
	}
	return registry, nil
}

func wireHostCache(cfg config.Config, client *goredis.Client) (ports.HostCache, error) {
	if cfg.UseRedisHostCache() {
		cache, err := redishostcache.NewCache(client)
		if err != nil {
			return nil, fmt.Errorf("wire host cache: %w", err)
		}
		return cache, nil
	}

	cache, err := tomlhostcache.NewCache(filepath.Join(cfg.Workspace.StateDir, hostsStateFile))
	if err != nil {
		return nil, fmt.Errorf("wire host cache: %w", err)
	}
	return cache, nil
}

func (a *app) router() http.Handler {
	return httpapi.NewRouter(httpapi.Config{
		Status: func(ctx context.Context) application.Status {
			return application.QueryStatus(ctx, a.kernels, a.hosts)
		},
		CORSOrigins: a.cfg.Server.CORSOrigins,
		Signer:      a.signer,
		Logger:      a.logger,
	}, a.kernels, a.executor, a.files)
}

// Close stops every local session and releases engine and store clients.
// Tenant hosts keep running.
func (a *app) Close(ctx context.Context) error {
	var errs error
	if a.kernels != nil {
		errs = errors.Join(errs, a.kernels.Close(ctx))
	}
	if a.executor != nil {
		errs = errors.Join(errs, a.executor.Close())
	}
	if a.engine != nil {
		errs = errors.Join(errs, a.engine.Close())
	}
	return errors.Join(errs, a.closeRedis())
}

func (a *app) closeRedis() error {
	if a.redis == nil {
		return nil
	}
	if err := a.redis.Close(); err != nil {
		return fmt.Errorf("close redis client: %w", err)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
