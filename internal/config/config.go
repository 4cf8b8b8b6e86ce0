package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	units "github.com/docker/go-units"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configName = "orca"
	configType = "toml"
	envPrefix  = "ORCA"
)

const (
	RegistryLocal = "local"
	RegistryRedis = "redis"

	HostCacheAuto  = "auto"
	HostCacheRedis = "redis"
	HostCacheTOML  = "toml"
)

// Config is resolved once at startup. Precedence, highest first: flags bound
// to the viper instance, ORCA_* environment variables, orca.toml, values
// derived from the hosting platform, defaults.
type Config struct {
	Server    ServerConfig
	Machine   MachineConfig
	Workspace WorkspaceConfig
	Sessions  SessionsConfig
	Kernel    KernelConfig
	Registry  RegistryConfig
	Docker    DockerConfig
	Hosts     HostsConfig
	Forward   ForwardConfig
	Log       LogConfig
}

type ServerConfig struct {
	Listen      string
	CORSOrigins []string
}

type MachineConfig struct {
	ID            string
	PublicAddress string
}

type WorkspaceConfig struct {
	Root     string
	StateDir string
}

type SessionsConfig struct {
	Max              int
	TTL              time.Duration
	ReadinessTimeout time.Duration
	SettleWindow     time.Duration
	ExecTimeout      time.Duration
}

type KernelConfig struct {
	Python string
}

type RegistryConfig struct {
	Backend  string
	RedisURL string
}

type DockerConfig struct {
	TCPHost     string
	UnixHost    string
	Sockets     []string
	PingTimeout time.Duration
}

type HostsConfig struct {
	Image        string
	MemoryBytes  int64
	NanoCPUs     int64
	IdleTimeout  time.Duration
	ReapInterval time.Duration
	ReadyPoll    time.Duration
	ReadyTimeout time.Duration
	Cache        string
	ProbeTimeout time.Duration
}

type ForwardConfig struct {
	InstanceHeader string
	Secret         string
	// MaxResponseBytes caps a result body read from another machine.
	MaxResponseBytes int64
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads orca.toml from the usual locations and resolves the final
// configuration from v.
func Load(v *viper.Viper) (Config, error) {
	return load(v, os.Getenv)
}

// LoadDotEnv loads path into the process environment. Variables that are
// already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func load(v *viper.Viper, getenv func(string) string) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	setDefaults(v)
	applyPlatformDefaults(v, getenv)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if v.ConfigFileUsed() == "" {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(".")
		if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".orca"))
		}
		v.AddConfigPath("/etc/orca")
	}

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	memory, err := units.RAMInBytes(v.GetString("hosts.memory"))
	if err != nil {
		return Config{}, fmt.Errorf("parse hosts.memory: %w", err)
	}
	maxResponse, err := units.RAMInBytes(v.GetString("forward.max_response"))
	if err != nil {
		return Config{}, fmt.Errorf("parse forward.max_response: %w", err)
	}

	cfg := Config{
		Server: ServerConfig{
			Listen:      v.GetString("server.listen"),
			CORSOrigins: v.GetStringSlice("server.cors_origins"),
		},
		Machine: MachineConfig{
			ID:            v.GetString("machine.id"),
			PublicAddress: strings.TrimRight(v.GetString("machine.public_address"), "/"),
		},
		Workspace: WorkspaceConfig{
			Root:     v.GetString("workspace.root"),
			StateDir: v.GetString("workspace.state_dir"),
		},
		Sessions: SessionsConfig{
			Max:              v.GetInt("sessions.max"),
			TTL:              v.GetDuration("sessions.ttl"),
			ReadinessTimeout: v.GetDuration("sessions.readiness_timeout"),
			SettleWindow:     v.GetDuration("sessions.settle_window"),
			ExecTimeout:      v.GetDuration("sessions.exec_timeout"),
		},
		Kernel: KernelConfig{
			Python: v.GetString("kernel.python"),
		},
		Registry: RegistryConfig{
			Backend:  strings.ToLower(v.GetString("registry.backend")),
			RedisURL: v.GetString("registry.redis_url"),
		},
		Docker: DockerConfig{
			TCPHost:     v.GetString("docker.tcp_host"),
			UnixHost:    v.GetString("docker.unix_host"),
			Sockets:     v.GetStringSlice("docker.sockets"),
			PingTimeout: v.GetDuration("docker.ping_timeout"),
		},
		Hosts: HostsConfig{
			Image:        v.GetString("hosts.image"),
			MemoryBytes:  memory,
			NanoCPUs:     int64(v.GetFloat64("hosts.cpus") * 1e9),
			IdleTimeout:  v.GetDuration("hosts.idle_timeout"),
			ReapInterval: v.GetDuration("hosts.reap_interval"),
			ReadyPoll:    v.GetDuration("hosts.ready_poll"),
			ReadyTimeout: v.GetDuration("hosts.ready_timeout"),
			Cache:        strings.ToLower(v.GetString("hosts.cache")),
			ProbeTimeout: v.GetDuration("hosts.probe_timeout"),
		},
		Forward: ForwardConfig{
			InstanceHeader:   v.GetString("forward.instance_header"),
			Secret:           v.GetString("forward.secret"),
			MaxResponseBytes: maxResponse,
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	if cfg.Workspace.StateDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.Workspace.StateDir = filepath.Join(homeDir, ".orca")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "local"
	}

	v.SetDefault("server.listen", ":8000")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("machine.id", hostname)
	v.SetDefault("machine.public_address", "http://localhost:8000")
	v.SetDefault("workspace.root", "./workspace")
	v.SetDefault("workspace.state_dir", "")
	v.SetDefault("sessions.max", 50)
	v.SetDefault("sessions.ttl", time.Hour)
	v.SetDefault("sessions.readiness_timeout", 10*time.Second)
	v.SetDefault("sessions.settle_window", 250*time.Millisecond)
	v.SetDefault("sessions.exec_timeout", 30*time.Second)
	v.SetDefault("kernel.python", "python3")
	v.SetDefault("registry.backend", RegistryLocal)
	v.SetDefault("registry.redis_url", "")
	v.SetDefault("docker.tcp_host", "")
	v.SetDefault("docker.unix_host", "")
	v.SetDefault("docker.sockets", defaultDockerSockets())
	v.SetDefault("docker.ping_timeout", 5*time.Second)
	v.SetDefault("hosts.image", "orca-executor:latest")
	v.SetDefault("hosts.memory", "2g")
	v.SetDefault("hosts.cpus", 2.0)
	v.SetDefault("hosts.idle_timeout", 30*time.Minute)
	v.SetDefault("hosts.reap_interval", 5*time.Minute)
	v.SetDefault("hosts.ready_poll", 500*time.Millisecond)
	v.SetDefault("hosts.ready_timeout", 30*time.Second)
	v.SetDefault("hosts.cache", HostCacheAuto)
	v.SetDefault("hosts.probe_timeout", time.Second)
	v.SetDefault("forward.instance_header", "")
	v.SetDefault("forward.secret", "")
	v.SetDefault("forward.max_response", "64m")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// applyPlatformDefaults layers values derived from the hosting platform over
// the static defaults. They stay below the config file and ORCA_* variables.
func applyPlatformDefaults(v *viper.Viper, getenv func(string) string) {
	if port := getenv("PORT"); port != "" {
		v.SetDefault("server.listen", ":"+port)
		v.SetDefault("machine.public_address", "http://localhost:"+port)
	}

	if redisURL := getenv("REDIS_URL"); redisURL != "" {
		v.SetDefault("registry.redis_url", redisURL)
		v.SetDefault("registry.backend", RegistryRedis)
	}

	if dockerHost := getenv("DOCKER_HOST"); dockerHost != "" {
		switch {
		case strings.HasPrefix(dockerHost, "tcp://"):
			v.SetDefault("docker.tcp_host", dockerHost)
		case strings.HasPrefix(dockerHost, "unix://"):
			v.SetDefault("docker.unix_host", dockerHost)
		}
	}

	if machineID := getenv("FLY_MACHINE_ID"); machineID != "" {
		v.SetDefault("machine.id", machineID)
		v.SetDefault("forward.instance_header", "Fly-Force-Instance-Id")
		if app := getenv("FLY_APP_NAME"); app != "" {
			v.SetDefault("machine.public_address", "https://"+app+".fly.dev")
		}
	}

	if getenv("RAILWAY_ENVIRONMENT") != "" {
		if replica := getenv("RAILWAY_REPLICA_ID"); replica != "" {
			v.SetDefault("machine.id", replica)
		}
		if domain := getenv("RAILWAY_PUBLIC_DOMAIN"); domain != "" {
			v.SetDefault("machine.public_address", "https://"+domain)
		}
	}
}

func defaultDockerSockets() []string {
	sockets := []string{"/var/run/docker.sock", "/var/run/docker.sock.raw"}
	if homeDir, err := os.UserHomeDir(); err == nil {
		sockets = append(sockets, filepath.Join(homeDir, ".docker", "run", "docker.sock"))
	}
	return sockets
}

func (c Config) Validate() error {
	if c.Machine.ID == "" {
		return errors.New("machine id is empty")
	}
	if c.Sessions.Max <= 0 {
		return fmt.Errorf("sessions.max must be positive, got %d", c.Sessions.Max)
	}
	if c.Workspace.Root == "" {
		return errors.New("workspace root is empty")
	}

	switch c.Registry.Backend {
	case RegistryLocal:
	case RegistryRedis:
		if c.Registry.RedisURL == "" {
			return errors.New("registry backend redis requires registry.redis_url")
		}
	default:
		return fmt.Errorf("unsupported registry backend %q", c.Registry.Backend)
	}

	if c.Forward.MaxResponseBytes <= 0 {
		return fmt.Errorf("forward.max_response must be positive, got %d", c.Forward.MaxResponseBytes)
	}

	switch c.Hosts.Cache {
	case HostCacheAuto, HostCacheTOML:
	case HostCacheRedis:
		if c.Registry.RedisURL == "" {
			return errors.New("host cache redis requires registry.redis_url")
		}
	default:
		return fmt.Errorf("unsupported host cache %q", c.Hosts.Cache)
	}

	return nil
}

// UseRedisHostCache reports whether the tenant to host mapping lives in Redis.
func (c Config) UseRedisHostCache() bool {
	switch c.Hosts.Cache {
	case HostCacheRedis:
		return true
	case HostCacheAuto:
		return c.Registry.RedisURL != ""
	default:
		return false
	}
}
