package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func writeConfigFile(t *testing.T, body string) *viper.Viper {
	t.Helper()

	path := filepath.Join(t.TempDir(), "orca.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	v := viper.New()
	v.SetConfigFile(path)
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(viper.New(), envFrom(nil))
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Listen)
	assert.Equal(t, RegistryLocal, cfg.Registry.Backend)
	assert.Equal(t, 50, cfg.Sessions.Max)
	assert.Equal(t, time.Hour, cfg.Sessions.TTL)
	assert.Equal(t, 10*time.Second, cfg.Sessions.ReadinessTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Sessions.SettleWindow)
	assert.Equal(t, int64(2<<30), cfg.Hosts.MemoryBytes)
	assert.Equal(t, int64(64<<20), cfg.Forward.MaxResponseBytes)
	assert.Equal(t, int64(2_000_000_000), cfg.Hosts.NanoCPUs)
	assert.Equal(t, 500*time.Millisecond, cfg.Hosts.ReadyPoll)
	assert.Equal(t, 30*time.Second, cfg.Hosts.ReadyTimeout)
	assert.Contains(t, cfg.Docker.Sockets, "/var/run/docker.sock")
	assert.False(t, cfg.UseRedisHostCache())
	assert.NotEmpty(t, cfg.Workspace.StateDir)
}

func TestLoadPlatformDerivedValues(t *testing.T) {
	cfg, err := load(viper.New(), envFrom(map[string]string{
		"FLY_MACHINE_ID": "machine-a",
		"FLY_APP_NAME":   "orca-fleet",
		"REDIS_URL":      "redis://cache:6379/0",
		"PORT":           "8080",
		"DOCKER_HOST":    "tcp://docker:2375",
	}))
	require.NoError(t, err)

	assert.Equal(t, "machine-a", cfg.Machine.ID)
	assert.Equal(t, "https://orca-fleet.fly.dev", cfg.Machine.PublicAddress)
	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.Equal(t, RegistryRedis, cfg.Registry.Backend)
	assert.Equal(t, "redis://cache:6379/0", cfg.Registry.RedisURL)
	assert.Equal(t, "tcp://docker:2375", cfg.Docker.TCPHost)
	assert.Equal(t, "Fly-Force-Instance-Id", cfg.Forward.InstanceHeader)
	assert.True(t, cfg.UseRedisHostCache())
}

func TestLoadRailwayValues(t *testing.T) {
	cfg, err := load(viper.New(), envFrom(map[string]string{
		"RAILWAY_ENVIRONMENT":   "production",
		"RAILWAY_REPLICA_ID":    "replica-7",
		"RAILWAY_PUBLIC_DOMAIN": "orca.up.railway.app",
		"DOCKER_HOST":           "unix:///var/run/docker.sock",
	}))
	require.NoError(t, err)

	assert.Equal(t, "replica-7", cfg.Machine.ID)
	assert.Equal(t, "https://orca.up.railway.app", cfg.Machine.PublicAddress)
	assert.Equal(t, "unix:///var/run/docker.sock", cfg.Docker.UnixHost)
	assert.Empty(t, cfg.Docker.TCPHost)
}

func TestLoadConfigFileOverridesPlatform(t *testing.T) {
	v := writeConfigFile(t, `
[machine]
id = "from-file"
public_address = "https://orca.example.com/"

[sessions]
max = 4
settle_window = "100ms"

[hosts]
memory = "512m"
cpus = 0.5
`)

	cfg, err := load(v, envFrom(map[string]string{"FLY_MACHINE_ID": "machine-a"}))
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Machine.ID)
	assert.Equal(t, "https://orca.example.com", cfg.Machine.PublicAddress)
	assert.Equal(t, 4, cfg.Sessions.Max)
	assert.Equal(t, 100*time.Millisecond, cfg.Sessions.SettleWindow)
	assert.Equal(t, int64(512<<20), cfg.Hosts.MemoryBytes)
	assert.Equal(t, int64(500_000_000), cfg.Hosts.NanoCPUs)
}

func TestLoadEnvOverridesConfigFile(t *testing.T) {
	t.Setenv("ORCA_MACHINE_ID", "from-env")
	t.Setenv("ORCA_SESSIONS_MAX", "7")

	v := writeConfigFile(t, `
[machine]
id = "from-file"
`)

	cfg, err := load(v, envFrom(nil))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Machine.ID)
	assert.Equal(t, 7, cfg.Sessions.Max)
}

func TestLoadExplicitOverrideWins(t *testing.T) {
	t.Setenv("ORCA_SESSIONS_MAX", "7")

	v := viper.New()
	v.Set("sessions.max", 3)

	cfg, err := load(v, envFrom(nil))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Sessions.Max)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		set     map[string]any
		wantErr string
	}{
		{name: "redis backend without url", set: map[string]any{"registry.backend": "redis"}, wantErr: "requires registry.redis_url"},
		{name: "unknown backend", set: map[string]any{"registry.backend": "etcd"}, wantErr: "unsupported registry backend"},
		{name: "zero capacity", set: map[string]any{"sessions.max": 0}, wantErr: "sessions.max must be positive"},
		{name: "bad memory", set: map[string]any{"hosts.memory": "lots"}, wantErr: "parse hosts.memory"},
		{name: "bad forward limit", set: map[string]any{"forward.max_response": "huge"}, wantErr: "parse forward.max_response"},
		{name: "zero forward limit", set: map[string]any{"forward.max_response": "0"}, wantErr: "forward.max_response must be positive"},
		{name: "redis host cache without url", set: map[string]any{"hosts.cache": "redis"}, wantErr: "host cache redis"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			for key, value := range tt.set {
				v.Set(key, value)
			}

			_, err := load(v, envFrom(nil))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadMissingExplicitConfigFileFails(t *testing.T) {
	v := viper.New()
	v.SetConfigFile(filepath.Join(t.TempDir(), "missing.toml"))

	_, err := load(v, envFrom(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestLoadDotEnvKeepsExistingVariables(t *testing.T) {
	t.Setenv("ORCA_DOTENV_EXISTING", "shell")
	t.Cleanup(func() { _ = os.Unsetenv("ORCA_DOTENV_FRESH") })

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ORCA_DOTENV_EXISTING=file\nORCA_DOTENV_FRESH=file\n"), 0o600))

	require.NoError(t, LoadDotEnv(path))

	assert.Equal(t, "shell", os.Getenv("ORCA_DOTENV_EXISTING"))
	assert.Equal(t, "file", os.Getenv("ORCA_DOTENV_FRESH"))
}

func TestLoadDotEnvMissingFileIsIgnored(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}
