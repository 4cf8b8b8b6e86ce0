package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bnema/orca/internal/domain"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, machineID string) (*Registry, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	registry, err := NewRegistry(client, domain.MachineRecord{
		MachineID: machineID,
		Address:   "https://" + machineID + ".internal",
	}, nil)
	require.NoError(t, err)

	return registry, mr
}

func TestRegistryRegisterStoresRecordWithTTL(t *testing.T) {
	t.Parallel()

	registry, mr := newTestRegistry(t, "machine-a")
	ctx := context.Background()

	require.True(t, registry.Register(ctx, "sess-1", 10*time.Minute))

	raw, err := mr.Get("session:sess-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"session_id":"sess-1","machine_id":"machine-a","machine_address":"https://machine-a.internal","ttl_seconds":600}`, raw)
	assert.Equal(t, 10*time.Minute, mr.TTL("session:sess-1"))

	owner, ok := registry.LookupOwner(ctx, "sess-1")
	require.True(t, ok)
	assert.Equal(t, "machine-a", owner)

	address, ok := registry.LookupAddress(ctx, "sess-1")
	require.True(t, ok)
	assert.Equal(t, "https://machine-a.internal", address)
}

func TestRegistryDefaultTTL(t *testing.T) {
	t.Parallel()

	registry, mr := newTestRegistry(t, "machine-a")
	require.True(t, registry.Register(context.Background(), "sess-1", 0))
	assert.Equal(t, domain.DefaultSessionTTL, mr.TTL("session:sess-1"))
}

func TestRegistryExtendTTL(t *testing.T) {
	t.Parallel()

	registry, mr := newTestRegistry(t, "machine-a")
	ctx := context.Background()

	require.True(t, registry.Register(ctx, "sess-1", time.Minute))
	mr.FastForward(50 * time.Second)

	require.True(t, registry.ExtendTTL(ctx, "sess-1", time.Hour))
	assert.Equal(t, time.Hour, mr.TTL("session:sess-1"))

	assert.False(t, registry.ExtendTTL(ctx, "missing", time.Hour))
}

func TestRegistryRecordExpires(t *testing.T) {
	t.Parallel()

	registry, mr := newTestRegistry(t, "machine-a")
	ctx := context.Background()

	require.True(t, registry.Register(ctx, "sess-1", time.Minute))
	mr.FastForward(2 * time.Minute)

	_, ok := registry.LookupOwner(ctx, "sess-1")
	assert.False(t, ok)
}

func TestRegistryLastWriterWins(t *testing.T) {
	t.Parallel()

	first, mr := newTestRegistry(t, "machine-a")
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	second, err := NewRegistry(client, domain.MachineRecord{MachineID: "machine-b", Address: "https://machine-b.internal"}, nil)
	require.NoError(t, err)

	ctx := context.Background()
	require.True(t, first.Register(ctx, "sess-1", time.Minute))
	require.True(t, second.Register(ctx, "sess-1", time.Minute))

	owner, ok := first.LookupOwner(ctx, "sess-1")
	require.True(t, ok)
	assert.Equal(t, "machine-b", owner)
}

func TestRegistryUnregister(t *testing.T) {
	t.Parallel()

	registry, mr := newTestRegistry(t, "machine-a")
	ctx := context.Background()

	require.True(t, registry.Register(ctx, "sess-1", time.Minute))
	require.True(t, registry.Unregister(ctx, "sess-1"))
	assert.False(t, mr.Exists("session:sess-1"))

	assert.True(t, registry.Unregister(ctx, "sess-1"))
}

func TestRegistryIgnoresCorruptRecord(t *testing.T) {
	t.Parallel()

	registry, mr := newTestRegistry(t, "machine-a")
	require.NoError(t, mr.Set("session:sess-1", "not json"))

	_, ok := registry.LookupOwner(context.Background(), "sess-1")
	assert.False(t, ok)
}

func TestRegistryDegradesWhenRedisIsDown(t *testing.T) {
	t.Parallel()

	registry, mr := newTestRegistry(t, "machine-a")
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.False(t, registry.Register(ctx, "sess-1", time.Minute))
	_, ok := registry.LookupOwner(ctx, "sess-1")
	assert.False(t, ok)
	_, ok = registry.LookupAddress(ctx, "sess-1")
	assert.False(t, ok)
	assert.False(t, registry.ExtendTTL(ctx, "sess-1", time.Minute))
	assert.False(t, registry.Unregister(ctx, "sess-1"))
	assert.Equal(t, "machine-a", registry.Self().MachineID)
}

func TestNewRegistryValidatesMachine(t *testing.T) {
	t.Parallel()

	client := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = client.Close() })

	_, err := NewRegistry(client, domain.MachineRecord{MachineID: "machine-a"}, nil)
	require.Error(t, err)

	_, err = NewRegistry(nil, domain.MachineRecord{MachineID: "a", Address: "b"}, nil)
	require.Error(t, err)
}
