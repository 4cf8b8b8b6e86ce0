package httpapi

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bnema/orca/internal/adapters/workspace/file"
	"github.com/bnema/orca/internal/application"
	"github.com/bnema/orca/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, cfg Config, sessions Sessions, executor Executor) *Client {
	t.Helper()

	server := httptest.NewServer(NewRouter(cfg, sessions, executor, file.NewStore(t.TempDir())))
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, server.Client())
	require.NoError(t, err)
	return client
}

func TestNewClientRejectsRelativeURL(t *testing.T) {
	_, err := NewClient("localhost:8000", nil)
	require.Error(t, err)

	_, err = NewClient("ftp://orca", nil)
	require.Error(t, err)
}

func TestClientSessionLifecycle(t *testing.T) {
	sessions := newStubSessions()
	sessions.result = domain.ExecutionResult{Stdout: "3\n", Success: true}
	client := newTestClient(t, Config{}, sessions, nil)
	ctx := context.Background()

	created, err := client.CreateSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, CreateSessionResponse{SessionID: "sess-1", MachineID: "machine-b"}, created)

	result, err := client.Execute(ctx, created.SessionID, "print(3)", 1500*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, sessions.result, result)
	require.Len(t, sessions.calls, 1)
	assert.Equal(t, 2*time.Second, sessions.calls[0].Timeout)
	assert.False(t, sessions.calls[0].Local)

	listed, err := client.ListSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, "machine-b", listed.MachineID)
	assert.Empty(t, listed.Sessions)

	require.NoError(t, client.DeleteSession(ctx, created.SessionID))
	assert.Equal(t, []domain.SessionID{"sess-1"}, sessions.deleted)
}

func TestClientRebuildsTypedErrors(t *testing.T) {
	sessions := newStubSessions()
	sessions.err = domain.ErrTimeout
	client := newTestClient(t, Config{}, sessions, nil)

	_, err := client.Execute(context.Background(), "sess-1", "sleep", time.Second)
	require.ErrorIs(t, err, domain.ErrTimeout)
	assert.Equal(t, domain.KindTimeout, domain.KindOf(err))
}

func TestClientUnreachableServer(t *testing.T) {
	server := httptest.NewServer(nil)
	url := server.URL
	server.Close()

	client, err := NewClient(url, nil)
	require.NoError(t, err)

	_, err = client.ListSessions(context.Background())
	require.ErrorIs(t, err, domain.ErrConnectivity)
	assert.Contains(t, err.Error(), url)
}

func TestClientExecuteTenant(t *testing.T) {
	executor := &stubExecutor{result: domain.RichExecutionResult{
		ExecutionResult: domain.ExecutionResult{Stdout: "ok\n", Success: true},
		Displays:        []domain.DisplayPayload{{Type: domain.DisplayHTML, Data: "<b>x</b>"}},
		Results:         []domain.MimeBundle{{"text/plain": "1"}},
	}}
	client := newTestClient(t, Config{}, newStubSessions(), executor)

	result, err := client.ExecuteTenant(context.Background(), "tenant-a", "x", 0)
	require.NoError(t, err)
	assert.Equal(t, executor.result, result)
	assert.Equal(t, time.Duration(0), executor.timeout)
}

func TestClientFiles(t *testing.T) {
	client := newTestClient(t, Config{}, newStubSessions(), nil)
	ctx := context.Background()

	saved, err := client.UploadFile(ctx, "tenant-a", "notes.txt", strings.NewReader("hello"))
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "notes.txt", saved[0].Name)

	files, err := client.ListFiles(ctx, "tenant-a")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, int64(5), files[0].Size)

	require.NoError(t, client.DeleteFile(ctx, "tenant-a", "notes.txt"))

	files, err = client.ListFiles(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Empty(t, files)

	err = client.DeleteFile(ctx, "tenant-a", ".env")
	require.ErrorIs(t, err, domain.ErrInvalid)
}

func TestClientStatusRoundTrip(t *testing.T) {
	created := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	want := application.Status{
		Machine:     domain.MachineRecord{MachineID: "machine-b", Address: "http://b.internal"},
		MaxSessions: 8,
		Sessions:    []domain.Session{{ID: "sess-1", State: domain.SessionReady, CreatedAt: created, LastActivity: created}},
		Hosts:       []domain.HostState{{ID: "c1", Name: "orca-user-a", TenantID: "a", Status: domain.HostRunning, Address: "172.17.0.2"}},
		HostsErr:    errors.New("docker: permission denied"),
	}
	cfg := Config{Status: func(context.Context) application.Status { return want }}
	client := newTestClient(t, cfg, newStubSessions(), nil)

	resp, err := client.Status(context.Background())
	require.NoError(t, err)

	got := resp.Status()
	assert.Equal(t, want.Machine, got.Machine)
	assert.Equal(t, want.MaxSessions, got.MaxSessions)
	assert.Equal(t, want.Sessions, got.Sessions)
	assert.Equal(t, want.Hosts, got.Hosts)
	require.Error(t, got.HostsErr)
	assert.Equal(t, "docker: permission denied", got.HostsErr.Error())
}
