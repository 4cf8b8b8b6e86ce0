package forwarder

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bnema/orca/internal/adapters/fleetauth"
	"github.com/bnema/orca/internal/domain"
	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForwardPostsToOwnerAndDecodesResult(t *testing.T) {
	t.Parallel()

	signer := fleetauth.NewSigner("fleet-secret")
	var captured ExecuteRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, ExecutePath, r.URL.Path)
		assert.Equal(t, "machine-a", r.Header.Get(fleetauth.HeaderForwarded))
		assert.Equal(t, "machine-b", r.Header.Get("Fly-Force-Instance-Id"))

		token, ok := fleetauth.BearerToken(r.Header.Get(fleetauth.HeaderAuth))
		assert.True(t, ok)
		claims, err := signer.Verify(token)
		if assert.NoError(t, err) {
			assert.Equal(t, "machine-a", claims.MachineID)
		}

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, sonic.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"stdout":"2\n","stderr":"","result":"3","success":true}`))
	}))
	t.Cleanup(server.Close)

	f := &Forwarder{
		Origin:         "machine-a",
		InstanceHeader: "Fly-Force-Instance-Id",
		Signer:         signer,
		HTTPClient:     server.Client(),
	}

	result, err := f.Forward(context.Background(), domain.MachineRecord{MachineID: "machine-b", Address: server.URL}, "sess-1", "print(2)\n3", 1500*time.Millisecond)
	require.NoError(t, err)

	assert.Equal(t, domain.SessionID("sess-1"), captured.SessionID)
	assert.Equal(t, "print(2)\n3", captured.Code)
	assert.Equal(t, 2, captured.Timeout)
	assert.Equal(t, "2\n", result.Stdout)
	require.NotNil(t, result.Result)
	assert.Equal(t, "3", *result.Result)
	assert.True(t, result.Success)
}

func TestForwardKeepsRemoteErrorKind(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusRequestTimeout)
		_, _ = w.Write([]byte(`{"error":"execution timed out","kind":"timeout"}`))
	}))
	t.Cleanup(server.Close)

	f := &Forwarder{Origin: "machine-a", HTTPClient: server.Client()}
	_, err := f.Forward(context.Background(), domain.MachineRecord{MachineID: "machine-b", Address: server.URL}, "sess-1", "x", time.Second)
	require.Error(t, err)

	var remote *domain.RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, "machine-b", remote.MachineID)
	assert.ErrorIs(t, err, domain.ErrTimeout)
	assert.Equal(t, domain.KindTimeout, domain.KindOf(err))
}

func TestForwardUntypedFailureIsConnectivity(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	f := &Forwarder{Origin: "machine-a", HTTPClient: server.Client()}
	_, err := f.Forward(context.Background(), domain.MachineRecord{MachineID: "machine-b", Address: server.URL}, "sess-1", "x", time.Second)
	require.ErrorIs(t, err, domain.ErrConnectivity)

	var connErr *domain.ConnectivityError
	require.True(t, errors.As(err, &connErr))
	assert.Equal(t, []string{server.URL}, connErr.Attempts)
	assert.Contains(t, err.Error(), "status 502")
}

func largeResultServer(t *testing.T, stdoutBytes int) *httptest.Server {
	t.Helper()

	body, err := sonic.Marshal(domain.ExecutionResult{Stdout: strings.Repeat("x", stdoutBytes), Success: true})
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestForwardReturnsLargeResultIntact(t *testing.T) {
	t.Parallel()

	server := largeResultServer(t, 2<<20)

	f := &Forwarder{Origin: "machine-a", HTTPClient: server.Client()}
	result, err := f.Forward(context.Background(), domain.MachineRecord{MachineID: "machine-b", Address: server.URL}, "sess-1", "x", time.Second)
	require.NoError(t, err)
	assert.Len(t, result.Stdout, 2<<20)
	assert.True(t, result.Success)
}

func TestForwardOversizedResultIsNotConnectivity(t *testing.T) {
	t.Parallel()

	server := largeResultServer(t, 4096)

	f := &Forwarder{Origin: "machine-a", HTTPClient: server.Client(), MaxResponseBytes: 1024}
	_, err := f.Forward(context.Background(), domain.MachineRecord{MachineID: "machine-b", Address: server.URL}, "sess-1", "x", time.Second)
	require.ErrorIs(t, err, ErrResponseTooLarge)
	assert.NotErrorIs(t, err, domain.ErrConnectivity)
	assert.Contains(t, err.Error(), "1024 bytes")

	var remote *domain.RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, "machine-b", remote.MachineID)
}

func TestForwardResultAtLimitIsAccepted(t *testing.T) {
	t.Parallel()

	body := `{"stdout":"ok","stderr":"","result":null,"success":true}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	f := &Forwarder{Origin: "machine-a", HTTPClient: server.Client(), MaxResponseBytes: int64(len(body))}
	result, err := f.Forward(context.Background(), domain.MachineRecord{MachineID: "machine-b", Address: server.URL}, "sess-1", "x", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Stdout)
}

func TestForwardUnreachableOwnerIsConnectivity(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	address := server.URL
	server.Close()

	f := &Forwarder{Origin: "machine-a"}
	_, err := f.Forward(context.Background(), domain.MachineRecord{MachineID: "machine-b", Address: address}, "sess-1", "x", time.Second)
	require.ErrorIs(t, err, domain.ErrConnectivity)
}

func TestForwardRejectsBadOwner(t *testing.T) {
	t.Parallel()

	f := &Forwarder{Origin: "machine-a"}

	_, err := f.Forward(context.Background(), domain.MachineRecord{MachineID: "machine-b"}, "sess-1", "x", time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "machine address is required")

	_, err = f.Forward(context.Background(), domain.MachineRecord{MachineID: "machine-b", Address: "ftp://host"}, "sess-1", "x", time.Second)
	require.ErrorIs(t, err, domain.ErrConnectivity)
}

func TestForwardHonorsCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &Forwarder{Origin: "machine-a"}
	_, err := f.Forward(ctx, domain.MachineRecord{MachineID: "machine-b", Address: "http://127.0.0.1:1"}, "sess-1", "x", time.Second)
	require.ErrorIs(t, err, context.Canceled)
}

func TestTimeoutSeconds(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, TimeoutSeconds(0))
	assert.Equal(t, 1, TimeoutSeconds(200*time.Millisecond))
	assert.Equal(t, 30, TimeoutSeconds(30*time.Second))
}
