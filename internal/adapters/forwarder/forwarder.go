package forwarder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/bnema/orca/internal/adapters/fleetauth"
	"github.com/bnema/orca/internal/domain"
	"github.com/bnema/orca/internal/logging"
	"github.com/bnema/orca/internal/ports"
	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

const (
	ExecutePath = "/sessions/execute"

	// DefaultMaxResponseBytes bounds a forwarded result body.
	DefaultMaxResponseBytes int64 = 64 << 20

	clientSlack = 5 * time.Second
)

// ErrResponseTooLarge means the owner answered but the result exceeded the
// configured body limit. The owner was reachable, so this is not a
// connectivity failure.
var ErrResponseTooLarge = errors.New("forwarded response exceeds limit")

var _ ports.Forwarder = (*Forwarder)(nil)

// ExecuteRequest is the body of a session execute call, local or forwarded.
type ExecuteRequest struct {
	SessionID domain.SessionID `json:"session_id"`
	Code      string           `json:"code"`
	Timeout   int              `json:"timeout,omitempty"`
}

// ErrorResponse is the typed error body every endpoint returns.
type ErrorResponse struct {
	Error string           `json:"error"`
	Kind  domain.ErrorKind `json:"kind"`
}

// Forwarder relays execute calls to the machine that owns a session.
type Forwarder struct {
	Origin string
	// InstanceHeader, when set, carries the owner machine id so the platform
	// router pins the request to that instance.
	InstanceHeader string
	Signer         *fleetauth.Signer
	HTTPClient     *http.Client
	// MaxResponseBytes caps the result body read from the owner. Zero means
	// DefaultMaxResponseBytes.
	MaxResponseBytes int64
	Logger           *zap.Logger
}

func (f *Forwarder) Forward(ctx context.Context, owner domain.MachineRecord, id domain.SessionID, code string, timeout time.Duration) (domain.ExecutionResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.ExecutionResult{}, err
	}
	if err := owner.Validate(); err != nil {
		return domain.ExecutionResult{}, fmt.Errorf("forward session %s: %w", id, err)
	}
	if timeout <= 0 {
		timeout = domain.DefaultExecutionTimeout
	}

	endpoint, err := buildURL(owner.Address, ExecutePath)
	if err != nil {
		return domain.ExecutionResult{}, f.connectivity(owner, err)
	}

	body, err := sonic.Marshal(ExecuteRequest{
		SessionID: id,
		Code:      code,
		Timeout:   TimeoutSeconds(timeout),
	})
	if err != nil {
		return domain.ExecutionResult{}, fmt.Errorf("encode forward request: %w", err)
	}

	requestCtx, cancel := context.WithTimeout(ctx, timeout+clientSlack)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.ExecutionResult{}, fmt.Errorf("create forward request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(fleetauth.HeaderForwarded, f.Origin)
	if f.InstanceHeader != "" {
		req.Header.Set(f.InstanceHeader, owner.MachineID)
	}
	if f.Signer.Enabled() {
		token, err := f.Signer.Issue(f.Origin)
		if err != nil {
			return domain.ExecutionResult{}, err
		}
		req.Header.Set(fleetauth.HeaderAuth, "Bearer "+token)
	}

	logger := logging.OrNop(f.Logger)
	logger.Debug("forwarding execution",
		zap.String("session_id", string(id)),
		zap.String("owner", owner.MachineID),
		zap.String("endpoint", endpoint))

	resp, err := f.httpClient().Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.ExecutionResult{}, ctxErr
		}
		return domain.ExecutionResult{}, f.connectivity(owner, err)
	}
	defer func() { _ = resp.Body.Close() }()

	limit := f.maxResponseBytes()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return domain.ExecutionResult{}, f.connectivity(owner, fmt.Errorf("read response: %w", err))
	}
	if int64(len(raw)) > limit {
		return domain.ExecutionResult{}, &domain.RemoteError{
			MachineID: owner.MachineID,
			Err:       fmt.Errorf("%w of %d bytes", ErrResponseTooLarge, limit),
		}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return domain.ExecutionResult{}, f.remoteFailure(owner, resp.StatusCode, raw)
	}

	var result domain.ExecutionResult
	if err := sonic.Unmarshal(raw, &result); err != nil {
		return domain.ExecutionResult{}, f.connectivity(owner, fmt.Errorf("decode response: %w", err))
	}
	return result, nil
}

func (f *Forwarder) maxResponseBytes() int64 {
	if f.MaxResponseBytes > 0 {
		return f.MaxResponseBytes
	}
	return DefaultMaxResponseBytes
}

// remoteFailure keeps the kind reported by the owner. Bodies without a known
// kind are treated as the owner being unreachable.
func (f *Forwarder) remoteFailure(owner domain.MachineRecord, status int, raw []byte) error {
	var body ErrorResponse
	if err := sonic.Unmarshal(raw, &body); err == nil {
		if sentinel := body.Kind.Sentinel(); sentinel != nil {
			err := sentinel
			if body.Error != "" {
				err = fmt.Errorf("%s: %w", body.Error, sentinel)
			}
			return &domain.RemoteError{MachineID: owner.MachineID, Err: err}
		}
	}
	return f.connectivity(owner, fmt.Errorf("status %d", status))
}

func (f *Forwarder) connectivity(owner domain.MachineRecord, err error) error {
	return &domain.ConnectivityError{
		Target:   "machine " + owner.MachineID,
		Attempts: []string{owner.Address},
		Err:      err,
	}
}

func (f *Forwarder) httpClient() *http.Client {
	if f.HTTPClient != nil {
		return f.HTTPClient
	}
	return http.DefaultClient
}

// TimeoutSeconds rounds a timeout up to whole seconds for the wire.
func TimeoutSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}

func buildURL(baseURL string, path string) (string, error) {
	if baseURL == "" {
		return "", errors.New("machine address is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse machine address: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("machine address must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("machine address host is required")
	}

	return parsed.JoinPath(path).String(), nil
}
