package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/bnema/orca/internal/adapters/forwarder"
	"github.com/bnema/orca/internal/domain"
	"github.com/bytedance/sonic"
)

const maxClientResponseBytes = forwarder.DefaultMaxResponseBytes

// Client calls a running orca server.
type Client struct {
	base *url.URL
	http *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" || parsed.Host == "" {
		return nil, fmt.Errorf("server url %q must be an absolute http(s) url", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{base: parsed, http: httpClient}, nil
}

// Server is the base URL requests go to.
func (c *Client) Server() string { return c.base.String() }

func (c *Client) Status(ctx context.Context) (StatusResponse, error) {
	var out StatusResponse
	err := c.do(ctx, http.MethodGet, "/status", nil, "", &out)
	return out, err
}

func (c *Client) CreateSession(ctx context.Context) (CreateSessionResponse, error) {
	var out CreateSessionResponse
	err := c.do(ctx, http.MethodPost, "/sessions", nil, "", &out)
	return out, err
}

func (c *Client) ListSessions(ctx context.Context) (ListSessionsResponse, error) {
	var out ListSessionsResponse
	err := c.do(ctx, http.MethodGet, "/sessions", nil, "", &out)
	return out, err
}

func (c *Client) Execute(ctx context.Context, id domain.SessionID, code string, timeout time.Duration) (domain.ExecutionResult, error) {
	body, err := sonic.Marshal(forwarder.ExecuteRequest{
		SessionID: id,
		Code:      code,
		Timeout:   forwarder.TimeoutSeconds(timeout),
	})
	if err != nil {
		return domain.ExecutionResult{}, fmt.Errorf("encode execute request: %w", err)
	}

	var out domain.ExecutionResult
	err = c.do(ctx, http.MethodPost, forwarder.ExecutePath, bytes.NewReader(body), "application/json", &out)
	return out, err
}

func (c *Client) DeleteSession(ctx context.Context, id domain.SessionID) error {
	return c.do(ctx, http.MethodDelete, "/sessions/"+url.PathEscape(string(id)), nil, "", nil)
}

func (c *Client) ExecuteTenant(ctx context.Context, tenant domain.TenantID, code string, timeout time.Duration) (domain.RichExecutionResult, error) {
	body, err := sonic.Marshal(ExecuteTenantRequest{
		UserID:  tenant,
		Code:    code,
		Timeout: forwarder.TimeoutSeconds(timeout),
	})
	if err != nil {
		return domain.RichExecutionResult{}, fmt.Errorf("encode execute request: %w", err)
	}

	var out domain.RichExecutionResult
	err = c.do(ctx, http.MethodPost, "/execute", bytes.NewReader(body), "application/json", &out)
	return out, err
}

func (c *Client) UploadFile(ctx context.Context, tenant domain.TenantID, name string, r io.Reader) ([]domain.WorkspaceFile, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(uploadField, name)
	if err != nil {
		return nil, fmt.Errorf("create form part: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finish upload body: %w", err)
	}

	var out struct {
		Files []domain.WorkspaceFile `json:"files"`
	}
	err = c.do(ctx, http.MethodPost, "/files/"+url.PathEscape(string(tenant)), &buf, mw.FormDataContentType(), &out)
	return out.Files, err
}

func (c *Client) ListFiles(ctx context.Context, tenant domain.TenantID) ([]domain.WorkspaceFile, error) {
	var out struct {
		Files []domain.WorkspaceFile `json:"files"`
	}
	err := c.do(ctx, http.MethodGet, "/files/"+url.PathEscape(string(tenant)), nil, "", &out)
	return out.Files, err
}

func (c *Client) DeleteFile(ctx context.Context, tenant domain.TenantID, name string) error {
	path := "/files/" + url.PathEscape(string(tenant)) + "/" + url.PathEscape(name)
	return c.do(ctx, http.MethodDelete, path, nil, "", nil)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	endpoint := c.base.JoinPath(path).String()
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &domain.ConnectivityError{Target: "orca server", Attempts: []string{c.base.String()}, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxClientResponseBytes+1))
	if err != nil {
		return &domain.ConnectivityError{Target: "orca server", Attempts: []string{c.base.String()}, Err: err}
	}
	if int64(len(raw)) > maxClientResponseBytes {
		return fmt.Errorf("%s %s: %w of %d bytes", method, path, forwarder.ErrResponseTooLarge, maxClientResponseBytes)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// responseError rebuilds a typed error from the server's error body.
func responseError(status int, raw []byte) error {
	var body forwarder.ErrorResponse
	if err := sonic.Unmarshal(raw, &body); err != nil || body.Error == "" {
		return fmt.Errorf("server returned status %d", status)
	}
	if sentinel := body.Kind.Sentinel(); sentinel != nil {
		return fmt.Errorf("%s: %w", body.Error, sentinel)
	}
	return fmt.Errorf("server returned status %d: %s", status, body.Error)
}
