package docker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/bnema/orca/internal/domain"
	"github.com/docker/docker/client"
)

const envEndpointName = "environment"

// Endpoint is one candidate way of reaching the engine.
type Endpoint struct {
	Name string
	Host string
}

type Options struct {
	TCPHost     string
	UnixHost    string
	Sockets     []string
	PingTimeout time.Duration
}

// Endpoints lists the engine candidates in the order they are tried: the
// configured TCP host, well-known sockets that exist on disk, the configured
// unix host, then the process environment.
func Endpoints(opts Options) []Endpoint {
	return endpoints(opts, fileExists)
}

func endpoints(opts Options, exists func(string) bool) []Endpoint {
	var eps []Endpoint
	seen := map[string]bool{}
	add := func(host string) {
		if host == "" || seen[host] {
			return
		}
		seen[host] = true
		eps = append(eps, Endpoint{Name: host, Host: host})
	}

	add(opts.TCPHost)
	for _, socket := range opts.Sockets {
		if exists(socket) {
			add("unix://" + socket)
		}
	}
	add(opts.UnixHost)

	return append(eps, Endpoint{Name: envEndpointName})
}

type dialFunc func(ctx context.Context, ep Endpoint) (containerAPI, error)

func dialEndpoint(ctx context.Context, ep Endpoint) (containerAPI, error) {
	opts := []client.Opt{client.WithAPIVersionNegotiation()}
	if ep.Host == "" {
		opts = append([]client.Opt{client.FromEnv}, opts...)
	} else {
		opts = append(opts, client.WithHost(ep.Host))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}

	if _, err := cli.Ping(ctx); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("ping docker engine: %w", err)
	}

	return cli, nil
}

// connectChain tries every endpoint in order and returns the first that
// answers a ping. A canceled context stops the chain early.
func connectChain(ctx context.Context, eps []Endpoint, dial dialFunc, pingTimeout time.Duration) (containerAPI, Endpoint, error) {
	var (
		attempts []string
		errs     []error
	)

	for _, ep := range eps {
		attemptCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		api, err := dial(attemptCtx, ep)
		cancel()
		if err == nil {
			return api, ep, nil
		}

		attempts = append(attempts, ep.Name)
		errs = append(errs, fmt.Errorf("%s: %w", ep.Name, err))

		if shouldStopChain(ctx) {
			break
		}
	}

	return nil, Endpoint{}, &domain.ConnectivityError{
		Target:   engineTarget,
		Attempts: attempts,
		Err:      errors.Join(errs...),
	}
}

func shouldStopChain(ctx context.Context) bool {
	err := ctx.Err()
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
