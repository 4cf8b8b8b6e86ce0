package application

import (
	"context"

	"github.com/bnema/orca/internal/domain"
)

// Status is a point-in-time view of this machine.
type Status struct {
	Machine     domain.MachineRecord
	Sessions    []domain.Session
	MaxSessions int
	Hosts       []domain.HostState
	// HostsErr is set when the isolation engine could not be queried. The
	// rest of the status is still valid.
	HostsErr error
}

func (s *KernelService) MaxSessions() int {
	return s.cfg.MaxSessions
}

// QueryStatus gathers sessions and hosts. hosts may be nil.
func QueryStatus(ctx context.Context, kernels *KernelService, hosts *HostService) Status {
	status := Status{
		Machine:     kernels.Self(),
		Sessions:    kernels.ListSessions(),
		MaxSessions: kernels.MaxSessions(),
		Hosts:       []domain.HostState{},
	}
	if hosts == nil {
		return status
	}

	states, err := hosts.ListHosts(ctx)
	if err != nil {
		status.HostsErr = err
		return status
	}
	status.Hosts = states
	return status
}
