package local

import (
	"context"
	"time"

	"github.com/bnema/orca/internal/domain"
	"github.com/bnema/orca/internal/ports"
)

// Registry is used when the fleet has a single machine. Nothing is recorded,
// so sessions are only ever found in the local process map.
type Registry struct {
	self domain.MachineRecord
}

var _ ports.SessionRegistry = (*Registry)(nil)

func NewRegistry(self domain.MachineRecord) *Registry {
	return &Registry{self: self}
}

func (r *Registry) Self() domain.MachineRecord { return r.self }

func (r *Registry) Register(context.Context, domain.SessionID, time.Duration) bool { return false }

func (r *Registry) LookupOwner(context.Context, domain.SessionID) (string, bool) { return "", false }

func (r *Registry) LookupAddress(context.Context, domain.SessionID) (string, bool) { return "", false }

func (r *Registry) ExtendTTL(context.Context, domain.SessionID, time.Duration) bool { return false }

func (r *Registry) Unregister(context.Context, domain.SessionID) bool { return false }
