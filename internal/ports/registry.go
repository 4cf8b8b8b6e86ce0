package ports

import (
	"context"
	"time"

	"github.com/bnema/orca/internal/domain"
)

// SessionRegistry maps session ids to the machine that owns them. Every method
// degrades to failure or "none" when the backing store is unreachable.
type SessionRegistry interface {
	Register(ctx context.Context, id domain.SessionID, ttl time.Duration) bool
	LookupOwner(ctx context.Context, id domain.SessionID) (string, bool)
	LookupAddress(ctx context.Context, id domain.SessionID) (string, bool)
	ExtendTTL(ctx context.Context, id domain.SessionID, ttl time.Duration) bool
	Unregister(ctx context.Context, id domain.SessionID) bool
	Self() domain.MachineRecord
}
