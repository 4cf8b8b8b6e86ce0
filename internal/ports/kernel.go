package ports

import (
	"context"

	"github.com/bnema/orca/internal/domain"
)

type KernelSpec struct {
	ID      string
	WorkDir string
}

type KernelLauncher interface {
	Launch(ctx context.Context, spec KernelSpec) (KernelProcess, error)
}

type KernelProcess interface {
	ConnectionInfo() domain.ConnectionInfo
	Alive() bool
	// Kill force-stops the process. Calling it again is a no-op.
	Kill() error
}

// KernelClient speaks to one running interpreter. IOPub and Replies deliver
// every message the kernel publishes; callers filter by parent id.
type KernelClient interface {
	Execute(ctx context.Context, code string) (string, error)
	KernelInfo(ctx context.Context) error
	Interrupt(ctx context.Context) error
	IOPub() <-chan domain.KernelMessage
	Replies() <-chan domain.ExecuteReply
	Close() error
}

type KernelDialer interface {
	Dial(ctx context.Context, info domain.ConnectionInfo) (KernelClient, error)
}

type ConnectionLoader interface {
	Load(path string) (domain.ConnectionInfo, error)
}
