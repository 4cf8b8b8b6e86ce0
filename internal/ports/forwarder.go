package ports

import (
	"context"
	"time"

	"github.com/bnema/orca/internal/domain"
)

type Forwarder interface {
	Forward(ctx context.Context, owner domain.MachineRecord, id domain.SessionID, code string, timeout time.Duration) (domain.ExecutionResult, error)
}
