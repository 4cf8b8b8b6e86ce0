package ports

import (
	"context"
	"io"

	"github.com/bnema/orca/internal/domain"
)

type WorkspaceStore interface {
	Save(ctx context.Context, tenant domain.TenantID, name string, r io.Reader) (domain.WorkspaceFile, error)
	List(ctx context.Context, tenant domain.TenantID) ([]domain.WorkspaceFile, error)
	Delete(ctx context.Context, tenant domain.TenantID, name string) error
}
