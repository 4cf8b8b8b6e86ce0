package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bnema/orca/internal/domain"
	"github.com/bnema/orca/internal/ports"
)

const (
	dirMode  = 0o755
	fileMode = 0o644
)

var ErrInvalidName = fmt.Errorf("%w: bad file name", domain.ErrInvalid)

// Store keeps tenant datasets flat under <root>/tenants/<tenant>. The same
// directory is bind mounted into the tenant's host.
type Store struct {
	root string
	mu   sync.RWMutex
}

var _ ports.WorkspaceStore = (*Store)(nil)

func NewStore(root string) *Store {
	return &Store{root: filepath.Clean(root)}
}

func (s *Store) Save(ctx context.Context, tenant domain.TenantID, name string, r io.Reader) (domain.WorkspaceFile, error) {
	if err := ctx.Err(); err != nil {
		return domain.WorkspaceFile{}, err
	}

	path, err := s.pathFor(tenant, name)
	if err != nil {
		return domain.WorkspaceFile{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return domain.WorkspaceFile{}, fmt.Errorf("create tenant workspace: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return domain.WorkspaceFile{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return domain.WorkspaceFile{}, fmt.Errorf("write file %q: %w", name, err)
	}
	if err := tmp.Chmod(fileMode); err != nil {
		_ = tmp.Close()
		return domain.WorkspaceFile{}, fmt.Errorf("chmod file %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return domain.WorkspaceFile{}, fmt.Errorf("close file %q: %w", name, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return domain.WorkspaceFile{}, fmt.Errorf("replace file %q: %w", name, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return domain.WorkspaceFile{}, fmt.Errorf("stat file %q: %w", name, err)
	}
	return toWorkspaceFile(info), nil
}

func (s *Store) List(ctx context.Context, tenant domain.TenantID) ([]domain.WorkspaceFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := tenant.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(domain.TenantDir(s.root, tenant))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.WorkspaceFile{}, nil
		}
		return nil, fmt.Errorf("read tenant workspace: %w", err)
	}

	files := make([]domain.WorkspaceFile, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("stat file %q: %w", entry.Name(), err)
		}
		files = append(files, toWorkspaceFile(info))
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func (s *Store) Delete(ctx context.Context, tenant domain.TenantID, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.pathFor(tenant, name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete file %q: %w", name, err)
	}

	return nil
}

// pathFor resolves a flat file name inside the tenant workspace. Nested paths,
// hidden files and the kernel metadata directory are rejected.
func (s *Store) pathFor(tenant domain.TenantID, name string) (string, error) {
	if err := tenant.Validate(); err != nil {
		return "", err
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" || trimmed != filepath.Base(trimmed) || strings.ContainsAny(trimmed, `/\`) {
		return "", fmt.Errorf("%w %q", ErrInvalidName, name)
	}
	if strings.HasPrefix(trimmed, ".") || trimmed == domain.KernelDirName {
		return "", fmt.Errorf("%w %q", ErrInvalidName, name)
	}

	return filepath.Join(domain.TenantDir(s.root, tenant), trimmed), nil
}

func toWorkspaceFile(info os.FileInfo) domain.WorkspaceFile {
	return domain.WorkspaceFile{
		Name:    info.Name(),
		Size:    info.Size(),
		ModTime: info.ModTime().UTC(),
	}
}
