package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bnema/orca/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSaveListDelete(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewStore(root)
	ctx := context.Background()

	saved, err := store.Save(ctx, "tenant-a", "data.csv", strings.NewReader("a,b\n1,2\n"))
	require.NoError(t, err)
	assert.Equal(t, "data.csv", saved.Name)
	assert.Equal(t, int64(8), saved.Size)

	content, err := os.ReadFile(filepath.Join(root, "tenants", "tenant-a", "data.csv"))
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(content))

	_, err = store.Save(ctx, "tenant-a", "b.txt", strings.NewReader("x"))
	require.NoError(t, err)

	files, err := store.List(ctx, "tenant-a")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "b.txt", files[0].Name)
	assert.Equal(t, "data.csv", files[1].Name)

	require.NoError(t, store.Delete(ctx, "tenant-a", "data.csv"))
	require.NoError(t, store.Delete(ctx, "tenant-a", "data.csv"))

	files, err = store.List(ctx, "tenant-a")
	require.NoError(t, err)
	require.Len(t, files, 1)
}

func TestStoreSaveOverwrites(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	ctx := context.Background()

	_, err := store.Save(ctx, "tenant-a", "data.csv", strings.NewReader("first"))
	require.NoError(t, err)
	saved, err := store.Save(ctx, "tenant-a", "data.csv", strings.NewReader("second!"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), saved.Size)

	files, err := store.List(ctx, "tenant-a")
	require.NoError(t, err)
	require.Len(t, files, 1)
}

func TestStoreListSkipsKernelDirAndMissingTenant(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewStore(root)
	ctx := context.Background()

	files, err := store.List(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, files)

	kernelDir := domain.KernelDir(root, "tenant-a")
	require.NoError(t, os.MkdirAll(kernelDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(kernelDir, "connection.json"), []byte("{}"), 0o600))

	files, err = store.List(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestStoreRejectsUnsafeNames(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	ctx := context.Background()

	for _, name := range []string{"", "../escape", "nested/file", ".hidden", "kernel", `..\x`} {
		_, err := store.Save(ctx, "tenant-a", name, strings.NewReader("x"))
		require.ErrorIs(t, err, ErrInvalidName, name)
	}

	_, err := store.Save(ctx, "../tenant", "file", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid tenant id")
}

func TestStoreHonorsCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewStore(t.TempDir())
	_, err := store.Save(ctx, "tenant-a", "x", strings.NewReader("x"))
	require.ErrorIs(t, err, context.Canceled)
	_, err = store.List(ctx, "tenant-a")
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, store.Delete(ctx, "tenant-a", "x"), context.Canceled)
}
