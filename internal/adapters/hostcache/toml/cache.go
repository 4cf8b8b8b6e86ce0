package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bnema/orca/internal/domain"
	"github.com/bnema/orca/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	hostsFileMode   = 0o600
	hostsDirMode    = 0o700
	HostsFileName   = "hosts.toml"
	tempFilePattern = ".hosts-*.toml.tmp"
)

// Cache keeps the tenant to host mapping in a local state file. It is used
// when no Redis is configured; the idle timeout is applied by the reaper from
// LastUsed rather than by key expiry.
type Cache struct {
	path string
	mu   *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.HostCache = (*Cache)(nil)

func NewCache(path string) (*Cache, error) {
	if path == "" {
		return nil, errors.New("hosts state path is empty")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve hosts state path: %w", err)
	}
	absPath = filepath.Clean(absPath)

	return &Cache{path: absPath, mu: lockForPath(absPath)}, nil
}

func (c *Cache) Get(ctx context.Context, tenant domain.TenantID) (domain.HostCacheEntry, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.HostCacheEntry{}, false, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	file, err := c.readSchema()
	if err != nil {
		return domain.HostCacheEntry{}, false, err
	}

	for _, entry := range file.Hosts {
		if entry.TenantID == string(tenant) {
			return fromSchema(entry), true, nil
		}
	}

	return domain.HostCacheEntry{}, false, nil
}

func (c *Cache) Put(ctx context.Context, entry domain.HostCacheEntry, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	file, err := c.readSchema()
	if err != nil {
		return err
	}

	encoded := toSchema(entry)
	updated := false
	for i := range file.Hosts {
		if file.Hosts[i].TenantID == encoded.TenantID {
			file.Hosts[i] = encoded
			updated = true
			break
		}
	}
	if !updated {
		file.Hosts = append(file.Hosts, encoded)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return c.writeSchema(file)
}

func (c *Cache) Evict(ctx context.Context, tenant domain.TenantID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	file, err := c.readSchema()
	if err != nil {
		return err
	}

	kept := file.Hosts[:0]
	for _, entry := range file.Hosts {
		if entry.TenantID != string(tenant) {
			kept = append(kept, entry)
		}
	}
	if len(kept) == len(file.Hosts) {
		return nil
	}
	file.Hosts = kept

	return c.writeSchema(file)
}

func (c *Cache) List(ctx context.Context) ([]domain.HostCacheEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	file, err := c.readSchema()
	if err != nil {
		return nil, err
	}

	entries := make([]domain.HostCacheEntry, 0, len(file.Hosts))
	for _, entry := range file.Hosts {
		entries = append(entries, fromSchema(entry))
	}

	return entries, nil
}

func (c *Cache) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read hosts file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode hosts file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func (c *Cache) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(c.path), hostsDirMode); err != nil {
		return fmt.Errorf("create hosts directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode hosts file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(c.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp hosts file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp hosts file: %w", err)
	}

	if err := tempFile.Chmod(hostsFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp hosts file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp hosts file: %w", err)
	}

	if err := os.Rename(tempName, c.path); err != nil {
		return fmt.Errorf("replace hosts file: %w", err)
	}
	cleanup = false

	return nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func toSchema(entry domain.HostCacheEntry) hostSchema {
	return hostSchema{
		TenantID: string(entry.TenantID),
		HostID:   entry.HostID,
		LastUsed: formatTime(entry.LastUsed),
	}
}

func fromSchema(entry hostSchema) domain.HostCacheEntry {
	return domain.HostCacheEntry{
		TenantID: domain.TenantID(entry.TenantID),
		HostID:   entry.HostID,
		LastUsed: parseTime(entry.LastUsed),
	}
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339Nano)
}
