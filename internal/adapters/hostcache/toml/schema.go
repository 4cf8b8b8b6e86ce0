package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version int          `toml:"version"`
	Hosts   []hostSchema `toml:"hosts"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported hosts schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type hostSchema struct {
	TenantID string `toml:"tenant_id"`
	HostID   string `toml:"host_id"`
	LastUsed string `toml:"last_used,omitempty"`
}
