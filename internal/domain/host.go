package domain

import (
	"fmt"
	"path/filepath"
	"regexp"
	"time"
)

type TenantID string

var tenantIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,127}$`)

// Validate rejects tenant ids that cannot be used verbatim as a container name
// suffix or a workspace directory name.
func (t TenantID) Validate() error {
	if !tenantIDPattern.MatchString(string(t)) {
		return fmt.Errorf("%w: invalid tenant id %q", ErrInvalid, string(t))
	}
	return nil
}

type HostStatus string

const (
	HostStarting HostStatus = "starting"
	HostRunning  HostStatus = "running"
	HostStopped  HostStatus = "stopped"
	HostMissing  HostStatus = "missing"
)

const (
	HostNamePrefix = "orca-user-"
	TenantEnvVar   = "ORCA_TENANT_ID"
	LabelManaged   = "orca.managed"
	LabelTenant    = "orca.tenant"
)

// HostName derives the isolated host name from the tenant id.
func HostName(tenant TenantID) string {
	return HostNamePrefix + string(tenant)
}

type Host struct {
	ID                 string
	TenantID           TenantID
	Name               string
	Status             HostStatus
	WorkspacePath      string
	KernelMetadataPath string
	// Address is the IP the host's interpreter ports are reachable on.
	Address  string
	LastUsed time.Time
}

// HostSpec is everything the isolation engine needs to start a host.
type HostSpec struct {
	TenantID    TenantID
	Name        string
	Image       string
	Binds       []BindMount
	Env         map[string]string
	Labels      map[string]string
	MemoryBytes int64
	NanoCPUs    int64
}

type BindMount struct {
	Source string
	Target string
}

// HostState is what the engine reports about a host.
type HostState struct {
	ID       string
	Name     string
	TenantID TenantID
	Status   HostStatus
	Address  string
}

// HostCacheEntry is one tenant to host mapping.
type HostCacheEntry struct {
	TenantID TenantID
	HostID   string
	LastUsed time.Time
}

// ConnectionInfo is the interpreter connection descriptor written by a kernel.
type ConnectionInfo struct {
	IP              string `json:"ip"`
	Transport       string `json:"transport"`
	ShellPort       int    `json:"shell_port"`
	IOPubPort       int    `json:"iopub_port"`
	StdinPort       int    `json:"stdin_port"`
	ControlPort     int    `json:"control_port"`
	HBPort          int    `json:"hb_port"`
	Key             string `json:"key"`
	SignatureScheme string `json:"signature_scheme"`
	KernelName      string `json:"kernel_name,omitempty"`
}

func (c ConnectionInfo) Validate() error {
	if c.ShellPort <= 0 || c.IOPubPort <= 0 || c.ControlPort <= 0 {
		return fmt.Errorf("connection info is missing channel ports")
	}
	if c.Transport != "" && c.Transport != "tcp" {
		return fmt.Errorf("unsupported kernel transport %q", c.Transport)
	}
	return nil
}

// WorkspaceFile is a tenant dataset visible to the tenant's host under /data.
type WorkspaceFile struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modified"`
}

const (
	TenantsDirName     = "tenants"
	KernelDirName      = "kernel"
	ConnectionFileName = "connection.json"
)

// TenantDir is the tenant workspace on the machine, mounted at /data in the
// tenant's host.
func TenantDir(root string, tenant TenantID) string {
	return filepath.Join(root, TenantsDirName, string(tenant))
}

// KernelDir holds the connection file the host's interpreter writes.
func KernelDir(root string, tenant TenantID) string {
	return filepath.Join(TenantDir(root, tenant), KernelDirName)
}
