package domain

import (
	"fmt"
	"strings"
	"time"
)

const DefaultSessionTTL = time.Hour

type SessionID string

// MachineRecord identifies a fleet member. Address is the publicly reachable
// base URL other machines forward to.
type MachineRecord struct {
	MachineID string
	Address   string
}

func (m MachineRecord) Validate() error {
	if strings.TrimSpace(m.MachineID) == "" {
		return fmt.Errorf("machine id is required")
	}
	if strings.TrimSpace(m.Address) == "" {
		return fmt.Errorf("machine address is required")
	}

	return nil
}

type SessionState string

const (
	SessionStarting   SessionState = "starting"
	SessionReady      SessionState = "ready"
	SessionExecuting  SessionState = "executing"
	SessionTerminated SessionState = "terminated"
)

type Session struct {
	ID            SessionID
	OwningMachine MachineRecord
	State         SessionState
	WorkDir       string
	CreatedAt     time.Time
	LastActivity  time.Time
	TTL           time.Duration
}

// SessionRecord is the registry entry for a session.
type SessionRecord struct {
	SessionID      SessionID `json:"session_id"`
	MachineID      string    `json:"machine_id"`
	MachineAddress string    `json:"machine_address"`
	TTLSeconds     int64     `json:"ttl_seconds"`
}

func (r SessionRecord) Owner() MachineRecord {
	return MachineRecord{MachineID: r.MachineID, Address: r.MachineAddress}
}
