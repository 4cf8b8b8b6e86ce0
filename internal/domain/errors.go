package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrTimeout        = errors.New("timed out")
	ErrCapacity       = errors.New("session capacity reached")
	ErrConnectivity   = errors.New("connectivity failure")
	ErrStartupFailure = errors.New("startup failure")
	ErrInvalid        = errors.New("invalid request")
)

var (
	ErrSessionNotFound = fmt.Errorf("session %w", ErrNotFound)
	// ErrSessionNotLocal means the registry names this machine as owner but the
	// local process map has no handle for the session.
	ErrSessionNotLocal = fmt.Errorf("session registered but %w locally", ErrNotFound)
	ErrHostNotFound    = fmt.Errorf("host %w", ErrNotFound)
)

type ErrorKind string

const (
	KindNotFound       ErrorKind = "not_found"
	KindTimeout        ErrorKind = "timeout"
	KindCapacity       ErrorKind = "capacity"
	KindConnectivity   ErrorKind = "connectivity"
	KindStartupFailure ErrorKind = "startup_failure"
	KindInvalid        ErrorKind = "invalid"
	KindInternal       ErrorKind = "internal"
)

func (k ErrorKind) Sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindTimeout:
		return ErrTimeout
	case KindCapacity:
		return ErrCapacity
	case KindConnectivity:
		return ErrConnectivity
	case KindStartupFailure:
		return ErrStartupFailure
	case KindInvalid:
		return ErrInvalid
	default:
		return nil
	}
}

// KindOf maps err onto the error taxonomy. Unknown errors are KindInternal.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, ErrCapacity):
		return KindCapacity
	case errors.Is(err, ErrConnectivity):
		return KindConnectivity
	case errors.Is(err, ErrStartupFailure):
		return KindStartupFailure
	case errors.Is(err, ErrInvalid):
		return KindInvalid
	default:
		return KindInternal
	}
}

// ConnectivityError reports an unreachable target: the isolation engine or a
// remote machine. Attempts lists every endpoint tried, in order.
type ConnectivityError struct {
	Target   string
	Attempts []string
	Err      error
}

func (e *ConnectivityError) Error() string {
	var b strings.Builder
	b.WriteString("connect to ")
	b.WriteString(e.Target)
	if len(e.Attempts) > 0 {
		b.WriteString(" (tried ")
		b.WriteString(strings.Join(e.Attempts, ", "))
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

func (e *ConnectivityError) Is(target error) bool { return target == ErrConnectivity }

// RemoteError labels a failure that happened on the machine owning a session.
type RemoteError struct {
	MachineID string
	Err       error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("machine %s: %v", e.MachineID, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }
