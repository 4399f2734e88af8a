package store

import "fmt"

// ErrorKind classifies remote-store failures.
type ErrorKind int

const (
	// KindUnavailable indicates there is no usable store handle.
	KindUnavailable ErrorKind = iota + 1
	// KindPermissionDenied indicates the backend rejected the credentials
	// or the operation.
	KindPermissionDenied
	// KindUnreachable indicates a transport-level failure.
	KindUnreachable
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindPermissionDenied:
		return "permission_denied"
	case KindUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// StoreError is a remote-store failure. Callers at the remote boundary
// catch it, log a warning and degrade to a safe default instead of
// propagating.
type StoreError struct {
	Kind ErrorKind
	Op   string // "load" or "save"
	Err  error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("store %s failed (%s): %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("store %s failed (%s)", e.Op, e.Kind)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
