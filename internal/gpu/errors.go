package gpu

import (
	"errors"
	"fmt"
)

// ErrNotSupported is returned when a backend's native interface is not
// present on this host. It means "no data available", not a crash.
var ErrNotSupported = errors.New("gpu backend not supported on this system")

// ErrUnknownBackend is returned by Detector.Detect for an unregistered name.
var ErrUnknownBackend = errors.New("unknown gpu backend")

// OperationFailedError reports a failed acquisition step. Detail carries the
// native diagnostic text; the native error value itself is not kept.
type OperationFailedError struct {
	Op     string
	Detail string
}

func (e *OperationFailedError) Error() string {
	if e.Op == "" {
		return "gpu operation failed: " + e.Detail
	}
	return fmt.Sprintf("gpu operation failed: %s: %s", e.Op, e.Detail)
}

// IsNotSupported reports whether err means the backend is unavailable.
func IsNotSupported(err error) bool {
	return errors.Is(err, ErrNotSupported)
}

// IsOperationFailed reports whether err is an *OperationFailedError.
func IsOperationFailed(err error) bool {
	var opErr *OperationFailedError
	return errors.As(err, &opErr)
}

func notSupported(cause error) error {
	if cause == nil {
		return ErrNotSupported
	}
	return fmt.Errorf("%w: %s", ErrNotSupported, cause.Error())
}

func operationFailed(op string, cause error) error {
	return &OperationFailedError{Op: op, Detail: cause.Error()}
}
