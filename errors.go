package typecache

import (
	"fmt"
	"reflect"
)

type constError string

func (e constError) Error() string { return string(e) }

const (
	// ErrNilType is returned when a nil reflect.Type is passed to a TypeValue.
	ErrNilType = constError("typecache: nil type")
	// ErrInvalidOptions wraps every construction-time validation failure.
	ErrInvalidOptions = constError("typecache: invalid options")
)

func invalidOption(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidOptions}, args...)...)
}

// ComputeError is returned by Get when the compute function fails.
// Nothing is cached for the type; the next Get computes again.
type ComputeError struct {
	Type reflect.Type
	Err  error
}

func (e *ComputeError) Error() string {
	return fmt.Sprintf("typecache: compute %v: %v", e.Type, e.Err)
}

func (e *ComputeError) Unwrap() error { return e.Err }

// RemoveError reports a second-level tier failure during Remove or Put.
// The in-process value is already gone when this error is returned.
type RemoveError struct {
	Key     string
	BumpErr error
	DelErr  error
}

func (e *RemoveError) Error() string {
	switch {
	case e.BumpErr != nil && e.DelErr != nil:
		return fmt.Sprintf("typecache: remove %q: gen bump and delete failed: bump=%v; delete=%v",
			e.Key, e.BumpErr, e.DelErr)
	case e.BumpErr != nil:
		return fmt.Sprintf("typecache: remove %q: gen bump failed: %v", e.Key, e.BumpErr)
	case e.DelErr != nil:
		return fmt.Sprintf("typecache: remove %q: delete failed: %v", e.Key, e.DelErr)
	default:
		return fmt.Sprintf("typecache: remove %q: unknown error", e.Key)
	}
}

func (e *RemoveError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.BumpErr != nil {
		errs = append(errs, e.BumpErr)
	}
	if e.DelErr != nil {
		errs = append(errs, e.DelErr)
	}
	return errs
}
