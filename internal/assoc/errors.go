package assoc

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/tabloom/internal/table"
)

var (
	// ErrIncompatibleKinds means the method does not apply to the column kinds.
	ErrIncompatibleKinds = errors.New("method incompatible with column kinds")
	// ErrDegenerate means the score is mathematically undefined for the data:
	// zero variance, a single contingency level, or too few complete pairs.
	ErrDegenerate = errors.New("association undefined for data")
	// ErrUnknownMethod means the method name is not registered.
	ErrUnknownMethod = errors.New("unknown association method")
	// ErrUnknownColumn is table.ErrUnknownColumn so either sentinel matches.
	ErrUnknownColumn = table.ErrUnknownColumn
)

// PairError reports a failed evaluation for one column pair.
type PairError struct {
	A, B   string
	Method Method
	Err    error
}

func (e *PairError) Error() string {
	return fmt.Sprintf("%s(%s, %s): %v", e.Method, e.A, e.B, e.Err)
}

func (e *PairError) Unwrap() error { return e.Err }

func degenerate(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDegenerate, fmt.Sprintf(format, args...))
}
