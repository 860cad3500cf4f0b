package types

import "errors"

// Error taxonomy shared by services and handlers. Wrap with
// fmt.Errorf("...: %w", Err...) so callers can errors.Is on the sentinel.
var (
	// ErrValidation marks malformed input; the caller's fault, not retried.
	ErrValidation = errors.New("invalid input")
	// ErrNotFound marks an unknown plan, version or scheduled item.
	ErrNotFound = errors.New("not found")
	// ErrInfeasible marks an edit or build for which no candidate satisfies
	// the constraints. Distinct from succeeding with an empty slot.
	ErrInfeasible = errors.New("no feasible candidate")
	// ErrVersionConflict marks an edit whose expected base version is no
	// longer the plan's latest version.
	ErrVersionConflict = errors.New("plan version conflict")
)
