package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidConfig indicates a configuration that cannot produce a run.
	ErrInvalidConfig = errors.New("dynamo: invalid simulation config")

	// ErrFinished indicates the loop already executed its configured steps.
	ErrFinished = errors.New("dynamo: simulation finished")

	// ErrUnknownPreset indicates a preset name with no registered config.
	ErrUnknownPreset = errors.New("dynamo: unknown preset")
)

// InvalidConfig wraps ErrInvalidConfig with the offending field.
func InvalidConfig(field string, format string, args ...any) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidConfig, field, fmt.Sprintf(format, args...))
}

// SimulationError wraps an error with the step it occurred at.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
