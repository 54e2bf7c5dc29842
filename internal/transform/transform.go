// Package transform builds alternative income scenarios from a base by
// applying small named changes such as a raise or an extra shift.
package transform

import (
	"fmt"

	"github.com/rgehrsitz/aishcalc/internal/compare"
)

// ScenarioTransform is one composable change to a scenario. Scenarios are
// values, so Apply never touches its input.
type ScenarioTransform interface {
	// Apply returns the modified scenario
	Apply(base compare.Scenario) (compare.Scenario, error)

	// Name returns a short identifier such as "add_income"
	Name() string

	// Description returns a human-readable summary, used as the scenario name
	Description() string

	// Validate checks the parameters against base without applying them
	Validate(base compare.Scenario) error
}

// ApplyTransforms applies transforms in order, each receiving the output of
// the previous one
func ApplyTransforms(base compare.Scenario, transforms []ScenarioTransform) (compare.Scenario, error) {
	current := base
	for i, transform := range transforms {
		if transform == nil {
			return compare.Scenario{}, fmt.Errorf("transform at index %d is nil", i)
		}

		if err := transform.Validate(current); err != nil {
			return compare.Scenario{}, fmt.Errorf("transform %s validation failed: %w", transform.Name(), err)
		}

		next, err := transform.Apply(current)
		if err != nil {
			return compare.Scenario{}, fmt.Errorf("transform %s failed: %w", transform.Name(), err)
		}
		current = next
	}
	return current, nil
}

// Alternative applies transforms to base and names the result after them
func Alternative(base compare.Scenario, transforms ...ScenarioTransform) (compare.Scenario, error) {
	alt, err := ApplyTransforms(base, transforms)
	if err != nil {
		return compare.Scenario{}, err
	}
	alt.Name = describe(transforms)
	return alt, nil
}

func describe(transforms []ScenarioTransform) string {
	name := ""
	for i, t := range transforms {
		if i > 0 {
			name += ", "
		}
		name += t.Description()
	}
	if name == "" {
		return "unchanged"
	}
	return name
}

// TransformError represents an error that occurred during transformation
type TransformError struct {
	TransformName string
	Operation     string
	Reason        string
	Err           error
}

func (e *TransformError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transform %s (%s): %s: %v", e.TransformName, e.Operation, e.Reason, e.Err)
	}
	return fmt.Sprintf("transform %s (%s): %s", e.TransformName, e.Operation, e.Reason)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// NewTransformError creates a new TransformError
func NewTransformError(transformName, operation, reason string, err error) error {
	return &TransformError{
		TransformName: transformName,
		Operation:     operation,
		Reason:        reason,
		Err:           err,
	}
}
