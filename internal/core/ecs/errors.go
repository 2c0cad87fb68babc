package ecs

import "errors"

var (
	ErrStaleEntity        = errors.New("stale or unknown entity")
	ErrDuplicateComponent = errors.New("component already present")
	ErrComponentNotFound  = errors.New("component not found")
	// ErrStructuralMutation is returned when Add/Remove targets a store that
	// is being iterated. Swap-remove would otherwise skip or repeat entries.
	ErrStructuralMutation = errors.New("structural mutation during iteration")
)
