package core

import (
	"errors"
	"fmt"
)

// The service layer maps every failure to one of two caller-visible kinds.
// Anything that matches neither is an internal error and is surfaced wrapped,
// without exposing driver details to API clients.
var (
	// ErrNotFound: an item, location, allocation, or container referenced by
	// id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidReference: the referenced state cannot support the operation,
	// e.g. a duplicate allocation pair, insufficient source quantity, or a
	// missing required field for container creation.
	ErrInvalidReference = errors.New("invalid reference")
)

// InsufficientStockError is returned when a transfer or split asks for more
// than the source allocation holds. No state is mutated.
type InsufficientStockError struct {
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient quantity at source: available %d, requested %d", e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInvalidReference
}

// DuplicateAllocationError is returned when creating an allocation for an
// (item, location) pair that already has one. Callers must update instead.
type DuplicateAllocationError struct {
	ItemID     string
	LocationID string
}

func (e *DuplicateAllocationError) Error() string {
	return fmt.Sprintf("allocation already exists for item %s at location %s", e.ItemID, e.LocationID)
}

func (e *DuplicateAllocationError) Is(target error) bool {
	return target == ErrInvalidReference
}
