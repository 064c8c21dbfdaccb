package core

import "time"

// Allocation records how much of an item's stock sits at one physical
// location. The (ItemID, LocationID) pair is unique; quantity never drops
// below zero.
type Allocation struct {
	ID         string    `json:"id"`
	ItemID     string    `json:"item_id"`
	LocationID string    `json:"location_id"`
	Quantity   int       `json:"quantity"`
	IsPrimary  bool      `json:"is_primary"`
	Notes      *string   `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// LocationName is populated by reads that join the locations table.
	LocationName string `json:"location_name,omitempty"`
}

// AllocationInput is the payload for creating an allocation.
type AllocationInput struct {
	LocationID string  `json:"location_id"`
	Quantity   int     `json:"quantity"`
	IsPrimary  bool    `json:"is_primary"`
	Notes      *string `json:"notes,omitempty"`
}

// AllocationUpdate carries a partial update; nil fields are left untouched.
type AllocationUpdate struct {
	Quantity  *int    `json:"quantity,omitempty"`
	IsPrimary *bool   `json:"is_primary,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

// SplitRequest is the payload for splitting working stock into a container.
// With CreateNewContainer set, ContainerName is required and ContainerID is
// ignored; otherwise ContainerID must resolve to an existing location.
type SplitRequest struct {
	Quantity           int     `json:"quantity"`
	CreateNewContainer bool    `json:"create_new_container"`
	ContainerID        *string `json:"container_id,omitempty"`
	ContainerName      *string `json:"container_name,omitempty"`
	ParentLocationID   *string `json:"parent_location_id,omitempty"`
	Capacity           *int    `json:"capacity,omitempty"`
	Notes              *string `json:"notes,omitempty"`
}

// TransferResult is returned by a successful transfer.
type TransferResult struct {
	// Source is nil when the source allocation was drained to zero and deleted.
	Source        *Allocation `json:"source,omitempty"`
	Destination   *Allocation `json:"destination"`
	Quantity      int         `json:"quantity"`
	SourceDeleted bool        `json:"source_deleted"`
}

// SplitResult is returned by a successful split-to-container.
type SplitResult struct {
	Container        *Location   `json:"container"`
	Allocation       *Allocation `json:"allocation"`
	ContainerCreated bool        `json:"container_created"`
	Quantity         int         `json:"quantity"`
}

// StockSummary is the derived aggregate view of an item's allocations.
// It is recomputed on every read, never stored.
type StockSummary struct {
	ItemID          string       `json:"item_id"`
	TotalQuantity   int          `json:"total_quantity"`
	LocationCount   int          `json:"location_count"`
	PrimaryLocation *Location    `json:"primary_location,omitempty"`
	Allocations     []Allocation `json:"allocations"`
}

// ContainerUsage is the capacity view of a mobile container location.
type ContainerUsage struct {
	LocationID      string `json:"location_id"`
	Capacity        int    `json:"capacity"`
	Used            int    `json:"used"`
	Available       int    `json:"available"`
	UsagePercentage string `json:"usage_percentage"`
}

// TotalQuantity sums quantity over a set of allocations. Zero for an empty set.
func TotalQuantity(allocs []Allocation) int {
	total := 0
	for _, a := range allocs {
		total += a.Quantity
	}
	return total
}

// PrimaryAllocation returns the allocation flagged primary. When no record is
// flagged it falls back to the first-encountered allocation, and returns nil
// for an empty set. The fallback matters because draining a primary
// allocation does not promote a replacement, so an item can have stock but no
// flagged primary.
func PrimaryAllocation(allocs []Allocation) *Allocation {
	for i := range allocs {
		if allocs[i].IsPrimary {
			return &allocs[i]
		}
	}
	if len(allocs) > 0 {
		return &allocs[0]
	}
	return nil
}
