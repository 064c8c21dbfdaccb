package app

import (
	"context"

	"stockroom/internal/core"
)

// ApplicationService is the single interface all UI adapters (CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// CreateItem registers a new part or tool and mints its id.
	CreateItem(ctx context.Context, req CreateItemRequest) (*ItemResult, error)

	// ListItems returns all tracked items.
	ListItems(ctx context.Context) (*ItemListResult, error)

	// DeleteItem removes an item; its allocations cascade away with it.
	DeleteItem(ctx context.Context, itemID string) error

	// GetStockSummary returns the derived aggregate view of an item's
	// allocations: total quantity, location count, primary location.
	GetStockSummary(ctx context.Context, itemID string) (*StockSummaryResult, error)

	// CreateLocation registers a storage location (optionally a mobile
	// container with a capacity) and mints its id.
	CreateLocation(ctx context.Context, req CreateLocationRequest) (*LocationResult, error)

	// ListLocations returns the full storage hierarchy, flat.
	ListLocations(ctx context.Context) (*LocationListResult, error)

	// DeleteLocation removes a location and its allocations.
	DeleteLocation(ctx context.Context, locationID string) error

	// GetContainerUsage returns used/available/percentage for a mobile
	// container location with a capacity.
	GetContainerUsage(ctx context.Context, locationID string) (*ContainerUsageResult, error)

	// ListAllocations returns an item's allocation records.
	ListAllocations(ctx context.Context, itemID string) (*AllocationListResult, error)

	// CreateAllocation creates the allocation for a new (item, location) pair.
	CreateAllocation(ctx context.Context, itemID string, req CreateAllocationRequest) (*AllocationResult, error)

	// UpdateAllocation applies a partial single-record edit.
	UpdateAllocation(ctx context.Context, allocationID string, req UpdateAllocationRequest) (*AllocationResult, error)

	// DeleteAllocation deletes an allocation record by id.
	DeleteAllocation(ctx context.Context, allocationID string) error

	// Transfer moves quantity of an item between two locations atomically.
	Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error)

	// SplitToContainer moves quantity into a container location, creating the
	// container first when requested.
	SplitToContainer(ctx context.Context, req SplitRequest) (*SplitResult, error)

	// InterpretStockCommand sends a natural-language instruction to the AI
	// agent and returns a structured command proposal or a clarification
	// request. Proposals are never executed here; callers confirm and then
	// invoke the matching operation themselves.
	InterpretStockCommand(ctx context.Context, text string) (*CommandResult, error)
}

// CommandResult is returned by InterpretStockCommand.
type CommandResult struct {
	Command              *core.StockCommand
	ClarificationMessage string
	IsClarification      bool
}
