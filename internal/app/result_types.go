package app

import "stockroom/internal/core"

// ItemResult is returned by item operations.
type ItemResult struct {
	Item *core.Item
}

// ItemListResult is returned by ListItems.
type ItemListResult struct {
	Items []core.Item
}

// StockSummaryResult is returned by GetStockSummary.
type StockSummaryResult struct {
	Summary *core.StockSummary
}

// LocationResult is returned by location operations.
type LocationResult struct {
	Location *core.Location
}

// LocationListResult is returned by ListLocations.
type LocationListResult struct {
	Locations []core.Location
}

// ContainerUsageResult is returned by GetContainerUsage.
type ContainerUsageResult struct {
	Usage *core.ContainerUsage
}

// AllocationResult is returned by single-allocation operations.
type AllocationResult struct {
	Allocation *core.Allocation
}

// AllocationListResult is returned by ListAllocations.
type AllocationListResult struct {
	ItemID      string
	Allocations []core.Allocation
}

// TransferResult is returned by Transfer.
type TransferResult struct {
	Transfer *core.TransferResult
}

// SplitResult is returned by SplitToContainer.
type SplitResult struct {
	Split *core.SplitResult
}
