package app

import (
	"context"
	"fmt"
	"strings"

	"stockroom/internal/ai"
	"stockroom/internal/core"
)

type appService struct {
	items       core.ItemService
	locations   core.LocationService
	allocations core.AllocationService
	agent       *ai.Agent
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	items core.ItemService,
	locations core.LocationService,
	allocations core.AllocationService,
	agent *ai.Agent,
) ApplicationService {
	return &appService{
		items:       items,
		locations:   locations,
		allocations: allocations,
		agent:       agent,
	}
}

func (s *appService) CreateItem(ctx context.Context, req CreateItemRequest) (*ItemResult, error) {
	item, err := s.items.CreateItem(ctx, core.ItemInput{
		Name:        req.Name,
		Kind:        core.ItemKind(req.Kind),
		Description: req.Description,
	})
	if err != nil {
		return nil, err
	}
	return &ItemResult{Item: item}, nil
}

func (s *appService) ListItems(ctx context.Context) (*ItemListResult, error) {
	items, err := s.items.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	return &ItemListResult{Items: items}, nil
}

func (s *appService) DeleteItem(ctx context.Context, itemID string) error {
	return s.items.DeleteItem(ctx, itemID)
}

func (s *appService) GetStockSummary(ctx context.Context, itemID string) (*StockSummaryResult, error) {
	summary, err := s.items.GetStockSummary(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return &StockSummaryResult{Summary: summary}, nil
}

func (s *appService) CreateLocation(ctx context.Context, req CreateLocationRequest) (*LocationResult, error) {
	loc, err := s.locations.CreateLocation(ctx, core.LocationInput{
		Name:        req.Name,
		ParentID:    req.ParentID,
		Description: req.Description,
		IsMobile:    req.IsMobile,
		Capacity:    req.Capacity,
	})
	if err != nil {
		return nil, err
	}
	return &LocationResult{Location: loc}, nil
}

func (s *appService) ListLocations(ctx context.Context) (*LocationListResult, error) {
	locs, err := s.locations.ListLocations(ctx)
	if err != nil {
		return nil, err
	}
	return &LocationListResult{Locations: locs}, nil
}

func (s *appService) DeleteLocation(ctx context.Context, locationID string) error {
	return s.locations.DeleteLocation(ctx, locationID)
}

func (s *appService) GetContainerUsage(ctx context.Context, locationID string) (*ContainerUsageResult, error) {
	usage, err := s.locations.ContainerUsage(ctx, locationID)
	if err != nil {
		return nil, err
	}
	return &ContainerUsageResult{Usage: usage}, nil
}

func (s *appService) ListAllocations(ctx context.Context, itemID string) (*AllocationListResult, error) {
	summary, err := s.items.GetStockSummary(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return &AllocationListResult{ItemID: itemID, Allocations: summary.Allocations}, nil
}

func (s *appService) CreateAllocation(ctx context.Context, itemID string, req CreateAllocationRequest) (*AllocationResult, error) {
	alloc, err := s.allocations.CreateAllocation(ctx, itemID, core.AllocationInput{
		LocationID: req.LocationID,
		Quantity:   req.Quantity,
		IsPrimary:  req.IsPrimary,
		Notes:      req.Notes,
	})
	if err != nil {
		return nil, err
	}
	return &AllocationResult{Allocation: alloc}, nil
}

func (s *appService) UpdateAllocation(ctx context.Context, allocationID string, req UpdateAllocationRequest) (*AllocationResult, error) {
	alloc, err := s.allocations.UpdateAllocation(ctx, allocationID, core.AllocationUpdate{
		Quantity:  req.Quantity,
		IsPrimary: req.IsPrimary,
		Notes:     req.Notes,
	})
	if err != nil {
		return nil, err
	}
	return &AllocationResult{Allocation: alloc}, nil
}

func (s *appService) DeleteAllocation(ctx context.Context, allocationID string) error {
	return s.allocations.DeleteAllocation(ctx, allocationID)
}

func (s *appService) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	result, err := s.allocations.Transfer(ctx, req.ItemID, req.FromLocationID, req.ToLocationID, req.Quantity, req.Notes)
	if err != nil {
		return nil, err
	}
	return &TransferResult{Transfer: result}, nil
}

func (s *appService) SplitToContainer(ctx context.Context, req SplitRequest) (*SplitResult, error) {
	result, err := s.allocations.SplitToContainer(ctx, req.ItemID, req.FromLocationID, core.SplitRequest{
		Quantity:           req.Quantity,
		CreateNewContainer: req.CreateNewContainer,
		ContainerID:        req.ContainerID,
		ContainerName:      req.ContainerName,
		ParentLocationID:   req.ParentLocationID,
		Capacity:           req.Capacity,
		Notes:              req.Notes,
	})
	if err != nil {
		return nil, err
	}
	return &SplitResult{Split: result}, nil
}

func (s *appService) InterpretStockCommand(ctx context.Context, text string) (*CommandResult, error) {
	if s.agent == nil {
		return nil, fmt.Errorf("AI agent is not configured")
	}

	items, err := s.items.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load items for agent context: %w", err)
	}
	locations, err := s.locations.ListLocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load locations for agent context: %w", err)
	}

	response, err := s.agent.InterpretCommand(ctx, text, formatItemList(items), formatLocationList(locations))
	if err != nil {
		return nil, err
	}

	if response.IsClarificationRequest {
		return &CommandResult{
			IsClarification:      true,
			ClarificationMessage: response.Clarification.Message,
		}, nil
	}
	return &CommandResult{Command: response.Command}, nil
}

func formatItemList(items []core.Item) string {
	if len(items) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "- %s (%s)\n", it.Name, it.Kind)
	}
	return b.String()
}

func formatLocationList(locations []core.Location) string {
	if len(locations) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for _, l := range locations {
		if l.IsContainer() {
			fmt.Fprintf(&b, "- %s (container, capacity %d)\n", l.Name, *l.Capacity)
			continue
		}
		fmt.Fprintf(&b, "- %s\n", l.Name)
	}
	return b.String()
}
