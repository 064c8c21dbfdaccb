package core_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"stockroom/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func setupStockTestDB(t *testing.T) (*pgxpool.Pool, core.ItemService, core.LocationService, core.AllocationService, context.Context) {
	t.Helper()
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	// The schema file is idempotent, so applying it on every run keeps the
	// test database current without a separate migration step.
	schema, err := os.ReadFile("../../migrations/001_init.sql")
	if err != nil {
		t.Fatalf("Failed to read schema file: %v", err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		t.Fatalf("Failed to apply schema: %v", err)
	}

	if _, err := pool.Exec(ctx, "TRUNCATE TABLE allocations, locations, items CASCADE"); err != nil {
		t.Fatalf("Failed to clean test database: %v", err)
	}

	repo := core.NewAllocationRepository()
	itemSvc := core.NewItemService(pool, repo)
	locSvc := core.NewLocationService(pool, repo)
	allocSvc := core.NewAllocationService(pool, repo)
	return pool, itemSvc, locSvc, allocSvc, ctx
}

func seedItem(t *testing.T, ctx context.Context, items core.ItemService, name string) *core.Item {
	t.Helper()
	it, err := items.CreateItem(ctx, core.ItemInput{Name: name, Kind: core.KindPart})
	if err != nil {
		t.Fatalf("Failed to seed item %s: %v", name, err)
	}
	return it
}

func seedLocation(t *testing.T, ctx context.Context, locs core.LocationService, input core.LocationInput) *core.Location {
	t.Helper()
	l, err := locs.CreateLocation(ctx, input)
	if err != nil {
		t.Fatalf("Failed to seed location %s: %v", input.Name, err)
	}
	return l
}

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

// ── Allocation CRUD ───────────────────────────────────────────────────────────

func TestAllocation_CreateAndDuplicateRejected(t *testing.T) {
	_, items, locs, allocSvc, ctx := setupStockTestDB(t)

	item := seedItem(t, ctx, items, "M4 screws")
	shelf := seedLocation(t, ctx, locs, core.LocationInput{Name: "Shelf A"})

	alloc, err := allocSvc.CreateAllocation(ctx, item.ID, core.AllocationInput{
		LocationID: shelf.ID, Quantity: 100, IsPrimary: true,
	})
	if err != nil {
		t.Fatalf("CreateAllocation failed: %v", err)
	}
	if alloc.Quantity != 100 || !alloc.IsPrimary {
		t.Errorf("Expected quantity=100 primary=true, got quantity=%d primary=%v", alloc.Quantity, alloc.IsPrimary)
	}
	if alloc.LocationName != "Shelf A" {
		t.Errorf("Expected joined location name 'Shelf A', got %q", alloc.LocationName)
	}

	// A second allocation for the same (item, location) pair must be rejected.
	_, err = allocSvc.CreateAllocation(ctx, item.ID, core.AllocationInput{
		LocationID: shelf.ID, Quantity: 5,
	})
	var dup *core.DuplicateAllocationError
	if !errors.As(err, &dup) {
		t.Fatalf("Expected DuplicateAllocationError, got %v", err)
	}
	if !errors.Is(err, core.ErrInvalidReference) {
		t.Errorf("Expected duplicate error to match ErrInvalidReference, got %v", err)
	}
}

func TestAllocation_CreateRejectsBadInput(t *testing.T) {
	_, items, locs, allocSvc, ctx := setupStockTestDB(t)

	item := seedItem(t, ctx, items, "M4 screws")
	shelf := seedLocation(t, ctx, locs, core.LocationInput{Name: "Shelf A"})

	_, err := allocSvc.CreateAllocation(ctx, "no-such-item", core.AllocationInput{
		LocationID: shelf.ID, Quantity: 10,
	})
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing item, got %v", err)
	}

	_, err = allocSvc.CreateAllocation(ctx, item.ID, core.AllocationInput{
		LocationID: "no-such-location", Quantity: 10,
	})
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing location, got %v", err)
	}

	_, err = allocSvc.CreateAllocation(ctx, item.ID, core.AllocationInput{
		LocationID: shelf.ID, Quantity: 0,
	})
	if !errors.Is(err, core.ErrInvalidReference) {
		t.Errorf("Expected ErrInvalidReference for zero quantity, got %v", err)
	}
}

func TestUpdateAllocation_Partial(t *testing.T) {
	_, items, locs, allocSvc, ctx := setupStockTestDB(t)

	item := seedItem(t, ctx, items, "Torque wrench")
	shelf := seedLocation(t, ctx, locs, core.LocationInput{Name: "Tool wall"})
	alloc, err := allocSvc.CreateAllocation(ctx, item.ID, core.AllocationInput{
		LocationID: shelf.ID, Quantity: 3,
	})
	if err != nil {
		t.Fatalf("CreateAllocation failed: %v", err)
	}

	// Only notes are supplied: quantity and the primary flag stay untouched.
	updated, err := allocSvc.UpdateAllocation(ctx, alloc.ID, core.AllocationUpdate{
		Notes: strPtr("calibrated 2026-08"),
	})
	if err != nil {
		t.Fatalf("UpdateAllocation failed: %v", err)
	}
	if updated.Quantity != 3 || updated.IsPrimary {
		t.Errorf("Expected quantity=3 primary=false after notes-only update, got quantity=%d primary=%v",
			updated.Quantity, updated.IsPrimary)
	}
	if updated.Notes == nil || *updated.Notes != "calibrated 2026-08" {
		t.Errorf("Expected notes to be set, got %v", updated.Notes)
	}

	updated, err = allocSvc.UpdateAllocation(ctx, alloc.ID, core.AllocationUpdate{
		Quantity:  intPtr(2),
		IsPrimary: boolPtr(true),
	})
	if err != nil {
		t.Fatalf("UpdateAllocation failed: %v", err)
	}
	if updated.Quantity != 2 || !updated.IsPrimary {
		t.Errorf("Expected quantity=2 primary=true, got quantity=%d primary=%v", updated.Quantity, updated.IsPrimary)
	}

	_, err = allocSvc.UpdateAllocation(ctx, alloc.ID, core.AllocationUpdate{Quantity: intPtr(-1)})
	if !errors.Is(err, core.ErrInvalidReference) {
		t.Errorf("Expected ErrInvalidReference for negative quantity, got %v", err)
	}

	_, err = allocSvc.UpdateAllocation(ctx, "no-such-allocation", core.AllocationUpdate{Quantity: intPtr(1)})
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing allocation, got %v", err)
	}
}

func boolPtr(b bool) *bool { return &b }

func TestDeleteAllocation_NoPrimaryRebalance(t *testing.T) {
	pool, items, locs, allocSvc, ctx := setupStockTestDB(t)

	item := seedItem(t, ctx, items, "M4 screws")
	shelfA := seedLocation(t, ctx, locs, core.LocationInput{Name: "Shelf A"})
	shelfB := seedLocation(t, ctx, locs, core.LocationInput{Name: "Shelf B"})

	primary, err := allocSvc.CreateAllocation(ctx, item.ID, core.AllocationInput{
		LocationID: shelfA.ID, Quantity: 100, IsPrimary: true,
	})
	if err != nil {
		t.Fatalf("CreateAllocation failed: %v", err)
	}
	if _, err := allocSvc.CreateAllocation(ctx, item.ID, core.AllocationInput{
		LocationID: shelfB.ID, Quantity: 40,
	}); err != nil {
		t.Fatalf("CreateAllocation failed: %v", err)
	}

	// Deleting the primary allocation does not promote the remaining record.
	if err := allocSvc.DeleteAllocation(ctx, primary.ID); err != nil {
		t.Fatalf("DeleteAllocation failed: %v", err)
	}

	repo := core.NewAllocationRepository()
	p, err := repo.GetPrimary(ctx, pool, item.ID)
	if err != nil {
		t.Fatalf("GetPrimary failed: %v", err)
	}
	if p != nil {
		t.Errorf("Expected no primary allocation after deleting it, got %+v", p)
	}
}

// ── Transfers ─────────────────────────────────────────────────────────────────

func TestTransfer_PartialMove(t *testing.T) {
	pool, items, locs, allocSvc, ctx := setupStockTestDB(t)

	item := seedItem(t, ctx, items, "M4 screws")
	shelfA := seedLocation(t, ctx, locs, core.LocationInput{Name: "Shelf A"})
	shelfB := seedLocation(t, ctx, locs, core.LocationInput{Name: "Shelf B"})

	if _, err := allocSvc.CreateAllocation(ctx, item.ID, core.AllocationInput{
		LocationID: shelfA.ID, Quantity: 100, IsPrimary: true,
	}); err != nil {
		t.Fatalf("CreateAllocation failed: %v", err)
	}

	result, err := allocSvc.Transfer(ctx, item.ID, shelfA.ID, shelfB.ID, 30, nil)
	if err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}

	if result.SourceDeleted {
		t.Error("Expected source to survive a partial transfer")
	}
	if result.Source == nil || result.Source.Quantity != 70 {
		t.Errorf("Expected source quantity 70, got %+v", result.Source)
	}
	if !result.Source.IsPrimary {
		t.Error("Expected source to keep its primary flag after a partial transfer")
	}
	if result.Destination.Quantity != 30 {
		t.Errorf("Expected destination quantity 30, got %d", result.Destination.Quantity)
	}
	if result.Destination.IsPrimary {
		t.Error("Expected new destination allocation to not be primary")
	}

	// Conservation: total across locations is unchanged.
	repo := core.NewAllocationRepository()
	total, err := repo.SumQuantity(ctx, pool, item.ID)
	if err != nil {
		t.Fatalf("SumQuantity failed: %v", err)
	}
	if total != 100 {
		t.Errorf("Expected total 100 after transfer, got %d", total)
	}

	summary, err := items.GetStockSummary(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetStockSummary failed: %v", err)
	}
	if summary.TotalQuantity != 100 || summary.LocationCount != 2 {
		t.Errorf("Expected total=100 across 2 locations, got total=%d count=%d",
			summary.TotalQuantity, summary.LocationCount)
	}
	if summary.PrimaryLocation == nil || summary.PrimaryLocation.ID != shelfA.ID {
		t.Errorf("Expected primary location to stay Shelf A, got %+v", summary.PrimaryLocation)
	}
}

func TestTransfer_InsufficientStock(t *testing.T) {
	_, items, locs, allocSvc, ctx := setupStockTestDB(t)

	item := seedItem(t, ctx, items, "M4 screws")
	shelfA := seedLocation(t, ctx, locs, core.LocationInput{Name: "Shelf A"})
	shelfB := seedLocation(t, ctx, locs, core.LocationInput{Name: "Shelf B"})

	if _, err := allocSvc.CreateAllocation(ctx, item.ID, core.AllocationInput{
		LocationID: shelfA.ID, Quantity: 70,
	}); err != nil {
		t.Fatalf("CreateAllocation failed: %v", err)
	}

	_, err := allocSvc.Transfer(ctx, item.ID, shelfA.ID, shelfB.ID, 1000, nil)
	var insufficient *core.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("Expected InsufficientStockError, got %v", err)
	}
	if insufficient.Available != 70 || insufficient.Requested != 1000 {
		t.Errorf("Expected available=70 requested=1000, got available=%d requested=%d",
			insufficient.Available, insufficient.Requested)
	}

	// The failed transfer must leave both sides untouched.
	summary, err := items.GetStockSummary(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetStockSummary failed: %v", err)
	}
	if summary.TotalQuantity != 70 || summary.LocationCount != 1 {
		t.Errorf("Expected records unchanged (total=70, 1 location), got total=%d count=%d",
			summary.TotalQuantity, summary.LocationCount)
	}
}

func TestTransfer_FullBalanceDeletesSource(t *testing.T) {
	pool, items, locs, allocSvc, ctx := setupStockTestDB(t)

	item := seedItem(t, ctx, items, "M4 screws")
	shelfA := seedLocation(t, ctx, locs, core.LocationInput{Name: "Shelf A"})
	shelfB := seedLocation(t, ctx, locs, core.LocationInput{Name: "Shelf B"})

	if _, err := allocSvc.CreateAllocation(ctx, item.ID, core.AllocationInput{
		LocationID: shelfA.ID, Quantity: 100,
	}); err != nil {
		t.Fatalf("CreateAllocation failed: %v", err)
	}

	result, err := allocSvc.Transfer(ctx, item.ID, shelfA.ID, shelfB.ID, 100, nil)
	if err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	if !result.SourceDeleted || result.Source != nil {
		t.Errorf("Expected drained source to be deleted, got deleted=%v source=%+v",
			result.SourceDeleted, result.Source)
	}
	if result.Destination.Quantity != 100 {
		t.Errorf("Expected destination quantity 100, got %d", result.Destination.Quantity)
	}

	repo := core.NewAllocationRepository()
	gone, err := repo.GetByItemAndLocation(ctx, pool, item.ID, shelfA.ID)
	if err != nil {
		t.Fatalf("GetByItemAndLocation failed: %v", err)
	}
	if gone != nil {
		t.Errorf("Expected no source row after full transfer, got %+v", gone)
	}

	summary, err := items.GetStockSummary(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetStockSummary failed: %v", err)
	}
	if summary.TotalQuantity != 100 || summary.LocationCount != 1 {
		t.Errorf("Expected total=100 at 1 location, got total=%d count=%d",
			summary.TotalQuantity, summary.LocationCount)
	}
}

func TestTransfer_DrainPrimaryLeavesNoPrimary(t *testing.T) {
	pool, items, locs, allocSvc, ctx := setupStockTestDB(t)

	item := seedItem(t, ctx, items, "M4 screws")
	shelfA := seedLocation(t, ctx, locs, core.LocationInput{Name: "Shelf A"})
	shelfB := seedLocation(t, ctx, locs, core.LocationInput{Name: "Shelf B"})

	if _, err := allocSvc.CreateAllocation(ctx, item.ID, core.AllocationInput{
		LocationID: shelfA.ID, Quantity: 50, IsPrimary: true,
	}); err != nil {
		t.Fatalf("CreateAllocation failed: %v", err)
	}

	// Drain the primary allocation entirely. The destination record is created
	// non-primary and nothing is promoted in the source's place.
	result, err := allocSvc.Transfer(ctx, item.ID, shelfA.ID, shelfB.ID, 50, nil)
	if err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	if result.Destination.IsPrimary {
		t.Error("Expected destination to not inherit the primary flag")
	}

	repo := core.NewAllocationRepository()
	p, err := repo.GetPrimary(ctx, pool, item.ID)
	if err != nil {
		t.Fatalf("GetPrimary failed: %v", err)
	}
	if p != nil {
		t.Errorf("Expected no flagged primary after draining it, got %+v", p)
	}

	// The aggregate view still reports a primary location by falling back to
	// the first remaining record.
	summary, err := items.GetStockSummary(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetStockSummary failed: %v", err)
	}
	if summary.PrimaryLocation == nil || summary.PrimaryLocation.ID != shelfB.ID {
		t.Errorf("Expected summary to fall back to Shelf B, got %+v", summary.PrimaryLocation)
	}
}

func TestTransfer_MergesIntoExistingDestination(t *testing.T) {
	_, items, locs, allocSvc, ctx := setupStockTestDB(t)

	item := seedItem(t, ctx, items, "M4 screws")
	shelfA := seedLocation(t, ctx, locs, core.LocationInput{Name: "Shelf A"})
	shelfB := seedLocation(t, ctx, locs, core.LocationInput{Name: "Shelf B"})

	if _, err := allocSvc.CreateAllocation(ctx, item.ID, core.AllocationInput{
		LocationID: shelfA.ID, Quantity: 60,
	}); err != nil {
		t.Fatalf("CreateAllocation failed: %v", err)
	}
	existing, err := allocSvc.CreateAllocation(ctx, item.ID, core.AllocationInput{
		LocationID: shelfB.ID, Quantity: 10, IsPrimary: true,
	})
	if err != nil {
		t.Fatalf("CreateAllocation failed: %v", err)
	}

	result, err := allocSvc.Transfer(ctx, item.ID, shelfA.ID, shelfB.ID, 25, nil)
	if err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	if result.Destination.ID != existing.ID {
		t.Errorf("Expected transfer to merge into the existing record %s, got %s",
			existing.ID, result.Destination.ID)
	}
	if result.Destination.Quantity != 35 {
		t.Errorf("Expected merged quantity 35, got %d", result.Destination.Quantity)
	}
	if !result.Destination.IsPrimary {
		t.Error("Expected existing destination to keep its primary flag")
	}
}

func TestTransfer_InvalidArguments(t *testing.T) {
	_, items, locs, allocSvc, ctx := setupStockTestDB(t)

	item := seedItem(t, ctx, items, "M4 screws")
	shelfA := seedLocation(t, ctx, locs, core.LocationInput{Name: "Shelf A"})
	shelfB := seedLocation(t, ctx, locs, core.LocationInput{Name: "Shelf B"})

	if _, err := allocSvc.CreateAllocation(ctx, item.ID, core.AllocationInput{
		LocationID: shelfA.ID, Quantity: 10,
	}); err != nil {
		t.Fatalf("CreateAllocation failed: %v", err)
	}

	if _, err := allocSvc.Transfer(ctx, item.ID, shelfA.ID, shelfB.ID, 0, nil); !errors.Is(err, core.ErrInvalidReference) {
		t.Errorf("Expected ErrInvalidReference for zero quantity, got %v", err)
	}
	if _, err := allocSvc.Transfer(ctx, item.ID, shelfA.ID, shelfA.ID, 5, nil); !errors.Is(err, core.ErrInvalidReference) {
		t.Errorf("Expected ErrInvalidReference for same-location transfer, got %v", err)
	}
	if _, err := allocSvc.Transfer(ctx, item.ID, shelfB.ID, shelfA.ID, 5, nil); !errors.Is(err, core.ErrInvalidReference) {
		t.Errorf("Expected ErrInvalidReference when source has no allocation, got %v", err)
	}
	if _, err := allocSvc.Transfer(ctx, "no-such-item", shelfA.ID, shelfB.ID, 5, nil); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing item, got %v", err)
	}
	if _, err := allocSvc.Transfer(ctx, item.ID, shelfA.ID, "no-such-location", 5, nil); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing destination, got %v", err)
	}
}

// ── Split to container ────────────────────────────────────────────────────────

func TestSplitToContainer_NewContainer(t *testing.T) {
	_, items, locs, allocSvc, ctx := setupStockTestDB(t)

	item := seedItem(t, ctx, items, "M4 screws")
	shelfB := seedLocation(t, ctx, locs, core.LocationInput{Name: "Shelf B"})

	if _, err := allocSvc.CreateAllocation(ctx, item.ID, core.AllocationInput{
		LocationID: shelfB.ID, Quantity: 100,
	}); err != nil {
		t.Fatalf("CreateAllocation failed: %v", err)
	}

	result, err := allocSvc.SplitToContainer(ctx, item.ID, shelfB.ID, core.SplitRequest{
		Quantity:           40,
		CreateNewContainer: true,
		ContainerName:      strPtr("Cassette-1"),
		ParentLocationID:   &shelfB.ID,
		Capacity:           intPtr(50),
	})
	if err != nil {
		t.Fatalf("SplitToContainer failed: %v", err)
	}

	if !result.ContainerCreated {
		t.Error("Expected a freshly created container")
	}
	if result.Container.Name != "Cassette-1" || !result.Container.IsMobile {
		t.Errorf("Expected mobile container 'Cassette-1', got %+v", result.Container)
	}
	if result.Container.Capacity == nil || *result.Container.Capacity != 50 {
		t.Errorf("Expected capacity 50, got %v", result.Container.Capacity)
	}
	if result.Container.ParentID == nil || *result.Container.ParentID != shelfB.ID {
		t.Errorf("Expected container parent Shelf B, got %v", result.Container.ParentID)
	}
	if result.Allocation.Quantity != 40 || result.Allocation.IsPrimary {
		t.Errorf("Expected container allocation quantity=40 primary=false, got %+v", result.Allocation)
	}

	summary, err := items.GetStockSummary(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetStockSummary failed: %v", err)
	}
	if summary.TotalQuantity != 100 || summary.LocationCount != 2 {
		t.Errorf("Expected total=100 across 2 locations after split, got total=%d count=%d",
			summary.TotalQuantity, summary.LocationCount)
	}

	usage, err := locs.ContainerUsage(ctx, result.Container.ID)
	if err != nil {
		t.Fatalf("ContainerUsage failed: %v", err)
	}
	if usage.Used != 40 || usage.Available != 10 {
		t.Errorf("Expected used=40 available=10, got used=%d available=%d", usage.Used, usage.Available)
	}
	if usage.UsagePercentage != "80.00" {
		t.Errorf("Expected usage 80.00, got %s", usage.UsagePercentage)
	}
}

func TestSplitToContainer_ExistingContainer(t *testing.T) {
	_, items, locs, allocSvc, ctx := setupStockTestDB(t)

	item := seedItem(t, ctx, items, "M4 screws")
	shelfB := seedLocation(t, ctx, locs, core.LocationInput{Name: "Shelf B"})
	cassette := seedLocation(t, ctx, locs, core.LocationInput{
		Name: "Cassette-1", IsMobile: true, Capacity: intPtr(50), ParentID: &shelfB.ID,
	})

	if _, err := allocSvc.CreateAllocation(ctx, item.ID, core.AllocationInput{
		LocationID: shelfB.ID, Quantity: 100,
	}); err != nil {
		t.Fatalf("CreateAllocation failed: %v", err)
	}

	result, err := allocSvc.SplitToContainer(ctx, item.ID, shelfB.ID, core.SplitRequest{
		Quantity:    15,
		ContainerID: &cassette.ID,
	})
	if err != nil {
		t.Fatalf("SplitToContainer failed: %v", err)
	}
	if result.ContainerCreated {
		t.Error("Expected no container creation when targeting an existing one")
	}
	if result.Container.ID != cassette.ID {
		t.Errorf("Expected container %s, got %s", cassette.ID, result.Container.ID)
	}
	if result.Allocation.Quantity != 15 {
		t.Errorf("Expected container allocation quantity 15, got %d", result.Allocation.Quantity)
	}

	// A second split tops up the same allocation record.
	result, err = allocSvc.SplitToContainer(ctx, item.ID, shelfB.ID, core.SplitRequest{
		Quantity:    10,
		ContainerID: &cassette.ID,
	})
	if err != nil {
		t.Fatalf("Second SplitToContainer failed: %v", err)
	}
	if result.Allocation.Quantity != 25 {
		t.Errorf("Expected topped-up quantity 25, got %d", result.Allocation.Quantity)
	}
}

func TestSplitToContainer_InvalidArguments(t *testing.T) {
	_, items, locs, allocSvc, ctx := setupStockTestDB(t)

	item := seedItem(t, ctx, items, "M4 screws")
	shelfB := seedLocation(t, ctx, locs, core.LocationInput{Name: "Shelf B"})

	if _, err := allocSvc.CreateAllocation(ctx, item.ID, core.AllocationInput{
		LocationID: shelfB.ID, Quantity: 100,
	}); err != nil {
		t.Fatalf("CreateAllocation failed: %v", err)
	}

	// New container without a name.
	_, err := allocSvc.SplitToContainer(ctx, item.ID, shelfB.ID, core.SplitRequest{
		Quantity: 10, CreateNewContainer: true,
	})
	if !errors.Is(err, core.ErrInvalidReference) {
		t.Errorf("Expected ErrInvalidReference for missing container name, got %v", err)
	}

	// Existing container without an id.
	_, err = allocSvc.SplitToContainer(ctx, item.ID, shelfB.ID, core.SplitRequest{Quantity: 10})
	if !errors.Is(err, core.ErrInvalidReference) {
		t.Errorf("Expected ErrInvalidReference for missing container id, got %v", err)
	}

	// Container is the source itself.
	_, err = allocSvc.SplitToContainer(ctx, item.ID, shelfB.ID, core.SplitRequest{
		Quantity: 10, ContainerID: &shelfB.ID,
	})
	if !errors.Is(err, core.ErrInvalidReference) {
		t.Errorf("Expected ErrInvalidReference for splitting into the source, got %v", err)
	}

	// More than available.
	cassette := seedLocation(t, ctx, locs, core.LocationInput{
		Name: "Cassette-1", IsMobile: true, Capacity: intPtr(500),
	})
	_, err = allocSvc.SplitToContainer(ctx, item.ID, shelfB.ID, core.SplitRequest{
		Quantity: 200, ContainerID: &cassette.ID,
	})
	var insufficient *core.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Errorf("Expected InsufficientStockError, got %v", err)
	}
}

// ── Views ─────────────────────────────────────────────────────────────────────

func TestStockSummary_Empty(t *testing.T) {
	_, items, _, _, ctx := setupStockTestDB(t)

	item := seedItem(t, ctx, items, "Unstocked part")

	summary, err := items.GetStockSummary(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetStockSummary failed: %v", err)
	}
	if summary.TotalQuantity != 0 || summary.LocationCount != 0 {
		t.Errorf("Expected empty summary, got total=%d count=%d", summary.TotalQuantity, summary.LocationCount)
	}
	if summary.PrimaryLocation != nil {
		t.Errorf("Expected no primary location, got %+v", summary.PrimaryLocation)
	}

	_, err = items.GetStockSummary(ctx, "no-such-item")
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing item, got %v", err)
	}
}

func TestContainerUsage_Guards(t *testing.T) {
	_, items, locs, allocSvc, ctx := setupStockTestDB(t)

	shelf := seedLocation(t, ctx, locs, core.LocationInput{Name: "Shelf A"})

	// A fixed shelf is not a capacity-tracked container.
	if _, err := locs.ContainerUsage(ctx, shelf.ID); !errors.Is(err, core.ErrInvalidReference) {
		t.Errorf("Expected ErrInvalidReference for a non-container, got %v", err)
	}

	// A mobile location without a declared capacity is not one either.
	cart := seedLocation(t, ctx, locs, core.LocationInput{Name: "Cart", IsMobile: true})
	if _, err := locs.ContainerUsage(ctx, cart.ID); !errors.Is(err, core.ErrInvalidReference) {
		t.Errorf("Expected ErrInvalidReference for a container without capacity, got %v", err)
	}

	// Zero capacity must not divide by zero.
	zero := seedLocation(t, ctx, locs, core.LocationInput{
		Name: "Empty cassette", IsMobile: true, Capacity: intPtr(0),
	})
	usage, err := locs.ContainerUsage(ctx, zero.ID)
	if err != nil {
		t.Fatalf("ContainerUsage failed: %v", err)
	}
	if usage.UsagePercentage != "0.00" {
		t.Errorf("Expected 0.00 usage for zero capacity, got %s", usage.UsagePercentage)
	}

	// An empty container reports full availability.
	item := seedItem(t, ctx, items, "M4 screws")
	cassette := seedLocation(t, ctx, locs, core.LocationInput{
		Name: "Cassette-1", IsMobile: true, Capacity: intPtr(50),
	})
	usage, err = locs.ContainerUsage(ctx, cassette.ID)
	if err != nil {
		t.Fatalf("ContainerUsage failed: %v", err)
	}
	if usage.Used != 0 || usage.Available != 50 || usage.UsagePercentage != "0.00" {
		t.Errorf("Expected empty container usage, got %+v", usage)
	}

	shelfStock := seedLocation(t, ctx, locs, core.LocationInput{Name: "Shelf B"})
	if _, err := allocSvc.CreateAllocation(ctx, item.ID, core.AllocationInput{
		LocationID: shelfStock.ID, Quantity: 100,
	}); err != nil {
		t.Fatalf("CreateAllocation failed: %v", err)
	}
	if _, err := allocSvc.SplitToContainer(ctx, item.ID, shelfStock.ID, core.SplitRequest{
		Quantity: 40, ContainerID: &cassette.ID,
	}); err != nil {
		t.Fatalf("SplitToContainer failed: %v", err)
	}
	usage, err = locs.ContainerUsage(ctx, cassette.ID)
	if err != nil {
		t.Fatalf("ContainerUsage failed: %v", err)
	}
	if usage.Used != 40 || usage.Available != 10 || usage.UsagePercentage != "80.00" {
		t.Errorf("Expected used=40 available=10 usage=80.00, got %+v", usage)
	}
}

// ── Repository and cascades ───────────────────────────────────────────────────

func TestRepo_SumAndDeleteAllForItem(t *testing.T) {
	pool, items, locs, allocSvc, ctx := setupStockTestDB(t)

	item := seedItem(t, ctx, items, "M4 screws")
	other := seedItem(t, ctx, items, "M5 screws")
	shelfA := seedLocation(t, ctx, locs, core.LocationInput{Name: "Shelf A"})
	shelfB := seedLocation(t, ctx, locs, core.LocationInput{Name: "Shelf B"})

	for _, seed := range []struct {
		itemID string
		locID  string
		qty    int
	}{
		{item.ID, shelfA.ID, 60},
		{item.ID, shelfB.ID, 40},
		{other.ID, shelfA.ID, 7},
	} {
		if _, err := allocSvc.CreateAllocation(ctx, seed.itemID, core.AllocationInput{
			LocationID: seed.locID, Quantity: seed.qty,
		}); err != nil {
			t.Fatalf("CreateAllocation failed: %v", err)
		}
	}

	repo := core.NewAllocationRepository()
	total, err := repo.SumQuantity(ctx, pool, item.ID)
	if err != nil {
		t.Fatalf("SumQuantity failed: %v", err)
	}
	if total != 100 {
		t.Errorf("Expected total 100, got %d", total)
	}

	deleted, err := repo.DeleteAllForItem(ctx, pool, item.ID)
	if err != nil {
		t.Fatalf("DeleteAllForItem failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Expected 2 deleted allocations, got %d", deleted)
	}

	// The other item's allocation is untouched.
	remaining, err := repo.SumQuantity(ctx, pool, other.ID)
	if err != nil {
		t.Fatalf("SumQuantity failed: %v", err)
	}
	if remaining != 7 {
		t.Errorf("Expected other item's total 7, got %d", remaining)
	}
}

func TestDeleteItem_CascadesAllocations(t *testing.T) {
	pool, items, locs, allocSvc, ctx := setupStockTestDB(t)

	item := seedItem(t, ctx, items, "M4 screws")
	shelf := seedLocation(t, ctx, locs, core.LocationInput{Name: "Shelf A"})

	if _, err := allocSvc.CreateAllocation(ctx, item.ID, core.AllocationInput{
		LocationID: shelf.ID, Quantity: 100,
	}); err != nil {
		t.Fatalf("CreateAllocation failed: %v", err)
	}

	if err := items.DeleteItem(ctx, item.ID); err != nil {
		t.Fatalf("DeleteItem failed: %v", err)
	}

	repo := core.NewAllocationRepository()
	allocs, err := repo.ListAtLocation(ctx, pool, shelf.ID)
	if err != nil {
		t.Fatalf("ListAtLocation failed: %v", err)
	}
	if len(allocs) != 0 {
		t.Errorf("Expected allocations to cascade with the item, got %d rows", len(allocs))
	}
}

func TestDeleteLocation_CascadesAllocations(t *testing.T) {
	pool, items, locs, allocSvc, ctx := setupStockTestDB(t)

	item := seedItem(t, ctx, items, "M4 screws")
	shelf := seedLocation(t, ctx, locs, core.LocationInput{Name: "Shelf A"})

	if _, err := allocSvc.CreateAllocation(ctx, item.ID, core.AllocationInput{
		LocationID: shelf.ID, Quantity: 100,
	}); err != nil {
		t.Fatalf("CreateAllocation failed: %v", err)
	}

	if err := locs.DeleteLocation(ctx, shelf.ID); err != nil {
		t.Fatalf("DeleteLocation failed: %v", err)
	}

	repo := core.NewAllocationRepository()
	total, err := repo.SumQuantity(ctx, pool, item.ID)
	if err != nil {
		t.Fatalf("SumQuantity failed: %v", err)
	}
	if total != 0 {
		t.Errorf("Expected allocations to cascade with the location, got total %d", total)
	}
}
