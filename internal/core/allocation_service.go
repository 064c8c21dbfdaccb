package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AllocationService enforces the business invariants over allocation records
// and orchestrates the multi-record operations. Every method runs in a single
// transaction: on any failure the pending writes are rolled back and no
// partial state persists. No retries are performed here; callers own retry
// policy.
type AllocationService interface {
	// CreateAllocation creates the allocation for a new (item, location) pair.
	// Fails with ErrNotFound if item or location is missing, and with
	// ErrInvalidReference (DuplicateAllocationError) if the pair already has
	// an allocation; callers must use UpdateAllocation instead.
	CreateAllocation(ctx context.Context, itemID string, input AllocationInput) (*Allocation, error)

	// UpdateAllocation applies a partial update to a single record. It does
	// not re-validate cross-record conservation: updates are single-record
	// edits, not transfers.
	UpdateAllocation(ctx context.Context, allocationID string, update AllocationUpdate) (*Allocation, error)

	// DeleteAllocation deletes unconditionally. The item's primary
	// designation is not rebalanced.
	DeleteAllocation(ctx context.Context, allocationID string) error

	// Transfer moves quantity of an item between two locations atomically.
	// The source row is locked for the duration of the transaction, so the
	// sufficiency check and the decrement cannot race. A source drained to
	// exactly zero is deleted; a destination with no existing allocation gets
	// a new record with is_primary = false regardless of the source's flag.
	Transfer(ctx context.Context, itemID, fromLocationID, toLocationID string, quantity int, notes *string) (*TransferResult, error)

	// SplitToContainer transfers quantity into a mobile container location,
	// optionally creating the container first.
	SplitToContainer(ctx context.Context, itemID, fromLocationID string, req SplitRequest) (*SplitResult, error)
}

type allocationService struct {
	pool *pgxpool.Pool
	repo AllocationRepository
}

func NewAllocationService(pool *pgxpool.Pool, repo AllocationRepository) AllocationService {
	return &allocationService{pool: pool, repo: repo}
}

func (s *allocationService) CreateAllocation(ctx context.Context, itemID string, input AllocationInput) (*Allocation, error) {
	if input.Quantity <= 0 {
		return nil, fmt.Errorf("allocation quantity must be positive, got %d: %w", input.Quantity, ErrInvalidReference)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	alloc, err := s.repo.Create(ctx, tx, itemID, input)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit allocation create: %w", err)
	}
	return alloc, nil
}

func (s *allocationService) UpdateAllocation(ctx context.Context, allocationID string, update AllocationUpdate) (*Allocation, error) {
	if update.Quantity != nil && *update.Quantity < 0 {
		return nil, fmt.Errorf("allocation quantity cannot be negative, got %d: %w", *update.Quantity, ErrInvalidReference)
	}
	return s.repo.Update(ctx, s.pool, allocationID, update)
}

func (s *allocationService) DeleteAllocation(ctx context.Context, allocationID string) error {
	return s.repo.Delete(ctx, s.pool, allocationID)
}

func (s *allocationService) Transfer(ctx context.Context, itemID, fromLocationID, toLocationID string, quantity int, notes *string) (*TransferResult, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("transfer quantity must be positive, got %d: %w", quantity, ErrInvalidReference)
	}
	if fromLocationID == toLocationID {
		return nil, fmt.Errorf("transfer source and destination are the same location: %w", ErrInvalidReference)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := requireItem(ctx, tx, itemID); err != nil {
		return nil, err
	}
	if err := requireLocation(ctx, tx, toLocationID); err != nil {
		return nil, err
	}

	move, err := s.moveLocked(ctx, tx, itemID, fromLocationID, toLocationID, quantity, notes)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transfer: %w", err)
	}

	// Return refreshed records after the commit.
	dest, err := s.repo.GetByID(ctx, s.pool, move.destinationID)
	if err != nil {
		return nil, err
	}
	var source *Allocation
	if !move.sourceDeleted {
		if source, err = s.repo.GetByID(ctx, s.pool, move.sourceID); err != nil {
			return nil, err
		}
	}

	return &TransferResult{
		Source:        source,
		Destination:   dest,
		Quantity:      quantity,
		SourceDeleted: move.sourceDeleted,
	}, nil
}

func (s *allocationService) SplitToContainer(ctx context.Context, itemID, fromLocationID string, req SplitRequest) (*SplitResult, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("split quantity must be positive, got %d: %w", req.Quantity, ErrInvalidReference)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var itemName string
	err = tx.QueryRow(ctx, "SELECT name FROM items WHERE id = $1", itemID).Scan(&itemName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("item %s: %w", itemID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to resolve item: %w", err)
	}

	var containerID string
	created := false
	if req.CreateNewContainer {
		if req.ContainerName == nil || *req.ContainerName == "" {
			return nil, fmt.Errorf("container_name is required when creating a new container: %w", ErrInvalidReference)
		}
		if req.ParentLocationID != nil {
			if err := requireLocation(ctx, tx, *req.ParentLocationID); err != nil {
				return nil, err
			}
		}
		containerID = uuid.NewString()
		_, err = tx.Exec(ctx, `
			INSERT INTO locations (id, name, parent_id, description, is_mobile, capacity)
			VALUES ($1, $2, $3, $4, true, $5)
		`, containerID, *req.ContainerName, req.ParentLocationID,
			fmt.Sprintf("Working stock container for %s", itemName), req.Capacity)
		if err != nil {
			return nil, fmt.Errorf("failed to create container location: %w", err)
		}
		created = true
	} else {
		if req.ContainerID == nil || *req.ContainerID == "" {
			return nil, fmt.Errorf("container_id is required when not creating a new container: %w", ErrInvalidReference)
		}
		containerID = *req.ContainerID
		if err := requireLocation(ctx, tx, containerID); err != nil {
			return nil, err
		}
	}

	if fromLocationID == containerID {
		return nil, fmt.Errorf("split source and container are the same location: %w", ErrInvalidReference)
	}

	move, err := s.moveLocked(ctx, tx, itemID, fromLocationID, containerID, req.Quantity, req.Notes)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit split: %w", err)
	}

	container, err := getLocation(ctx, s.pool, containerID)
	if err != nil {
		return nil, err
	}
	alloc, err := s.repo.GetByID(ctx, s.pool, move.destinationID)
	if err != nil {
		return nil, err
	}

	return &SplitResult{
		Container:        container,
		Allocation:       alloc,
		ContainerCreated: created,
		Quantity:         req.Quantity,
	}, nil
}

type moveOutcome struct {
	sourceID      string
	destinationID string
	sourceDeleted bool
}

// moveLocked performs the shared transfer steps inside the caller's
// transaction: lock the source row, check sufficiency, decrement or delete
// the source, and upsert the destination. Both Transfer and SplitToContainer
// funnel through here so the conservation property has a single home.
func (s *allocationService) moveLocked(ctx context.Context, tx pgx.Tx, itemID, fromLocationID, toLocationID string, quantity int, notes *string) (*moveOutcome, error) {
	var sourceID string
	var available int
	err := tx.QueryRow(ctx, `
		SELECT id, quantity FROM allocations
		WHERE item_id = $1 AND location_id = $2
		FOR UPDATE
	`, itemID, fromLocationID).Scan(&sourceID, &available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("no allocation for item %s at location %s: %w", itemID, fromLocationID, ErrInvalidReference)
		}
		return nil, fmt.Errorf("failed to lock source allocation: %w", err)
	}

	if available < quantity {
		return nil, &InsufficientStockError{Available: available, Requested: quantity}
	}

	remaining := available - quantity
	sourceDeleted := remaining == 0
	if sourceDeleted {
		// Drained sources are removed. Even if the source was the item's
		// primary allocation, no other record is promoted in its place.
		if _, err := tx.Exec(ctx, "DELETE FROM allocations WHERE id = $1", sourceID); err != nil {
			return nil, fmt.Errorf("failed to delete drained source allocation: %w", err)
		}
	} else {
		if _, err := tx.Exec(ctx,
			"UPDATE allocations SET quantity = $1, updated_at = NOW() WHERE id = $2",
			remaining, sourceID); err != nil {
			return nil, fmt.Errorf("failed to decrement source allocation: %w", err)
		}
	}

	// Destination upsert. New records are never primary storage, regardless
	// of the source's flag; existing records keep their flag and only gain
	// quantity (and notes when supplied).
	var destinationID string
	err = tx.QueryRow(ctx, `
		INSERT INTO allocations (id, item_id, location_id, quantity, is_primary, notes)
		VALUES ($1, $2, $3, $4, false, $5)
		ON CONFLICT (item_id, location_id) DO UPDATE
		SET quantity   = allocations.quantity + EXCLUDED.quantity,
		    notes      = COALESCE(EXCLUDED.notes, allocations.notes),
		    updated_at = NOW()
		RETURNING id
	`, uuid.NewString(), itemID, toLocationID, quantity, notes).Scan(&destinationID)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert destination allocation: %w", err)
	}

	return &moveOutcome{
		sourceID:      sourceID,
		destinationID: destinationID,
		sourceDeleted: sourceDeleted,
	}, nil
}

func requireItem(ctx context.Context, q Querier, itemID string) error {
	var exists bool
	if err := q.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM items WHERE id = $1)", itemID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check item: %w", err)
	}
	if !exists {
		return fmt.Errorf("item %s: %w", itemID, ErrNotFound)
	}
	return nil
}

func requireLocation(ctx context.Context, q Querier, locationID string) error {
	var exists bool
	if err := q.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM locations WHERE id = $1)", locationID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check location: %w", err)
	}
	if !exists {
		return fmt.Errorf("location %s: %w", locationID, ErrNotFound)
	}
	return nil
}
