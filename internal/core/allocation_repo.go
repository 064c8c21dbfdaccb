package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx satisfied by both *pgxpool.Pool and pgx.Tx.
// Repository methods take it explicitly so the service decides the
// transaction boundary; the repository never reaches for a global handle.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AllocationRepository is pure persistence access over allocation rows.
// Business rules live in AllocationService; the repository only enforces
// referential checks.
type AllocationRepository interface {
	ListForItem(ctx context.Context, q Querier, itemID string) ([]Allocation, error)
	GetByID(ctx context.Context, q Querier, allocationID string) (*Allocation, error)
	// GetByItemAndLocation returns (nil, nil) when no allocation exists for
	// the pair, so callers can probe without treating absence as an error.
	GetByItemAndLocation(ctx context.Context, q Querier, itemID, locationID string) (*Allocation, error)
	ListAtLocation(ctx context.Context, q Querier, locationID string) ([]Allocation, error)
	Create(ctx context.Context, q Querier, itemID string, input AllocationInput) (*Allocation, error)
	Update(ctx context.Context, q Querier, allocationID string, update AllocationUpdate) (*Allocation, error)
	UpdateQuantity(ctx context.Context, q Querier, allocationID string, quantity int) error
	Delete(ctx context.Context, q Querier, allocationID string) error
	DeleteAllForItem(ctx context.Context, q Querier, itemID string) (int64, error)
	GetPrimary(ctx context.Context, q Querier, itemID string) (*Allocation, error)
	SumQuantity(ctx context.Context, q Querier, itemID string) (int, error)
}

type allocationRepo struct{}

func NewAllocationRepository() AllocationRepository {
	return &allocationRepo{}
}

const allocationColumns = `a.id, a.item_id, a.location_id, a.quantity, a.is_primary, a.notes,
	       a.created_at, a.updated_at, l.name`

func (r *allocationRepo) ListForItem(ctx context.Context, q Querier, itemID string) ([]Allocation, error) {
	rows, err := q.Query(ctx, `
		SELECT `+allocationColumns+`
		FROM allocations a
		JOIN locations l ON l.id = a.location_id
		WHERE a.item_id = $1
		ORDER BY a.created_at, a.id
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocations for item: %w", err)
	}
	defer rows.Close()
	return scanAllocations(rows)
}

func (r *allocationRepo) GetByID(ctx context.Context, q Querier, allocationID string) (*Allocation, error) {
	a, err := scanOneAllocation(q.QueryRow(ctx, `
		SELECT `+allocationColumns+`
		FROM allocations a
		JOIN locations l ON l.id = a.location_id
		WHERE a.id = $1
	`, allocationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("allocation %s: %w", allocationID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch allocation: %w", err)
	}
	return a, nil
}

func (r *allocationRepo) GetByItemAndLocation(ctx context.Context, q Querier, itemID, locationID string) (*Allocation, error) {
	a, err := scanOneAllocation(q.QueryRow(ctx, `
		SELECT `+allocationColumns+`
		FROM allocations a
		JOIN locations l ON l.id = a.location_id
		WHERE a.item_id = $1 AND a.location_id = $2
	`, itemID, locationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch allocation by pair: %w", err)
	}
	return a, nil
}

func (r *allocationRepo) ListAtLocation(ctx context.Context, q Querier, locationID string) ([]Allocation, error) {
	rows, err := q.Query(ctx, `
		SELECT `+allocationColumns+`
		FROM allocations a
		JOIN locations l ON l.id = a.location_id
		WHERE a.location_id = $1
		ORDER BY a.created_at, a.id
	`, locationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocations at location: %w", err)
	}
	defer rows.Close()
	return scanAllocations(rows)
}

func (r *allocationRepo) Create(ctx context.Context, q Querier, itemID string, input AllocationInput) (*Allocation, error) {
	var exists bool
	if err := q.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM items WHERE id = $1)", itemID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check item: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("item %s: %w", itemID, ErrNotFound)
	}
	if err := q.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM locations WHERE id = $1)", input.LocationID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check location: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("location %s: %w", input.LocationID, ErrNotFound)
	}

	id := uuid.NewString()
	_, err := q.Exec(ctx, `
		INSERT INTO allocations (id, item_id, location_id, quantity, is_primary, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, itemID, input.LocationID, input.Quantity, input.IsPrimary, input.Notes)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, &DuplicateAllocationError{ItemID: itemID, LocationID: input.LocationID}
		}
		return nil, fmt.Errorf("failed to insert allocation: %w", err)
	}

	return r.GetByID(ctx, q, id)
}

func (r *allocationRepo) Update(ctx context.Context, q Querier, allocationID string, update AllocationUpdate) (*Allocation, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{allocationID}
	if update.Quantity != nil {
		args = append(args, *update.Quantity)
		sets = append(sets, fmt.Sprintf("quantity = $%d", len(args)))
	}
	if update.IsPrimary != nil {
		args = append(args, *update.IsPrimary)
		sets = append(sets, fmt.Sprintf("is_primary = $%d", len(args)))
	}
	if update.Notes != nil {
		args = append(args, *update.Notes)
		sets = append(sets, fmt.Sprintf("notes = $%d", len(args)))
	}

	tag, err := q.Exec(ctx,
		"UPDATE allocations SET "+strings.Join(sets, ", ")+" WHERE id = $1", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update allocation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("allocation %s: %w", allocationID, ErrNotFound)
	}

	return r.GetByID(ctx, q, allocationID)
}

func (r *allocationRepo) UpdateQuantity(ctx context.Context, q Querier, allocationID string, quantity int) error {
	tag, err := q.Exec(ctx,
		"UPDATE allocations SET quantity = $1, updated_at = NOW() WHERE id = $2",
		quantity, allocationID)
	if err != nil {
		return fmt.Errorf("failed to update allocation quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("allocation %s: %w", allocationID, ErrNotFound)
	}
	return nil
}

func (r *allocationRepo) Delete(ctx context.Context, q Querier, allocationID string) error {
	tag, err := q.Exec(ctx, "DELETE FROM allocations WHERE id = $1", allocationID)
	if err != nil {
		return fmt.Errorf("failed to delete allocation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("allocation %s: %w", allocationID, ErrNotFound)
	}
	return nil
}

func (r *allocationRepo) DeleteAllForItem(ctx context.Context, q Querier, itemID string) (int64, error) {
	tag, err := q.Exec(ctx, "DELETE FROM allocations WHERE item_id = $1", itemID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete allocations for item: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *allocationRepo) GetPrimary(ctx context.Context, q Querier, itemID string) (*Allocation, error) {
	a, err := scanOneAllocation(q.QueryRow(ctx, `
		SELECT `+allocationColumns+`
		FROM allocations a
		JOIN locations l ON l.id = a.location_id
		WHERE a.item_id = $1 AND a.is_primary = true
		ORDER BY a.created_at, a.id
		LIMIT 1
	`, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch primary allocation: %w", err)
	}
	return a, nil
}

func (r *allocationRepo) SumQuantity(ctx context.Context, q Querier, itemID string) (int, error) {
	var total int
	err := q.QueryRow(ctx,
		"SELECT COALESCE(SUM(quantity), 0) FROM allocations WHERE item_id = $1", itemID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum allocation quantity: %w", err)
	}
	return total, nil
}

func scanOneAllocation(row pgx.Row) (*Allocation, error) {
	var a Allocation
	if err := row.Scan(&a.ID, &a.ItemID, &a.LocationID, &a.Quantity, &a.IsPrimary, &a.Notes,
		&a.CreatedAt, &a.UpdatedAt, &a.LocationName); err != nil {
		return nil, err
	}
	return &a, nil
}

func scanAllocations(rows pgx.Rows) ([]Allocation, error) {
	var allocs []Allocation
	for rows.Next() {
		var a Allocation
		if err := rows.Scan(&a.ID, &a.ItemID, &a.LocationID, &a.Quantity, &a.IsPrimary, &a.Notes,
			&a.CreatedAt, &a.UpdatedAt, &a.LocationName); err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}
		allocs = append(allocs, a)
	}
	return allocs, rows.Err()
}

// isUniqueViolation reports whether err is a Postgres unique_violation (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
