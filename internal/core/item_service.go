package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ItemService manages part/tool identities and exposes the derived aggregate
// view over their allocations. Total quantity and primary location are
// computed on every read, never stored on the item.
type ItemService interface {
	CreateItem(ctx context.Context, input ItemInput) (*Item, error)
	GetItem(ctx context.Context, itemID string) (*Item, error)
	ListItems(ctx context.Context) ([]Item, error)
	// DeleteItem removes the item; its allocations cascade with it.
	DeleteItem(ctx context.Context, itemID string) error
	// GetStockSummary returns the aggregate view of the item's allocations:
	// zero allocations yields TotalQuantity 0 and no primary location.
	GetStockSummary(ctx context.Context, itemID string) (*StockSummary, error)
}

// ItemInput is the payload for creating an item.
type ItemInput struct {
	Name        string   `json:"name"`
	Kind        ItemKind `json:"kind"`
	Description string   `json:"description"`
}

type itemService struct {
	pool *pgxpool.Pool
	repo AllocationRepository
}

func NewItemService(pool *pgxpool.Pool, repo AllocationRepository) ItemService {
	return &itemService{pool: pool, repo: repo}
}

func (s *itemService) CreateItem(ctx context.Context, input ItemInput) (*Item, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("item name is required: %w", ErrInvalidReference)
	}
	if input.Kind != KindPart && input.Kind != KindTool {
		return nil, fmt.Errorf("item kind must be %q or %q, got %q: %w", KindPart, KindTool, input.Kind, ErrInvalidReference)
	}

	id := uuid.NewString()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO items (id, name, kind, description)
		VALUES ($1, $2, $3, $4)
	`, id, input.Name, input.Kind, input.Description)
	if err != nil {
		return nil, fmt.Errorf("failed to insert item: %w", err)
	}

	return s.GetItem(ctx, id)
}

func (s *itemService) GetItem(ctx context.Context, itemID string) (*Item, error) {
	var it Item
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, kind, description, created_at, updated_at
		FROM items
		WHERE id = $1
	`, itemID).Scan(&it.ID, &it.Name, &it.Kind, &it.Description, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("item %s: %w", itemID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch item: %w", err)
	}
	return &it, nil
}

func (s *itemService) ListItems(ctx context.Context) ([]Item, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, kind, description, created_at, updated_at
		FROM items
		ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Kind, &it.Description, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *itemService) DeleteItem(ctx context.Context, itemID string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM items WHERE id = $1", itemID)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item %s: %w", itemID, ErrNotFound)
	}
	return nil
}

func (s *itemService) GetStockSummary(ctx context.Context, itemID string) (*StockSummary, error) {
	if err := requireItem(ctx, s.pool, itemID); err != nil {
		return nil, err
	}

	allocs, err := s.repo.ListForItem(ctx, s.pool, itemID)
	if err != nil {
		return nil, err
	}

	summary := &StockSummary{
		ItemID:        itemID,
		TotalQuantity: TotalQuantity(allocs),
		LocationCount: len(allocs),
		Allocations:   allocs,
	}

	if primary := PrimaryAllocation(allocs); primary != nil {
		loc, err := getLocation(ctx, s.pool, primary.LocationID)
		if err != nil {
			return nil, err
		}
		summary.PrimaryLocation = loc
	}

	return summary, nil
}
