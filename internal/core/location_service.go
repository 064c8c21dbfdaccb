package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// LocationService manages the storage hierarchy and the capacity view of
// mobile containers. Locations mint their own opaque ids here; the
// allocation engine only references them.
type LocationService interface {
	CreateLocation(ctx context.Context, input LocationInput) (*Location, error)
	GetLocation(ctx context.Context, locationID string) (*Location, error)
	ListLocations(ctx context.Context) ([]Location, error)
	// DeleteLocation removes a location; its allocations go with it via
	// cascade and children are reparented to the root.
	DeleteLocation(ctx context.Context, locationID string) error
	// ContainerUsage computes the capacity view for a mobile container with a
	// non-nil capacity. Other locations fail with ErrInvalidReference.
	ContainerUsage(ctx context.Context, locationID string) (*ContainerUsage, error)
}

// LocationInput is the payload for creating a location.
type LocationInput struct {
	Name        string  `json:"name"`
	ParentID    *string `json:"parent_id,omitempty"`
	Description string  `json:"description"`
	IsMobile    bool    `json:"is_mobile"`
	Capacity    *int    `json:"capacity,omitempty"`
}

type locationService struct {
	pool *pgxpool.Pool
	repo AllocationRepository
}

func NewLocationService(pool *pgxpool.Pool, repo AllocationRepository) LocationService {
	return &locationService{pool: pool, repo: repo}
}

func (s *locationService) CreateLocation(ctx context.Context, input LocationInput) (*Location, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("location name is required: %w", ErrInvalidReference)
	}
	if input.Capacity != nil && *input.Capacity < 0 {
		return nil, fmt.Errorf("location capacity cannot be negative, got %d: %w", *input.Capacity, ErrInvalidReference)
	}
	if input.ParentID != nil {
		if err := requireLocation(ctx, s.pool, *input.ParentID); err != nil {
			return nil, err
		}
	}

	id := uuid.NewString()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO locations (id, name, parent_id, description, is_mobile, capacity)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, input.Name, input.ParentID, input.Description, input.IsMobile, input.Capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to insert location: %w", err)
	}

	return s.GetLocation(ctx, id)
}

func (s *locationService) GetLocation(ctx context.Context, locationID string) (*Location, error) {
	return getLocation(ctx, s.pool, locationID)
}

func (s *locationService) ListLocations(ctx context.Context) ([]Location, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, parent_id, description, is_mobile, capacity, created_at, updated_at
		FROM locations
		ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer rows.Close()

	var locations []Location
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.Name, &l.ParentID, &l.Description, &l.IsMobile,
			&l.Capacity, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

func (s *locationService) DeleteLocation(ctx context.Context, locationID string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM locations WHERE id = $1", locationID)
	if err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("location %s: %w", locationID, ErrNotFound)
	}
	return nil
}

func (s *locationService) ContainerUsage(ctx context.Context, locationID string) (*ContainerUsage, error) {
	loc, err := getLocation(ctx, s.pool, locationID)
	if err != nil {
		return nil, err
	}
	if !loc.IsContainer() {
		return nil, fmt.Errorf("location %s is not a capacity-tracked container: %w", locationID, ErrInvalidReference)
	}

	allocs, err := s.repo.ListAtLocation(ctx, s.pool, locationID)
	if err != nil {
		return nil, err
	}
	used := TotalQuantity(allocs)
	capacity := *loc.Capacity

	// Guard the percentage against zero-capacity containers.
	pct := decimal.Zero
	if capacity > 0 {
		pct = decimal.NewFromInt(int64(used)).
			Div(decimal.NewFromInt(int64(capacity))).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}

	return &ContainerUsage{
		LocationID:      locationID,
		Capacity:        capacity,
		Used:            used,
		Available:       capacity - used,
		UsagePercentage: pct.StringFixed(2),
	}, nil
}

func getLocation(ctx context.Context, q Querier, locationID string) (*Location, error) {
	var l Location
	err := q.QueryRow(ctx, `
		SELECT id, name, parent_id, description, is_mobile, capacity, created_at, updated_at
		FROM locations
		WHERE id = $1
	`, locationID).Scan(&l.ID, &l.Name, &l.ParentID, &l.Description, &l.IsMobile,
		&l.Capacity, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("location %s: %w", locationID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch location: %w", err)
	}
	return &l, nil
}
