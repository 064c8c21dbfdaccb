package app

// CreateItemRequest is the input for registering a new part or tool.
type CreateItemRequest struct {
	Name        string
	Kind        string // "part" or "tool"
	Description string
}

// CreateLocationRequest is the input for registering a storage location.
type CreateLocationRequest struct {
	Name        string
	ParentID    *string
	Description string
	IsMobile    bool
	Capacity    *int
}

// CreateAllocationRequest is the input for creating an allocation record.
type CreateAllocationRequest struct {
	LocationID string
	Quantity   int
	IsPrimary  bool
	Notes      *string
}

// UpdateAllocationRequest is a partial edit; nil fields stay untouched.
type UpdateAllocationRequest struct {
	Quantity  *int
	IsPrimary *bool
	Notes     *string
}

// TransferRequest is the input for moving stock between two locations.
type TransferRequest struct {
	ItemID         string
	FromLocationID string
	ToLocationID   string
	Quantity       int
	Notes          *string
}

// SplitRequest is the input for splitting working stock into a container.
type SplitRequest struct {
	ItemID             string
	FromLocationID     string
	Quantity           int
	CreateNewContainer bool
	ContainerID        *string
	ContainerName      *string
	ParentLocationID   *string
	Capacity           *int
	Notes              *string
}
