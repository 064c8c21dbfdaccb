package core

import "time"

type ItemKind string

const (
	KindPart ItemKind = "part"
	KindTool ItemKind = "tool"
)

// Item is a part or tool tracked by the system. Quantity and location are
// never stored on the item; they are derived from its allocations.
type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Kind        ItemKind  `json:"kind"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Location is a node in the physical storage hierarchy. A location marked
// mobile with a non-nil capacity is a container (e.g. a tray or cassette).
type Location struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ParentID    *string   `json:"parent_id,omitempty"`
	Description string    `json:"description"`
	IsMobile    bool      `json:"is_mobile"`
	Capacity    *int      `json:"capacity,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsContainer reports whether the location can serve as a capacity-tracked
// container destination.
func (l *Location) IsContainer() bool {
	return l.IsMobile && l.Capacity != nil
}
