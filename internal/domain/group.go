package domain

import "time"

// Group is a named bucket of dials, selectable as the active view.
// Exactly one group is selected at a time (enforced by the state
// manager's SetSelectedGroup, which clears all flags and sets one).
type Group struct {
	// ID is assigned by the store on creation; zero before persistence.
	ID int64 `json:"id"`

	// Name is the display label. It doubles as the natural key for
	// export/import reconciliation, so it must be non-empty.
	Name string `json:"name"`

	// Pos defines the global display order among all groups.
	// Dense and zero-based: after any structural change the set of
	// Pos values is exactly {0..n-1}.
	Pos int `json:"pos"`

	// IsSelected marks the group whose dials the dashboard shows.
	IsSelected bool `json:"is_selected"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GroupPosition says where AddGroup places a new group in the order.
type GroupPosition string

const (
	// PositionTop inserts at pos 0 and shifts every other group down.
	PositionTop GroupPosition = "top"
	// PositionBottom appends after the current maximum pos.
	PositionBottom GroupPosition = "bottom"
)

// Valid reports whether p is one of the two known placements.
func (p GroupPosition) Valid() bool {
	return p == PositionTop || p == PositionBottom
}
