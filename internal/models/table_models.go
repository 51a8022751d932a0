package models

import "time"

// Table statuses.
const (
	TableStatusAvailable = "available"
	TableStatusOccupied  = "occupied"
	TableStatusReserved  = "reserved"
	TableStatusDirty     = "dirty"
)

// RestaurantTable represents a physical table on the floor plan.
// Status is intended to be occupied iff at least one preparing order points
// at the table; every occupancy write goes through the POS service so the
// two stay in sync.
type RestaurantTable struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name" binding:"required"`
	Seats     int       `json:"seats" db:"seats"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
