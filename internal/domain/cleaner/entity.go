package cleaner

import (
	"time"

	"github.com/google/uuid"
)

// Status represents a cleaning company's standing on the platform.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

// Cleaner is a cleaning company registered on the marketplace. Its point
// balance lives in the points domain; this record only carries identity.
type Cleaner struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Phone     string    `db:"phone" json:"phone"`
	Region    string    `db:"region" json:"region"`
	Status    Status    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Pagination controls simple list pagination.
type Pagination struct {
	Limit  int
	Offset int
}
