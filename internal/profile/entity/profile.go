package entity

import "time"

// Organizer types.
const (
	OrganizerIndividual   = "individual"
	OrganizerOrganization = "organization"
)

// OrganizerProfile gives a user the capacity to create events. A user has at most one.
type OrganizerProfile struct {
	ID          string    `json:"id" db:"id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	Name        string    `json:"name" db:"name"`
	Type        string    `json:"type" db:"type"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// VendorProfile gives a user the capacity to offer services. A user has at most one.
type VendorProfile struct {
	ID          string    `json:"id" db:"id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Address     string    `json:"address" db:"address"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
