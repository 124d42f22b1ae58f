package entity

import (
	"bytes"
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/kentalbores/IntProg-sub001/pkg/utilities"
)

// User represents an account row in the `users` table.
// PasswordHash is optional so accounts created through an external identity
// provider can exist without one.
type User struct {
	ID                  int64     `json:"id"`
	Username            string    `json:"username"`
	Email               string    `json:"email"`
	PasswordHash        *string   `json:"-"`
	FirstName           string    `json:"firstname"`
	LastName            string    `json:"lastname"`
	Roles               RoleSet   `json:"role"`
	RolesList           bool      `json:"-"` // false when the row still holds a single scalar role
	ProfilePicture      string    `json:"profile_picture"`
	OnboardingCompleted bool      `json:"onboarding_completed"`
	RegisteredEvents    EventIDs  `json:"registered_events"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// StoredRoles returns the roles in the form they were read from storage.
func (u *User) StoredRoles() StoredRoles {
	return StoredRoles{Roles: u.Roles, List: u.RolesList}
}

// EventIDs is a JSONB array of event ids the user registered for.
type EventIDs []int64

func (e *EventIDs) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*e = EventIDs{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan registered events: unsupported type %T", src)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		*e = EventIDs{}
		return nil
	}
	var ids []int64
	if err := utilities.JSON.Unmarshal(raw, &ids); err != nil {
		return fmt.Errorf("scan registered events: %w", err)
	}
	if ids == nil {
		ids = []int64{}
	}
	*e = ids
	return nil
}

func (e EventIDs) Value() (driver.Value, error) {
	if e == nil {
		return "[]", nil
	}
	b, err := utilities.JSON.Marshal([]int64(e))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
