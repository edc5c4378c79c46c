package models

import (
	"time"
)

// Employee represents a member of staff to be accounted for during
// drills. Employees persist across sessions.
type Employee struct {
	// ID is the unique identifier for the employee
	ID string `json:"id"`

	// Name is the employee's display name
	Name string `json:"name"`

	// Dept is the employee's department, empty when unknown
	Dept string `json:"dept"`

	// MarshalID is the ID of the marshal whose party this employee
	// belongs to. Empty means unassigned. The reference is weak:
	// deleting a marshal leaves it dangling.
	MarshalID string `json:"marshal_id"`

	// CreatedAt is when the employee was registered
	CreatedAt time.Time `json:"created_at"`
}
