package models

import (
	"time"
)

// Marshal represents a person responsible for accounting for a party of
// employees during a drill
type Marshal struct {
	// ID is the unique identifier for the marshal
	ID string `json:"id"`

	// Name is the marshal's display name
	Name string `json:"name"`

	// CreatedAt is when the marshal was registered
	CreatedAt time.Time `json:"created_at"`
}
