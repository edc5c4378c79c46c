package marshal

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/firewatch/muster/internal/repositories/marshal Repository

import (
	"context"

	"github.com/firewatch/muster/internal/models"
)

// Repository defines the interface for marshal data persistence
type Repository interface {
	// SaveMarshal persists a marshal
	SaveMarshal(ctx context.Context, input *SaveMarshalInput) error

	// GetMarshal retrieves a marshal by ID
	GetMarshal(ctx context.Context, input *GetMarshalInput) (*models.Marshal, error)

	// ListMarshals retrieves all marshals ordered by name
	ListMarshals(ctx context.Context, input *ListMarshalsInput) (*ListMarshalsOutput, error)

	// DeleteMarshal removes a marshal. Employees assigned to the
	// marshal are left untouched.
	DeleteMarshal(ctx context.Context, input *DeleteMarshalInput) error
}
