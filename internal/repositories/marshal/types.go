package marshal

import "github.com/firewatch/muster/internal/models"

// SaveMarshalInput contains parameters for persisting a marshal
type SaveMarshalInput struct {
	Marshal *models.Marshal
}

// GetMarshalInput contains parameters for retrieving a marshal
type GetMarshalInput struct {
	MarshalID string
}

// ListMarshalsInput contains parameters for listing marshals
type ListMarshalsInput struct{}

// ListMarshalsOutput contains the result of listing marshals
type ListMarshalsOutput struct {
	Marshals []*models.Marshal
}

// DeleteMarshalInput contains parameters for deleting a marshal
type DeleteMarshalInput struct {
	MarshalID string
}
