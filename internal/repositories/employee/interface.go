package employee

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/firewatch/muster/internal/repositories/employee Repository

import (
	"context"

	"github.com/firewatch/muster/internal/models"
)

// Repository defines the interface for employee data persistence
type Repository interface {
	// SaveEmployee persists an employee
	SaveEmployee(ctx context.Context, input *SaveEmployeeInput) error

	// GetEmployee retrieves an employee by ID
	GetEmployee(ctx context.Context, input *GetEmployeeInput) (*models.Employee, error)

	// ListEmployees retrieves all employees ordered by name
	ListEmployees(ctx context.Context, input *ListEmployeesInput) (*ListEmployeesOutput, error)

	// ListEmployeesByMarshal retrieves a marshal's party ordered by name
	ListEmployeesByMarshal(ctx context.Context, input *ListEmployeesByMarshalInput) (*ListEmployeesByMarshalOutput, error)

	// DeleteEmployee removes an employee
	DeleteEmployee(ctx context.Context, input *DeleteEmployeeInput) error
}
