package employee

import "github.com/firewatch/muster/internal/models"

// SaveEmployeeInput contains parameters for persisting an employee
type SaveEmployeeInput struct {
	Employee *models.Employee
}

// GetEmployeeInput contains parameters for retrieving an employee
type GetEmployeeInput struct {
	EmployeeID string
}

// ListEmployeesInput contains parameters for listing employees
type ListEmployeesInput struct{}

// ListEmployeesOutput contains the result of listing employees
type ListEmployeesOutput struct {
	Employees []*models.Employee
}

// ListEmployeesByMarshalInput contains parameters for listing a marshal's party
type ListEmployeesByMarshalInput struct {
	MarshalID string
}

// ListEmployeesByMarshalOutput contains the result of listing a marshal's party
type ListEmployeesByMarshalOutput struct {
	Employees []*models.Employee
}

// DeleteEmployeeInput contains parameters for deleting an employee
type DeleteEmployeeInput struct {
	EmployeeID string
}
