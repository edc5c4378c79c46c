package muster

import (
	"context"
	"errors"
	"strings"

	"github.com/firewatch/muster/internal/models"
	employeeRepo "github.com/firewatch/muster/internal/repositories/employee"
	marshalRepo "github.com/firewatch/muster/internal/repositories/marshal"
)

// AddMarshal registers a new marshal
func (s *service) AddMarshal(ctx context.Context, input *AddMarshalInput) (*AddMarshalOutput, error) {
	if input == nil || strings.TrimSpace(input.Name) == "" {
		return nil, ErrEmptyName
	}

	m := &models.Marshal{
		ID:        s.config.UUID.NewUUID(),
		Name:      strings.TrimSpace(input.Name),
		CreatedAt: s.config.Clock.Now(),
	}

	err := s.config.MarshalRepo.SaveMarshal(ctx, &marshalRepo.SaveMarshalInput{
		Marshal: m,
	})
	if err != nil {
		return nil, err
	}

	return &AddMarshalOutput{
		Marshal: m,
	}, nil
}

// ListMarshals retrieves all marshals ordered by name
func (s *service) ListMarshals(ctx context.Context, input *ListMarshalsInput) (*ListMarshalsOutput, error) {
	output, err := s.config.MarshalRepo.ListMarshals(ctx, &marshalRepo.ListMarshalsInput{})
	if err != nil {
		return nil, err
	}

	return &ListMarshalsOutput{
		Marshals: output.Marshals,
	}, nil
}

// RemoveMarshal deletes a marshal. Employees assigned to the marshal
// are not touched; their reference dangles and views render them as
// unassigned.
func (s *service) RemoveMarshal(ctx context.Context, input *RemoveMarshalInput) error {
	if input == nil || input.MarshalID == "" {
		return ErrMarshalNotFound
	}

	err := s.config.MarshalRepo.DeleteMarshal(ctx, &marshalRepo.DeleteMarshalInput{
		MarshalID: input.MarshalID,
	})
	if err != nil {
		if errors.Is(err, marshalRepo.ErrMarshalNotFound) {
			return ErrMarshalNotFound
		}
		return err
	}

	return nil
}

// AddEmployee registers a new employee. Department and marshal
// assignment are optional.
func (s *service) AddEmployee(ctx context.Context, input *AddEmployeeInput) (*AddEmployeeOutput, error) {
	if input == nil || strings.TrimSpace(input.Name) == "" {
		return nil, ErrEmptyName
	}

	employee := &models.Employee{
		ID:        s.config.UUID.NewUUID(),
		Name:      strings.TrimSpace(input.Name),
		Dept:      input.Dept,
		MarshalID: input.MarshalID,
		CreatedAt: s.config.Clock.Now(),
	}

	err := s.config.EmployeeRepo.SaveEmployee(ctx, &employeeRepo.SaveEmployeeInput{
		Employee: employee,
	})
	if err != nil {
		return nil, err
	}

	return &AddEmployeeOutput{
		Employee: employee,
	}, nil
}

// ListEmployees retrieves employees ordered by name. When MarshalID is
// set only that marshal's party is returned.
func (s *service) ListEmployees(ctx context.Context, input *ListEmployeesInput) (*ListEmployeesOutput, error) {
	if input != nil && input.MarshalID != "" {
		output, err := s.config.EmployeeRepo.ListEmployeesByMarshal(ctx, &employeeRepo.ListEmployeesByMarshalInput{
			MarshalID: input.MarshalID,
		})
		if err != nil {
			return nil, err
		}

		return &ListEmployeesOutput{
			Employees: output.Employees,
		}, nil
	}

	output, err := s.config.EmployeeRepo.ListEmployees(ctx, &employeeRepo.ListEmployeesInput{})
	if err != nil {
		return nil, err
	}

	return &ListEmployeesOutput{
		Employees: output.Employees,
	}, nil
}

// RemoveEmployee deletes an employee
func (s *service) RemoveEmployee(ctx context.Context, input *RemoveEmployeeInput) error {
	if input == nil || input.EmployeeID == "" {
		return ErrEmployeeNotFound
	}

	err := s.config.EmployeeRepo.DeleteEmployee(ctx, &employeeRepo.DeleteEmployeeInput{
		EmployeeID: input.EmployeeID,
	})
	if err != nil {
		if errors.Is(err, employeeRepo.ErrEmployeeNotFound) {
			return ErrEmployeeNotFound
		}
		return err
	}

	return nil
}
