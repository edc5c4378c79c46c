package employee

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/firewatch/muster/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	employeeKeyPrefix = "employee:"
	employeesKey      = "employees"
	partyKeyPrefix    = "party:" // Index of employee IDs per marshal
)

// ErrEmployeeNotFound is returned when an employee is not found
var ErrEmployeeNotFound = errors.New("employee not found")

// Config holds configuration for the Redis employee repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed employee repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	return &redisRepository{
		client: cfg.RedisClient,
	}, nil
}

// SaveEmployee persists an employee to Redis
func (r *redisRepository) SaveEmployee(ctx context.Context, input *SaveEmployeeInput) error {
	if input == nil || input.Employee == nil {
		return errors.New("input and employee cannot be nil")
	}

	employeeJSON, err := json.Marshal(input.Employee)
	if err != nil {
		return fmt.Errorf("failed to marshal employee: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, employeeKeyPrefix+input.Employee.ID, employeeJSON, 0)
	pipe.SAdd(ctx, employeesKey, input.Employee.ID)

	// Maintain the party index for filtered views
	if input.Employee.MarshalID != "" {
		pipe.SAdd(ctx, partyKeyPrefix+input.Employee.MarshalID, input.Employee.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}

	return nil
}

// GetEmployee retrieves an employee by ID from Redis
func (r *redisRepository) GetEmployee(ctx context.Context, input *GetEmployeeInput) (*models.Employee, error) {
	if input == nil || input.EmployeeID == "" {
		return nil, errors.New("input and employee ID cannot be empty")
	}

	employeeJSON, err := r.client.Get(ctx, employeeKeyPrefix+input.EmployeeID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}

	var employee models.Employee
	if err := json.Unmarshal([]byte(employeeJSON), &employee); err != nil {
		return nil, fmt.Errorf("failed to unmarshal employee: %w", err)
	}

	return &employee, nil
}

// ListEmployees retrieves all employees from Redis, ordered by name
func (r *redisRepository) ListEmployees(ctx context.Context, input *ListEmployeesInput) (*ListEmployeesOutput, error) {
	employeeIDs, err := r.client.SMembers(ctx, employeesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get employee IDs: %w", err)
	}

	employees, err := r.fetchEmployees(ctx, employeeIDs)
	if err != nil {
		return nil, err
	}

	return &ListEmployeesOutput{
		Employees: employees,
	}, nil
}

// ListEmployeesByMarshal retrieves the employees assigned to a marshal,
// ordered by name
func (r *redisRepository) ListEmployeesByMarshal(ctx context.Context, input *ListEmployeesByMarshalInput) (*ListEmployeesByMarshalOutput, error) {
	if input == nil || input.MarshalID == "" {
		return nil, errors.New("input and marshal ID cannot be empty")
	}

	employeeIDs, err := r.client.SMembers(ctx, partyKeyPrefix+input.MarshalID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get party employee IDs: %w", err)
	}

	employees, err := r.fetchEmployees(ctx, employeeIDs)
	if err != nil {
		return nil, err
	}

	return &ListEmployeesByMarshalOutput{
		Employees: employees,
	}, nil
}

// DeleteEmployee removes an employee from Redis
func (r *redisRepository) DeleteEmployee(ctx context.Context, input *DeleteEmployeeInput) error {
	if input == nil || input.EmployeeID == "" {
		return errors.New("input and employee ID cannot be empty")
	}

	// Get the employee first to find its party index entry
	employee, err := r.GetEmployee(ctx, &GetEmployeeInput{
		EmployeeID: input.EmployeeID,
	})
	if err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, employeeKeyPrefix+input.EmployeeID)
	pipe.SRem(ctx, employeesKey, input.EmployeeID)

	if employee.MarshalID != "" {
		pipe.SRem(ctx, partyKeyPrefix+employee.MarshalID, input.EmployeeID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}

	return nil
}

// fetchEmployees loads a set of employee records and sorts them by name
func (r *redisRepository) fetchEmployees(ctx context.Context, employeeIDs []string) ([]*models.Employee, error) {
	if len(employeeIDs) == 0 {
		return []*models.Employee{}, nil
	}

	pipe := r.client.Pipeline()
	commands := make(map[string]*redis.StringCmd)

	for _, employeeID := range employeeIDs {
		commands[employeeID] = pipe.Get(ctx, employeeKeyPrefix+employeeID)
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get employees: %w", err)
	}

	employees := make([]*models.Employee, 0, len(employeeIDs))
	for employeeID, cmd := range commands {
		employeeJSON, err := cmd.Result()
		if err != nil {
			if err == redis.Nil {
				// Deleted between listing the IDs and fetching the record
				continue
			}
			return nil, fmt.Errorf("failed to get employee %s: %w", employeeID, err)
		}

		var employee models.Employee
		if err := json.Unmarshal([]byte(employeeJSON), &employee); err != nil {
			return nil, fmt.Errorf("failed to unmarshal employee %s: %w", employeeID, err)
		}

		employees = append(employees, &employee)
	}

	sort.Slice(employees, func(i, j int) bool {
		return strings.ToLower(employees[i].Name) < strings.ToLower(employees[j].Name)
	})

	return employees, nil
}
