package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `
	id, employee_code, full_name, email, department, role, status, join_date,
	basic_salary, hra, allowances, transport_allowance, medical_allowance, food_allowance,
	bank_name, account_number, ifsc_code, created_at, updated_at`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	var bankName, accountNumber, ifscCode *string
	err := row.Scan(
		&e.ID, &e.EmployeeCode, &e.FullName, &e.Email, &e.Department, &e.Role, &e.Status, &e.JoinDate,
		&e.Salary.Basic, &e.Salary.HRA, &e.Salary.Allowances, &e.Salary.Transport, &e.Salary.Medical, &e.Salary.Food,
		&bankName, &accountNumber, &ifscCode, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return employee.Employee{}, err
	}
	if bankName != nil && accountNumber != nil {
		e.Bank = &employee.BankAccount{BankName: *bankName, AccountNumber: *accountNumber}
		if ifscCode != nil {
			e.Bank.IFSCCode = *ifscCode
		}
	}
	return e, nil
}

// Create implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	var bankName, accountNumber, ifscCode *string
	if newEmployee.Bank != nil {
		bankName, accountNumber, ifscCode = &newEmployee.Bank.BankName, &newEmployee.Bank.AccountNumber, &newEmployee.Bank.IFSCCode
	}
	status := newEmployee.Status
	if status == "" {
		status = employee.StatusActive
	}

	query := `
		INSERT INTO employees (
			employee_code, full_name, email, department, role, status, join_date,
			basic_salary, hra, allowances, transport_allowance, medical_allowance, food_allowance,
			bank_name, account_number, ifsc_code
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING ` + employeeColumns

	created, err := scanEmployee(q.QueryRow(ctx, query,
		newEmployee.EmployeeCode, newEmployee.FullName, newEmployee.Email, newEmployee.Department, newEmployee.Role,
		status, newEmployee.JoinDate,
		newEmployee.Salary.Basic, newEmployee.Salary.HRA, newEmployee.Salary.Allowances,
		newEmployee.Salary.Transport, newEmployee.Salary.Medical, newEmployee.Salary.Food,
		bankName, accountNumber, ifscCode,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return employee.Employee{}, employee.ErrEmployeeCodeExists
		}
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}
	return created, nil
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	e, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by id: %w", err)
	}
	return e, nil
}

// ListActive implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) ListActive(ctx context.Context) ([]employee.Employee, error) {
	return r.list(ctx, `SELECT `+employeeColumns+` FROM employees WHERE status = $1 ORDER BY employee_code`, employee.StatusActive)
}

// List implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) List(ctx context.Context) ([]employee.Employee, error) {
	return r.list(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY employee_code`)
}

func (r *employeeRepositoryImpl) list(ctx context.Context, query string, args ...any) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	employees := []employee.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}
	return employees, nil
}
