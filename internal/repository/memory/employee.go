package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
)

type employeeRepositoryImpl struct {
	mu        sync.RWMutex
	employees map[string]employee.Employee
}

func NewEmployeeRepository(seed ...employee.Employee) employee.EmployeeRepository {
	r := &employeeRepositoryImpl{employees: make(map[string]employee.Employee)}
	for _, e := range seed {
		_, _ = r.Create(context.Background(), e)
	}
	return r
}

func (r *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.employees {
		if e.EmployeeCode != "" && e.EmployeeCode == newEmployee.EmployeeCode {
			return employee.Employee{}, employee.ErrEmployeeCodeExists
		}
	}

	if newEmployee.ID == "" {
		newEmployee.ID = newID()
	}
	if newEmployee.Status == "" {
		newEmployee.Status = employee.StatusActive
	}
	ts := now()
	newEmployee.CreatedAt, newEmployee.UpdatedAt = ts, ts
	r.employees[newEmployee.ID] = newEmployee
	return newEmployee, nil
}

func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r *employeeRepositoryImpl) ListActive(ctx context.Context) ([]employee.Employee, error) {
	all, _ := r.List(ctx)
	active := make([]employee.Employee, 0, len(all))
	for _, e := range all {
		if e.IsActive() {
			active = append(active, e)
		}
	}
	return active, nil
}

func (r *employeeRepositoryImpl) List(ctx context.Context) ([]employee.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]employee.Employee, 0, len(r.employees))
	for _, e := range r.employees {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].EmployeeCode < list[j].EmployeeCode })
	return list, nil
}
