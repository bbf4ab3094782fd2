package employee

import "context"

// Directory is the read side the payroll and leave engines depend on.
type Directory interface {
	ListActive(ctx context.Context) ([]Employee, error)
	GetByID(ctx context.Context, id string) (Employee, error)
}

type EmployeeRepository interface {
	Directory
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	List(ctx context.Context) ([]Employee, error)
}
