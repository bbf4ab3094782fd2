package leave

import "context"

type LeaveRequestRepository interface {
	Insert(ctx context.Context, req LeaveRequest) (LeaveRequest, error)
	Update(ctx context.Context, id string, fields RequestUpdate) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error)
	ListByTypeAndYear(ctx context.Context, leaveType string, year int) ([]LeaveRequest, error)
}
