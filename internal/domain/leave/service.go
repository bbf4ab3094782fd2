package leave

import (
	"context"
)

type LeaveService interface {
	// Request
	Submit(ctx context.Context, req SubmitLeaveRequest) (LeaveRequestResponse, error)
	Decide(ctx context.Context, req DecideLeaveRequest) (LeaveRequestResponse, error)
	GetRequest(ctx context.Context, requestID string) (LeaveRequestResponse, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]LeaveRequestResponse, error)
	Usage(ctx context.Context, leaveType string, year int) (UsageResponse, error)
	// Balance
	Balance(ctx context.Context, employeeID string) (BalanceResponse, error)
	LeaveTypes(ctx context.Context) []LeaveTypeResponse
}
