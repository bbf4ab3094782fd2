package leave

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/retry"
)

// QuotaService derives balances from configured yearly limits and the
// employee's requests. Nothing about a balance is stored.
type QuotaService struct {
	limits      map[string]int
	requestRepo leave.LeaveRequestRepository
	retryPolicy retry.Policy
}

func NewQuotaService(limits map[string]int, requestRepo leave.LeaveRequestRepository, policy retry.Policy) *QuotaService {
	copied := make(map[string]int, len(limits))
	for k, v := range limits {
		copied[k] = v
	}
	return &QuotaService{limits: copied, requestRepo: requestRepo, retryPolicy: policy}
}

// Limit returns the yearly limit of leaveType and whether it is configured.
func (q *QuotaService) Limit(leaveType string) (int, bool) {
	limit, ok := q.limits[leaveType]
	return limit, ok
}

// Remaining is what is left of leaveType in year for the employee,
// ignoring the request with excludeID.
func (q *QuotaService) Remaining(ctx context.Context, employeeID, leaveType string, year int, excludeID string) (int, error) {
	requests, err := retry.Value(ctx, q.retryPolicy, func(ctx context.Context) ([]leave.LeaveRequest, error) {
		return q.requestRepo.ListByEmployee(ctx, employeeID)
	})
	if err != nil {
		return 0, err
	}
	limit, _ := q.Limit(leaveType)
	return leave.Remaining(limit, leave.UsedDays(requests, leaveType, year, excludeID)), nil
}

func (q *QuotaService) Balance(ctx context.Context, employeeID string, year int) (leave.Balance, error) {
	requests, err := retry.Value(ctx, q.retryPolicy, func(ctx context.Context) ([]leave.LeaveRequest, error) {
		return q.requestRepo.ListByEmployee(ctx, employeeID)
	})
	if err != nil {
		return leave.Balance{}, err
	}
	return leave.ComputeBalance(employeeID, q.limits, requests, year), nil
}

func (q *QuotaService) LeaveTypes() []leave.LeaveTypeResponse {
	types := make([]leave.LeaveTypeResponse, 0, len(q.limits))
	for name, days := range q.limits {
		types = append(types, leave.LeaveTypeResponse{Name: name, DaysPerYear: days})
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Name < types[j].Name })
	return types
}
