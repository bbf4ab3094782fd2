package leave

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/lock"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/retry"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/service"
)

type LeaveServiceImpl struct {
	leave.LeaveRequestRepository
	directory      employee.Directory
	quotaService   *QuotaService
	requestService *RequestService
	rt             service.Runtime
}

func NewLeaveService(
	requestRepo leave.LeaveRequestRepository,
	directory employee.Directory,
	limits map[string]int,
	locker lock.Locker,
	rt service.Runtime,
) leave.LeaveService {
	rt = rt.WithDefaults()
	quota := NewQuotaService(limits, requestRepo, rt.Policy)
	return &LeaveServiceImpl{
		LeaveRequestRepository: requestRepo,
		directory:              directory,
		quotaService:           quota,
		requestService:         NewRequestService(requestRepo, directory, quota, locker, rt),
		rt:                     rt,
	}
}

// Submit implements leave.LeaveService.
func (l *LeaveServiceImpl) Submit(ctx context.Context, req leave.SubmitLeaveRequest) (resp leave.LeaveRequestResponse, err error) {
	defer l.rt.Metrics.Observe("leave.submit", time.Now(), &err)

	created, err := l.requestService.CreateRequest(ctx, req)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	return leave.ToLeaveRequestResponse(created), nil
}

// Decide implements leave.LeaveService.
func (l *LeaveServiceImpl) Decide(ctx context.Context, req leave.DecideLeaveRequest) (resp leave.LeaveRequestResponse, err error) {
	defer l.rt.Metrics.Observe("leave.decide", time.Now(), &err)

	decided, err := l.requestService.Decide(ctx, req)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	return leave.ToLeaveRequestResponse(decided), nil
}

// GetRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) GetRequest(ctx context.Context, requestID string) (leave.LeaveRequestResponse, error) {
	request, err := retry.Value(ctx, l.rt.Policy, func(ctx context.Context) (leave.LeaveRequest, error) {
		return l.LeaveRequestRepository.GetByID(ctx, requestID)
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	return leave.ToLeaveRequestResponse(request), nil
}

// ListByEmployee implements leave.LeaveService.
func (l *LeaveServiceImpl) ListByEmployee(ctx context.Context, employeeID string) ([]leave.LeaveRequestResponse, error) {
	if validator.IsEmpty(employeeID) {
		return nil, validator.ValidationErrors{{Field: "employee_id", Message: "employee_id is required"}}
	}

	requests, err := retry.Value(ctx, l.rt.Policy, func(ctx context.Context) ([]leave.LeaveRequest, error) {
		return l.LeaveRequestRepository.ListByEmployee(ctx, employeeID)
	})
	if err != nil {
		return nil, err
	}

	resp := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, r := range requests {
		resp = append(resp, leave.ToLeaveRequestResponse(r))
	}
	return resp, nil
}

// Usage implements leave.LeaveService. Rejected requests are listed but
// do not count toward the day totals.
func (l *LeaveServiceImpl) Usage(ctx context.Context, leaveType string, year int) (leave.UsageResponse, error) {
	var errs validator.ValidationErrors
	if validator.IsEmpty(leaveType) {
		errs.Add("type", "type is required")
	}
	if year < 1 {
		errs.Add("year", "year must be a positive number")
	}
	if err := errs.Err(); err != nil {
		return leave.UsageResponse{}, err
	}

	requests, err := retry.Value(ctx, l.rt.Policy, func(ctx context.Context) ([]leave.LeaveRequest, error) {
		return l.LeaveRequestRepository.ListByTypeAndYear(ctx, leaveType, year)
	})
	if err != nil {
		return leave.UsageResponse{}, err
	}

	resp := leave.UsageResponse{
		LeaveType:     leaveType,
		Year:          year,
		TotalRequests: len(requests),
		Requests:      make([]leave.LeaveRequestResponse, 0, len(requests)),
	}
	for _, r := range requests {
		resp.Requests = append(resp.Requests, leave.ToLeaveRequestResponse(r))
		if r.Status == leave.StatusRejected {
			continue
		}
		resp.PaidDays += r.PaidDays
		resp.UnpaidDays += r.UnpaidDays
	}
	return resp, nil
}

// Balance implements leave.LeaveService.
func (l *LeaveServiceImpl) Balance(ctx context.Context, employeeID string) (leave.BalanceResponse, error) {
	emp, err := retry.Value(ctx, l.rt.Policy, func(ctx context.Context) (employee.Employee, error) {
		return l.directory.GetByID(ctx, employeeID)
	})
	if err != nil {
		return leave.BalanceResponse{}, err
	}

	balance, err := l.quotaService.Balance(ctx, emp.ID, l.rt.Now().Year())
	if err != nil {
		return leave.BalanceResponse{}, err
	}
	return leave.ToBalanceResponse(balance), nil
}

// LeaveTypes implements leave.LeaveService.
func (l *LeaveServiceImpl) LeaveTypes(ctx context.Context) []leave.LeaveTypeResponse {
	return l.quotaService.LeaveTypes()
}
