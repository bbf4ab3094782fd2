package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/lock"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/retry"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestService submits and decides requests. Both run under a lock on
// (employee, leave type) so two requests never price against the same
// remaining balance.
type RequestService struct {
	requestRepo leave.LeaveRequestRepository
	directory   employee.Directory
	quota       *QuotaService
	locker      lock.Locker
	rt          service.Runtime
}

func NewRequestService(
	requestRepo leave.LeaveRequestRepository,
	directory employee.Directory,
	quota *QuotaService,
	locker lock.Locker,
	rt service.Runtime,
) *RequestService {
	return &RequestService{
		requestRepo: requestRepo,
		directory:   directory,
		quota:       quota,
		locker:      locker,
		rt:          rt.WithDefaults(),
	}
}

func lockKey(employeeID, leaveType string) string {
	return "leave:" + employeeID + ":" + leaveType
}

func (r *RequestService) CreateRequest(ctx context.Context, req leave.SubmitLeaveRequest) (leave.LeaveRequest, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequest{}, err
	}
	if _, ok := r.quota.Limit(req.LeaveType); !ok {
		return leave.LeaveRequest{}, fmt.Errorf("%w: %q", leave.ErrUnknownLeaveType, req.LeaveType)
	}

	emp, err := retry.Value(ctx, r.rt.Policy, func(ctx context.Context) (employee.Employee, error) {
		return r.directory.GetByID(ctx, req.EmployeeID)
	})
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	release, err := r.locker.Acquire(ctx, lockKey(emp.ID, req.LeaveType))
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("acquire leave ledger lock: %w", err)
	}
	defer release()

	start, end := req.Dates()
	total := leave.TotalDays(start, end)
	remaining, err := r.quota.Remaining(ctx, emp.ID, req.LeaveType, start.Year(), "")
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	paid, unpaid := leave.Price(total, remaining)

	now := r.rt.Now()
	request := leave.LeaveRequest{
		ID:           uuid.NewString(),
		EmployeeID:   emp.ID,
		LeaveType:    req.LeaveType,
		StartDate:    start,
		EndDate:      end,
		Reason:       req.Reason,
		Status:       leave.StatusPending,
		TotalDays:    total,
		PaidDays:     paid,
		UnpaidDays:   unpaid,
		AppliedDate:  time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		EmployeeName: &emp.FullName,
	}

	// The id is fixed before the first attempt so a retry after a timed-out
	// but committed insert finds the stored request instead of adding one.
	created, err := retry.Value(ctx, r.rt.Policy, func(ctx context.Context) (leave.LeaveRequest, error) {
		created, err := r.requestRepo.Insert(ctx, request)
		if errors.Is(err, leave.ErrLeaveRequestAlreadyExists) {
			return r.requestRepo.GetByID(ctx, request.ID)
		}
		return created, err
	})
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	r.rt.Logger.Info("leave request submitted",
		zap.String("request_id", created.ID),
		zap.String("employee_id", created.EmployeeID),
		zap.String("leave_type", created.LeaveType),
		zap.Int("paid_days", created.PaidDays),
		zap.Int("unpaid_days", created.UnpaidDays),
	)
	return created, nil
}

// Decide approves or rejects a Pending request. Approval re-prices the
// request against what the employee's other requests have used since it
// was submitted.
func (r *RequestService) Decide(ctx context.Context, req leave.DecideLeaveRequest) (leave.LeaveRequest, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequest{}, err
	}

	request, err := r.get(ctx, req.RequestID)
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	release, err := r.locker.Acquire(ctx, lockKey(request.EmployeeID, request.LeaveType))
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("acquire leave ledger lock: %w", err)
	}
	defer release()

	// Re-read under the lock; a concurrent decision may have landed.
	request, err = r.get(ctx, req.RequestID)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	if request.Status != leave.StatusPending {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestAlreadyProcessed
	}

	fields := leave.RequestUpdate{
		Status:     leave.RequestStatus(req.Status),
		PaidDays:   request.PaidDays,
		UnpaidDays: request.UnpaidDays,
		DecidedAt:  r.rt.Now(),
	}
	if req.DecidedBy != "" {
		decidedBy := req.DecidedBy
		fields.DecidedBy = &decidedBy
	}
	if fields.Status == leave.StatusApproved {
		remaining, err := r.quota.Remaining(ctx, request.EmployeeID, request.LeaveType, request.StartDate.Year(), request.ID)
		if err != nil {
			return leave.LeaveRequest{}, err
		}
		fields.PaidDays, fields.UnpaidDays = leave.Price(request.TotalDays, remaining)
	}

	updated, err := retry.Value(ctx, r.rt.Policy, func(ctx context.Context) (leave.LeaveRequest, error) {
		return r.requestRepo.Update(ctx, request.ID, fields)
	})
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	r.rt.Logger.Info("leave request decided",
		zap.String("request_id", updated.ID),
		zap.String("status", string(updated.Status)),
		zap.Int("paid_days", updated.PaidDays),
		zap.Int("unpaid_days", updated.UnpaidDays),
	)
	return updated, nil
}

func (r *RequestService) get(ctx context.Context, id string) (leave.LeaveRequest, error) {
	return retry.Value(ctx, r.rt.Policy, func(ctx context.Context) (leave.LeaveRequest, error) {
		return r.requestRepo.GetByID(ctx, id)
	})
}
