package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/leave"
)

type leaveRequestRepositoryImpl struct {
	mu       sync.RWMutex
	requests map[string]leave.LeaveRequest
}

func NewLeaveRequestRepository() leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{requests: make(map[string]leave.LeaveRequest)}
}

func (r *leaveRequestRepositoryImpl) Insert(ctx context.Context, req leave.LeaveRequest) (leave.LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if req.ID == "" {
		req.ID = newID()
	}
	if _, ok := r.requests[req.ID]; ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestAlreadyExists
	}
	ts := now()
	req.CreatedAt, req.UpdatedAt = ts, ts
	r.requests[req.ID] = req
	return req, nil
}

func (r *leaveRequestRepositoryImpl) Update(ctx context.Context, id string, fields leave.RequestUpdate) (leave.LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	decidedAt := fields.DecidedAt
	req.Status = fields.Status
	req.PaidDays = fields.PaidDays
	req.UnpaidDays = fields.UnpaidDays
	req.DecidedBy = fields.DecidedBy
	req.DecidedAt = &decidedAt
	req.UpdatedAt = now()
	r.requests[id] = req
	return req, nil
}

func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return req, nil
}

func (r *leaveRequestRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string) ([]leave.LeaveRequest, error) {
	return r.filter(func(req leave.LeaveRequest) bool { return req.EmployeeID == employeeID }), nil
}

func (r *leaveRequestRepositoryImpl) ListByTypeAndYear(ctx context.Context, leaveType string, year int) ([]leave.LeaveRequest, error) {
	return r.filter(func(req leave.LeaveRequest) bool {
		return req.LeaveType == leaveType && req.StartDate.Year() == year
	}), nil
}

func (r *leaveRequestRepositoryImpl) filter(keep func(leave.LeaveRequest) bool) []leave.LeaveRequest {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []leave.LeaveRequest{}
	for _, req := range r.requests {
		if keep(req) {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
