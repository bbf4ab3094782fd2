package leave

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
)

const dateLayout = "2006-01-02"

// ========================================
// LEAVE REQUEST DTOs
// ========================================

type SubmitLeaveRequest struct {
	EmployeeID string `json:"employee_id"`
	LeaveType  string `json:"leave_type"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Reason     string `json:"reason"`
}

// Validate checks the request shape. Whether the leave type is configured
// is checked by the service against its limits.
func (r *SubmitLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	if validator.IsEmpty(r.LeaveType) {
		errs.Add("leave_type", "leave_type is required")
	}
	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "reason is required")
	}

	start, startOK := r.parseDate("start_date", r.StartDate, &errs)
	end, endOK := r.parseDate("end_date", r.EndDate, &errs)
	if startOK && endOK && end.Before(start) {
		errs.Add("end_date", "end_date must not be before start_date")
	}

	return errs.Err()
}

func (r *SubmitLeaveRequest) parseDate(field, value string, errs *validator.ValidationErrors) (time.Time, bool) {
	if validator.IsEmpty(value) {
		errs.Add(field, field+" is required")
		return time.Time{}, false
	}
	t, ok := validator.IsValidDate(value)
	if !ok {
		errs.Add(field, field+" must be in YYYY-MM-DD format")
	}
	return t, ok
}

// Dates returns the parsed start and end dates of a validated request.
func (r *SubmitLeaveRequest) Dates() (time.Time, time.Time) {
	start, _ := validator.IsValidDate(r.StartDate)
	end, _ := validator.IsValidDate(r.EndDate)
	return start, end
}

type DecideLeaveRequest struct {
	RequestID string `json:"-"`
	Status    string `json:"status"`
	DecidedBy string `json:"-"`
}

func (r *DecideLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RequestID) {
		errs.Add("request_id", "request_id is required")
	}
	switch RequestStatus(r.Status) {
	case StatusApproved, StatusRejected:
	default:
		errs.Add("status", "status must be Approved or Rejected")
	}

	return errs.Err()
}

type LeaveRequestResponse struct {
	ID           string        `json:"id"`
	EmployeeID   string        `json:"employee_id"`
	EmployeeName *string       `json:"employee_name,omitempty"`
	LeaveType    string        `json:"leave_type"`
	StartDate    string        `json:"start_date"`
	EndDate      string        `json:"end_date"`
	Reason       string        `json:"reason"`
	Status       RequestStatus `json:"status"`
	TotalDays    int           `json:"total_days"`
	PaidDays     int           `json:"paid_days"`
	UnpaidDays   int           `json:"unpaid_days"`
	AppliedDate  string        `json:"applied_date"`
	DecidedBy    *string       `json:"decided_by,omitempty"`
	DecidedAt    *time.Time    `json:"decided_at,omitempty"`
}

type BalanceResponse struct {
	EmployeeID string         `json:"employee_id"`
	Year       int            `json:"year"`
	Limits     map[string]int `json:"limits"`
	Used       map[string]int `json:"used"`
	Remaining  map[string]int `json:"remaining"`
}

type LeaveTypeResponse struct {
	Name        string `json:"name"`
	DaysPerYear int    `json:"days_per_year"`
}

// UsageResponse reports how a leave type was taken in a year.
type UsageResponse struct {
	LeaveType     string                 `json:"leave_type"`
	Year          int                    `json:"year"`
	TotalRequests int                    `json:"total_requests"`
	PaidDays      int                    `json:"paid_days"`
	UnpaidDays    int                    `json:"unpaid_days"`
	Requests      []LeaveRequestResponse `json:"requests"`
}

func ToLeaveRequestResponse(r LeaveRequest) LeaveRequestResponse {
	return LeaveRequestResponse{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		EmployeeName: r.EmployeeName,
		LeaveType:    r.LeaveType,
		StartDate:    r.StartDate.Format(dateLayout),
		EndDate:      r.EndDate.Format(dateLayout),
		Reason:       r.Reason,
		Status:       r.Status,
		TotalDays:    r.TotalDays,
		PaidDays:     r.PaidDays,
		UnpaidDays:   r.UnpaidDays,
		AppliedDate:  r.AppliedDate.Format(dateLayout),
		DecidedBy:    r.DecidedBy,
		DecidedAt:    r.DecidedAt,
	}
}

func ToBalanceResponse(b Balance) BalanceResponse {
	return BalanceResponse{
		EmployeeID: b.EmployeeID,
		Year:       b.Year,
		Limits:     b.Limits,
		Used:       b.Used,
		Remaining:  b.Remaining,
	}
}
