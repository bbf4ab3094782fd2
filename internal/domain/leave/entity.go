package leave

import (
	"time"
)

type RequestStatus string

const (
	StatusPending  RequestStatus = "Pending"
	StatusApproved RequestStatus = "Approved"
	StatusRejected RequestStatus = "Rejected"
)

// LeaveRequest entity
type LeaveRequest struct {
	ID          string
	EmployeeID  string
	LeaveType   string
	StartDate   time.Time
	EndDate     time.Time
	Reason      string
	Status      RequestStatus
	TotalDays   int
	PaidDays    int
	UnpaidDays  int
	AppliedDate time.Time
	DecidedBy   *string
	DecidedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Joined fields
	EmployeeName *string
}

// RequestUpdate holds the fields a decision writes.
type RequestUpdate struct {
	Status     RequestStatus
	PaidDays   int
	UnpaidDays int
	DecidedBy  *string
	DecidedAt  time.Time
}

// Balance is derived from an employee's requests, never stored.
type Balance struct {
	EmployeeID string
	Year       int
	Limits     map[string]int
	Used       map[string]int
	Remaining  map[string]int
}

// TotalDays counts calendar days from start to end, both inclusive.
func TotalDays(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours()/24) + 1
}

// Price splits total days into paid and unpaid against what is left.
func Price(total, remaining int) (paid, unpaid int) {
	if remaining < 0 {
		remaining = 0
	}
	paid = min(total, remaining)
	unpaid = max(0, total-remaining)
	return paid, unpaid
}

// UsedDays sums paid days of non-rejected requests of leaveType starting
// in year. The request with excludeID is left out.
func UsedDays(requests []LeaveRequest, leaveType string, year int, excludeID string) int {
	used := 0
	for _, r := range requests {
		if r.ID == excludeID && excludeID != "" {
			continue
		}
		if r.LeaveType != leaveType || r.Status == StatusRejected || r.StartDate.Year() != year {
			continue
		}
		used += r.PaidDays
	}
	return used
}

// Remaining is max(0, limit - used).
func Remaining(limit, used int) int {
	return max(0, limit-used)
}

// ComputeBalance derives the balance of every configured type for year.
func ComputeBalance(employeeID string, limits map[string]int, requests []LeaveRequest, year int) Balance {
	b := Balance{
		EmployeeID: employeeID,
		Year:       year,
		Limits:     make(map[string]int, len(limits)),
		Used:       make(map[string]int, len(limits)),
		Remaining:  make(map[string]int, len(limits)),
	}
	for leaveType, limit := range limits {
		used := UsedDays(requests, leaveType, year, "")
		b.Limits[leaveType] = limit
		b.Used[leaveType] = used
		b.Remaining[leaveType] = Remaining(limit, used)
	}
	return b
}
