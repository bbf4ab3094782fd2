package leave

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestTotalDays(t *testing.T) {
	assert.Equal(t, 1, TotalDays(date("2024-06-01"), date("2024-06-01")))
	assert.Equal(t, 5, TotalDays(date("2024-06-01"), date("2024-06-05")))
	assert.Equal(t, 3, TotalDays(date("2024-02-28"), date("2024-03-01")))
	assert.Equal(t, 2, TotalDays(date("2024-12-31"), date("2025-01-01")))
}

func TestPrice(t *testing.T) {
	tests := []struct {
		total, remaining int
		paid, unpaid     int
	}{
		{5, 3, 3, 2},
		{5, 10, 5, 0},
		{5, 0, 0, 5},
		{5, -2, 0, 5},
		{1, 1, 1, 0},
	}
	for _, tt := range tests {
		paid, unpaid := Price(tt.total, tt.remaining)
		assert.Equal(t, tt.paid, paid, "paid for total=%d remaining=%d", tt.total, tt.remaining)
		assert.Equal(t, tt.unpaid, unpaid, "unpaid for total=%d remaining=%d", tt.total, tt.remaining)
		assert.Equal(t, tt.total, paid+unpaid)
	}
}

func TestComputeBalance(t *testing.T) {
	requests := []LeaveRequest{
		{ID: "1", LeaveType: "Sick", Status: StatusApproved, PaidDays: 2, StartDate: date("2024-03-01")},
		{ID: "2", LeaveType: "Sick", Status: StatusPending, PaidDays: 1, StartDate: date("2024-04-01")},
		{ID: "3", LeaveType: "Sick", Status: StatusRejected, PaidDays: 2, StartDate: date("2024-05-01")},
		{ID: "4", LeaveType: "Sick", Status: StatusApproved, PaidDays: 3, StartDate: date("2023-12-30")},
		{ID: "5", LeaveType: "Emergency", Status: StatusApproved, PaidDays: 5, StartDate: date("2024-01-10")},
	}
	limits := map[string]int{"Sick": 5, "Emergency": 3, "Vacation": 15}

	b := ComputeBalance("e1", limits, requests, 2024)

	assert.Equal(t, 2024, b.Year)
	assert.Equal(t, limits, b.Limits)
	assert.Equal(t, map[string]int{"Sick": 3, "Emergency": 5, "Vacation": 0}, b.Used)
	assert.Equal(t, map[string]int{"Sick": 2, "Emergency": 0, "Vacation": 15}, b.Remaining)
}

func TestUsedDays_ExcludesRequest(t *testing.T) {
	requests := []LeaveRequest{
		{ID: "1", LeaveType: "Annual", Status: StatusPending, PaidDays: 2, StartDate: date("2024-03-01")},
		{ID: "2", LeaveType: "Annual", Status: StatusPending, PaidDays: 4, StartDate: date("2024-04-01")},
	}
	assert.Equal(t, 6, UsedDays(requests, "Annual", 2024, ""))
	assert.Equal(t, 4, UsedDays(requests, "Annual", 2024, "1"))
}
