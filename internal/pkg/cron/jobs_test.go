package cron

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/retry"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/workdays"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/repository/memory"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/service"
	attendanceService "github.com/cmlabs-hris/hris-payroll-engine/internal/service/attendance"
	payrollService "github.com/cmlabs-hris/hris-payroll-engine/internal/service/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type jobsFixture struct {
	jobs           *EngineJobs
	attendanceRepo attendance.AttendanceRepository
	payrollRepo    payroll.PayrollRepository
	now            time.Time
}

func newJobsFixture(t *testing.T, now time.Time) *jobsFixture {
	t.Helper()
	cal, err := workdays.NewCalendar([]string{"2024-03-29"})
	require.NoError(t, err)

	directory := memory.NewEmployeeRepository(
		employee.Employee{ID: "emp-1", EmployeeCode: "EMP001", FullName: "Ayu", Salary: employee.SalaryStructure{Basic: decimal.NewFromInt(1000)}},
		employee.Employee{ID: "emp-2", EmployeeCode: "EMP002", FullName: "Budi", Salary: employee.SalaryStructure{Basic: decimal.NewFromInt(1200)}},
		employee.Employee{ID: "emp-3", EmployeeCode: "EMP003", FullName: "Citra", Status: employee.StatusInactive},
	)
	f := &jobsFixture{
		attendanceRepo: memory.NewAttendanceRepository(),
		payrollRepo:    memory.NewPayrollRepository(),
		now:            now,
	}
	rt := service.Runtime{Policy: retry.Policy{Timeout: time.Second, Delay: time.Millisecond, MaxRetries: 1}}

	f.jobs = NewEngineJobs(
		payrollService.NewPayrollService(memory.NewTransactor(), f.payrollRepo, directory, f.attendanceRepo, cal, payroll.GenerationSettings{}, rt),
		attendanceService.NewAttendanceService(f.attendanceRepo, directory, rt),
		directory,
		cal,
		func() time.Time { return f.now },
		nil,
	)
	return f
}

func TestEngineJobs_MarkAbsentEmployees(t *testing.T) {
	// Thursday 2024-03-14 just after midnight
	f := newJobsFixture(t, time.Date(2024, 3, 14, 0, 5, 0, 0, time.UTC))
	ctx := context.Background()
	day := time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)
	_, _, err := f.attendanceRepo.Upsert(ctx, attendance.Record{EmployeeID: "emp-1", Date: day, Status: attendance.StatusPresent})
	require.NoError(t, err)

	// Act
	require.NoError(t, f.jobs.MarkAbsentEmployees(ctx))

	// Assert
	records, err := f.attendanceRepo.ListByDate(ctx, day)
	require.NoError(t, err)
	require.Len(t, records, 2)
	byEmployee := map[string]attendance.Status{}
	for _, r := range records {
		byEmployee[r.EmployeeID] = r.Status
	}
	assert.Equal(t, attendance.StatusPresent, byEmployee["emp-1"])
	assert.Equal(t, attendance.StatusAbsent, byEmployee["emp-2"])
	assert.NotContains(t, byEmployee, "emp-3", "inactive employees are not marked")
}

func TestEngineJobs_MarkAbsentEmployees_SkipsNonWorkingDays(t *testing.T) {
	ctx := context.Background()

	for name, now := range map[string]time.Time{
		"outside midnight": time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC),
		"after a sunday":   time.Date(2024, 3, 18, 0, 5, 0, 0, time.UTC),
		"after a holiday":  time.Date(2024, 3, 30, 0, 5, 0, 0, time.UTC),
	} {
		t.Run(name, func(t *testing.T) {
			f := newJobsFixture(t, now)

			require.NoError(t, f.jobs.MarkAbsentEmployees(ctx))

			records, err := f.attendanceRepo.ListByMonth(ctx, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
			require.NoError(t, err)
			assert.Empty(t, records)
		})
	}
}

func TestEngineJobs_GeneratePreviousMonthPayroll(t *testing.T) {
	f := newJobsFixture(t, time.Date(2024, 4, 1, 2, 0, 0, 0, time.UTC))
	ctx := context.Background()

	// Act
	require.NoError(t, f.jobs.GeneratePreviousMonthPayroll(ctx))
	require.NoError(t, f.jobs.GeneratePreviousMonthPayroll(ctx), "a generated month is not an error")

	// Assert
	count, err := f.payrollRepo.CountByMonth(ctx, "2024-03")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	f.now = time.Date(2024, 4, 2, 2, 0, 0, 0, time.UTC)
	require.NoError(t, f.jobs.GeneratePreviousMonthPayroll(ctx))
	count, err = f.payrollRepo.CountByMonth(ctx, "2024-03")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestScheduler_RunOnce(t *testing.T) {
	s := NewScheduler(nil)
	calls := 0
	s.AddJob("count", time.Hour, func(ctx context.Context) error {
		calls++
		return nil
	})
	s.AddJob("fail", time.Hour, func(ctx context.Context) error {
		return assert.AnError
	})

	s.RunOnce(context.Background())

	assert.Equal(t, 1, calls)
}
