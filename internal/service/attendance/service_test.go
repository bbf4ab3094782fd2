package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/retry"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/repository/memory"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/service"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (attendance.AttendanceService, *metrics.Recorder) {
	t.Helper()
	inactive := employee.Employee{ID: "emp-9", EmployeeCode: "EMP009", FullName: "Former", Status: employee.StatusInactive}
	directory := memory.NewEmployeeRepository(
		employee.Employee{ID: "emp-1", EmployeeCode: "EMP001", FullName: "Ayu"},
		employee.Employee{ID: "emp-2", EmployeeCode: "EMP002", FullName: "Budi"},
		employee.Employee{ID: "emp-3", EmployeeCode: "EMP003", FullName: "Citra"},
		employee.Employee{ID: "emp-4", EmployeeCode: "EMP004", FullName: "Dewi"},
		inactive,
	)
	rec := metrics.NewRecorder()
	svc := NewAttendanceService(memory.NewAttendanceRepository(), directory, service.Runtime{
		Policy:  retry.Policy{Timeout: time.Second, Delay: time.Millisecond, MaxRetries: 1},
		Metrics: rec,
	})
	return svc, rec
}

func TestAttendanceService_Upsert_CreatesThenUpdates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	hours := decimal.NewFromInt(8)

	first, err := svc.Upsert(ctx, attendance.UpsertAttendanceRequest{
		EmployeeID:  "emp-1",
		Date:        "2024-01-03",
		Status:      "Present",
		HoursWorked: &hours,
	})
	require.NoError(t, err)
	assert.True(t, first.Created)
	require.NotNil(t, first.Attendance.EmployeeName)
	assert.Equal(t, "Ayu", *first.Attendance.EmployeeName)

	second, err := svc.Upsert(ctx, attendance.UpsertAttendanceRequest{
		EmployeeID: "emp-1",
		Date:       "2024-01-03",
		Status:     "Late",
	})
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Attendance.ID, second.Attendance.ID)
	assert.Equal(t, attendance.StatusLate, second.Attendance.Status)

	_, err = svc.Upsert(ctx, attendance.UpsertAttendanceRequest{EmployeeID: "emp-1", Date: "2024-01-03", Status: "Sleeping"})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = svc.Upsert(ctx, attendance.UpsertAttendanceRequest{EmployeeID: "nobody", Date: "2024-01-03", Status: "Present"})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestAttendanceService_BulkUpsert_PartialSuccess(t *testing.T) {
	svc, rec := newTestService(t)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, attendance.UpsertAttendanceRequest{EmployeeID: "emp-2", Date: "2024-01-04", Status: "Absent"})
	require.NoError(t, err)

	// Act
	resp, err := svc.BulkUpsert(ctx, attendance.BulkUpsertAttendanceRequest{Records: []attendance.UpsertAttendanceRequest{
		{EmployeeID: "emp-1", Date: "2024-01-04", Status: "Present"},
		{EmployeeID: "nobody", Date: "2024-01-04", Status: "Present"},
		{EmployeeID: "emp-2", Date: "2024-01-04", Status: "Work From Home"},
		{EmployeeID: "emp-3", Date: "2024-01-40", Status: "Present"},
	}})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Created)
	assert.Equal(t, 1, resp.Updated)
	assert.Equal(t, 2, resp.Total)
	require.Len(t, resp.Failed, 2)
	assert.Equal(t, 1, resp.Failed[0].Index)
	assert.Equal(t, string(apperror.KindNotFound), resp.Failed[0].Kind)
	assert.Equal(t, 3, resp.Failed[1].Index)
	assert.Equal(t, string(apperror.KindValidation), resp.Failed[1].Kind)

	series, err := testutil.GatherAndCount(rec.Registry(), "payroll_engine_batch_items_total")
	require.NoError(t, err)
	assert.Equal(t, 3, series)

	_, err = svc.BulkUpsert(ctx, attendance.BulkUpsertAttendanceRequest{})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

// cancellingAttendanceRepository cancels the caller's context once an
// upsert has been stored.
type cancellingAttendanceRepository struct {
	attendance.AttendanceRepository
	cancel context.CancelFunc
}

func (r *cancellingAttendanceRepository) Upsert(ctx context.Context, record attendance.Record) (attendance.Record, bool, error) {
	stored, created, err := r.AttendanceRepository.Upsert(ctx, record)
	r.cancel()
	return stored, created, err
}

func TestAttendanceService_BulkUpsert_CancelledMidBatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	repo := &cancellingAttendanceRepository{AttendanceRepository: memory.NewAttendanceRepository(), cancel: cancel}
	directory := memory.NewEmployeeRepository(
		employee.Employee{ID: "emp-1", EmployeeCode: "EMP001", FullName: "Ayu"},
		employee.Employee{ID: "emp-2", EmployeeCode: "EMP002", FullName: "Budi"},
	)
	svc := NewAttendanceService(repo, directory, service.Runtime{
		Policy: retry.Policy{Timeout: time.Second, Delay: time.Millisecond, MaxRetries: 1},
	})

	// Act
	resp, err := svc.BulkUpsert(ctx, attendance.BulkUpsertAttendanceRequest{Records: []attendance.UpsertAttendanceRequest{
		{EmployeeID: "emp-1", Date: "2024-01-02", Status: "Present"},
		{EmployeeID: "emp-2", Date: "2024-01-02", Status: "Present"},
		{EmployeeID: "emp-1", Date: "2024-01-03", Status: "Late"},
	}})

	// Assert
	require.NoError(t, err)
	assert.True(t, resp.Interrupted)
	assert.Equal(t, 1, resp.Created)
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Failed, 2)
	assert.Equal(t, 1, resp.Failed[0].Index)
	assert.Equal(t, 2, resp.Failed[1].Index)
	assert.Equal(t, string(apperror.KindTransient), resp.Failed[0].Kind)

	stored, err := repo.ListByMonth(context.Background(), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestAttendanceService_ListByMonth(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, date := range []string{"2024-01-31", "2024-02-01", "2024-02-29"} {
		_, err := svc.Upsert(ctx, attendance.UpsertAttendanceRequest{EmployeeID: "emp-1", Date: date, Status: "Present"})
		require.NoError(t, err)
	}

	records, err := svc.ListByMonth(ctx, "2024-02")
	require.NoError(t, err)
	assert.Len(t, records, 2)

	_, err = svc.ListByMonth(ctx, "2024-2")
	assert.Equal(t, apperror.KindInvalidMonth, apperror.KindOf(err))
}

func TestAttendanceService_Statistics(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, req := range []attendance.UpsertAttendanceRequest{
		{EmployeeID: "emp-1", Date: "2024-01-05", Status: "Present"},
		{EmployeeID: "emp-2", Date: "2024-01-05", Status: "Work From Home"},
		{EmployeeID: "emp-3", Date: "2024-01-05", Status: "Late"},
	} {
		_, err := svc.Upsert(ctx, req)
		require.NoError(t, err)
	}

	// Act
	stats, err := svc.Statistics(ctx, "2024-01-05")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalEmployees)
	assert.Equal(t, 2, stats.PresentCount)
	assert.Equal(t, 1, stats.WorkFromHomeCount)
	assert.Equal(t, 1, stats.LateCount)
	assert.Equal(t, 3, stats.MarkedAttendance)
	assert.Equal(t, 1, stats.PendingAttendance)
	assert.Equal(t, "50.00", stats.AttendanceRate.StringFixed(2))

	_, err = svc.Statistics(ctx, "05-01-2024")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestAttendanceService_Report(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	hours := func(v float64) *decimal.Decimal {
		d := decimal.NewFromFloat(v)
		return &d
	}

	for _, req := range []attendance.UpsertAttendanceRequest{
		{EmployeeID: "emp-1", Date: "2024-01-01", Status: "Present", HoursWorked: hours(8)},
		{EmployeeID: "emp-1", Date: "2024-01-02", Status: "Late", HoursWorked: hours(7.5)},
		{EmployeeID: "emp-1", Date: "2024-01-03", Status: "Half Day", HoursWorked: hours(4)},
		{EmployeeID: "emp-1", Date: "2024-01-04", Status: "Absent"},
		{EmployeeID: "emp-1", Date: "2024-01-10", Status: "Present", HoursWorked: hours(8)},
		{EmployeeID: "emp-2", Date: "2024-01-03", Status: "Work From Home", HoursWorked: hours(8), OvertimeHours: hours(2)},
		{EmployeeID: "emp-2", Date: "2024-01-05", Status: "Present"},
		{EmployeeID: "emp-3", Date: "2023-12-31", Status: "Present"},
	} {
		_, err := svc.Upsert(ctx, req)
		require.NoError(t, err)
	}

	// Act
	report, err := svc.Report(ctx, attendance.AttendanceReportRequest{From: "2024-01-01", To: "2024-01-05"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 6, report.TotalRecords)
	require.Len(t, report.Employees, 2)

	ayu := report.Employees[0]
	assert.Equal(t, "emp-1", ayu.EmployeeID)
	require.NotNil(t, ayu.EmployeeName)
	assert.Equal(t, "Ayu", *ayu.EmployeeName)
	assert.Equal(t, 4, ayu.MarkedDays)
	assert.Equal(t, 1, ayu.PresentDays)
	assert.Equal(t, 1, ayu.LateDays)
	assert.Equal(t, 1, ayu.HalfDays)
	assert.Equal(t, 1, ayu.AbsentDays)
	assert.Equal(t, "19.5", ayu.HoursWorked.String())
	assert.Equal(t, "62.50", ayu.AttendanceRate.StringFixed(2))

	budi := report.Employees[1]
	assert.Equal(t, "emp-2", budi.EmployeeID)
	assert.Equal(t, 2, budi.MarkedDays)
	assert.Equal(t, 2, budi.PresentDays)
	assert.Equal(t, 1, budi.WorkFromHome)
	assert.Equal(t, "2", budi.OvertimeHours.String())
	assert.Equal(t, "100.00", budi.AttendanceRate.StringFixed(2))
}

func TestAttendanceService_Report_SingleEmployee(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, req := range []attendance.UpsertAttendanceRequest{
		{EmployeeID: "emp-1", Date: "2024-01-02", Status: "Present"},
		{EmployeeID: "emp-2", Date: "2024-01-02", Status: "Absent"},
	} {
		_, err := svc.Upsert(ctx, req)
		require.NoError(t, err)
	}

	report, err := svc.Report(ctx, attendance.AttendanceReportRequest{From: "2024-01-01", To: "2024-01-31", EmployeeID: "emp-2"})
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalRecords)
	require.Len(t, report.Employees, 1)
	assert.Equal(t, "emp-2", report.Employees[0].EmployeeID)
	assert.Equal(t, 1, report.Employees[0].AbsentDays)
	assert.Equal(t, "0.00", report.Employees[0].AttendanceRate.StringFixed(2))

	// Act
	idle, err := svc.Report(ctx, attendance.AttendanceReportRequest{From: "2024-01-01", To: "2024-01-31", EmployeeID: "emp-4"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 0, idle.TotalRecords)
	require.Len(t, idle.Employees, 1)
	assert.Equal(t, 0, idle.Employees[0].MarkedDays)
	require.NotNil(t, idle.Employees[0].EmployeeName)
	assert.Equal(t, "Dewi", *idle.Employees[0].EmployeeName)

	_, err = svc.Report(ctx, attendance.AttendanceReportRequest{From: "2024-01-01", To: "2024-01-31", EmployeeID: "nobody"})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestAttendanceService_Report_InvalidRange(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name string
		req  attendance.AttendanceReportRequest
	}{
		{"missing from", attendance.AttendanceReportRequest{To: "2024-01-31"}},
		{"bad to", attendance.AttendanceReportRequest{From: "2024-01-01", To: "31-01-2024"}},
		{"reversed", attendance.AttendanceReportRequest{From: "2024-02-01", To: "2024-01-31"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Report(context.Background(), tt.req)
			assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
		})
	}
}

func TestAttendanceService_Delete(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Upsert(ctx, attendance.UpsertAttendanceRequest{EmployeeID: "emp-1", Date: "2024-01-03", Status: "Present"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.Attendance.ID))
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(svc.Delete(ctx, created.Attendance.ID)))
}
