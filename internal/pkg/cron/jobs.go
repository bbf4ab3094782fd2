package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/workdays"
	"go.uber.org/zap"
)

const absentRemark = "marked absent by scheduler"

// EngineJobs are the housekeeping jobs of the payroll engine.
type EngineJobs struct {
	payrollService    payroll.PayrollService
	attendanceService attendance.AttendanceService
	directory         employee.Directory
	calendar          *workdays.Calendar
	now               func() time.Time
	logger            *zap.Logger
}

func NewEngineJobs(
	payrollService payroll.PayrollService,
	attendanceService attendance.AttendanceService,
	directory employee.Directory,
	calendar *workdays.Calendar,
	now func() time.Time,
	logger *zap.Logger,
) *EngineJobs {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EngineJobs{
		payrollService:    payrollService,
		attendanceService: attendanceService,
		directory:         directory,
		calendar:          calendar,
		now:               now,
		logger:            logger.Named("cron"),
	}
}

func (j *EngineJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("mark_absent_employees", 1*time.Hour, j.MarkAbsentEmployees)
	scheduler.AddJob("generate_previous_month_payroll", 1*time.Hour, j.GeneratePreviousMonthPayroll)
}

// MarkAbsentEmployees records Absent for every active employee with no
// attendance on the previous working day.
func (j *EngineJobs) MarkAbsentEmployees(ctx context.Context) error {
	now := j.now()
	// Only run at midnight (00:00-00:59 UTC)
	if now.Hour() != 0 {
		return nil
	}

	yesterday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	days, err := j.calendar.WorkingDays(yesterday)
	if err != nil {
		return err
	}
	if !workdays.IsWorkingDay(days, yesterday) {
		return nil
	}

	date := yesterday.Format("2006-01-02")
	employees, err := j.directory.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active employees: %w", err)
	}
	marked, err := j.attendanceService.ListByMonth(ctx, yesterday.Format("2006-01"))
	if err != nil {
		return fmt.Errorf("failed to list attendance: %w", err)
	}
	hasRecord := make(map[string]bool, len(marked))
	for _, rec := range marked {
		if rec.Date == date {
			hasRecord[rec.EmployeeID] = true
		}
	}

	remark := absentRemark
	var req attendance.BulkUpsertAttendanceRequest
	for _, emp := range employees {
		if hasRecord[emp.ID] {
			continue
		}
		req.Records = append(req.Records, attendance.UpsertAttendanceRequest{
			EmployeeID: emp.ID,
			Date:       date,
			Status:     string(attendance.StatusAbsent),
			Remarks:    &remark,
		})
	}
	if len(req.Records) == 0 {
		return nil
	}

	result, err := j.attendanceService.BulkUpsert(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to mark absences for %s: %w", date, err)
	}
	j.logger.Info("employees marked absent",
		zap.String("date", date),
		zap.Int("created", result.Created),
		zap.Int("failed", len(result.Failed)),
	)
	return nil
}

// GeneratePreviousMonthPayroll generates last month's payroll on the first
// day of a month. A month already generated is left alone.
func (j *EngineJobs) GeneratePreviousMonthPayroll(ctx context.Context) error {
	now := j.now()
	if now.Day() != 1 {
		return nil
	}

	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0).Format("2006-01")
	result, err := j.payrollService.GenerateMonthlyPayroll(ctx, payroll.GeneratePayrollRequest{Month: month})
	if apperror.Is(err, apperror.KindInvalidState) {
		j.logger.Debug("payroll already generated", zap.String("month", month))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to generate payroll for %s: %w", month, err)
	}

	j.logger.Info("payroll generated",
		zap.String("month", month),
		zap.Int("records", result.Count),
		zap.Int("skipped", len(result.Skipped)),
	)
	return nil
}
