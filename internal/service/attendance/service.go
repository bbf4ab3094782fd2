package attendance

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/retry"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/service"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	directory employee.Directory
	rt        service.Runtime
}

func NewAttendanceService(repo attendance.AttendanceRepository, directory employee.Directory, rt service.Runtime) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		AttendanceRepository: repo,
		directory:            directory,
		rt:                   rt.WithDefaults(),
	}
}

// Upsert implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Upsert(ctx context.Context, req attendance.UpsertAttendanceRequest) (resp attendance.UpsertAttendanceResponse, err error) {
	defer a.rt.Metrics.Observe("attendance.upsert", time.Now(), &err)

	rec, created, err := a.upsert(ctx, req)
	if err != nil {
		return attendance.UpsertAttendanceResponse{}, err
	}
	return attendance.UpsertAttendanceResponse{Attendance: attendance.ToAttendanceResponse(rec), Created: created}, nil
}

func (a *AttendanceServiceImpl) upsert(ctx context.Context, req attendance.UpsertAttendanceRequest) (attendance.Record, bool, error) {
	if err := req.Validate(); err != nil {
		return attendance.Record{}, false, err
	}

	emp, err := retry.Value(ctx, a.rt.Policy, func(ctx context.Context) (employee.Employee, error) {
		return a.directory.GetByID(ctx, req.EmployeeID)
	})
	if err != nil {
		return attendance.Record{}, false, err
	}

	record := req.ToRecord()
	var created bool
	err = retry.Do(ctx, a.rt.Policy, func(ctx context.Context) error {
		var err error
		record, created, err = a.AttendanceRepository.Upsert(ctx, record)
		return err
	})
	if err != nil {
		return attendance.Record{}, false, err
	}
	record.EmployeeName = &emp.FullName
	return record, created, nil
}

// BulkUpsert implements attendance.AttendanceService. Items are processed
// in order and a failed item never stops the batch. A cancelled context
// does, but the response still reports every item.
func (a *AttendanceServiceImpl) BulkUpsert(ctx context.Context, req attendance.BulkUpsertAttendanceRequest) (resp attendance.BulkUpsertAttendanceResponse, err error) {
	defer a.rt.Metrics.Observe("attendance.bulk_upsert", time.Now(), &err)

	if err := req.Validate(); err != nil {
		return attendance.BulkUpsertAttendanceResponse{}, err
	}

	resp = attendance.BulkUpsertAttendanceResponse{Failed: []attendance.BulkFailure{}}
	for i, item := range req.Records {
		if err := ctx.Err(); err != nil {
			a.rt.Logger.Warn("bulk attendance interrupted",
				zap.Int("processed", i),
				zap.Int("total", len(req.Records)),
				zap.Error(err),
			)
			resp.Interrupted = true
			for j, rest := range req.Records[i:] {
				resp.Failed = append(resp.Failed, attendance.BulkFailure{
					Index:      i + j,
					EmployeeID: rest.EmployeeID,
					Date:       rest.Date,
					Kind:       string(apperror.KindTransient),
					Message:    "not processed: " + err.Error(),
				})
			}
			break
		}

		_, created, err := a.upsert(ctx, item)
		if err != nil {
			a.rt.Logger.Warn("bulk attendance item rejected",
				zap.Int("index", i),
				zap.String("employee_id", item.EmployeeID),
				zap.String("date", item.Date),
				zap.Error(err),
			)
			resp.Failed = append(resp.Failed, attendance.BulkFailure{
				Index:      i,
				EmployeeID: item.EmployeeID,
				Date:       item.Date,
				Kind:       string(apperror.KindOf(err)),
				Message:    err.Error(),
			})
			continue
		}
		if created {
			resp.Created++
		} else {
			resp.Updated++
		}
	}
	resp.Total = resp.Created + resp.Updated

	a.rt.Metrics.BatchItems("attendance.bulk_upsert", "created", resp.Created)
	a.rt.Metrics.BatchItems("attendance.bulk_upsert", "updated", resp.Updated)
	a.rt.Metrics.BatchItems("attendance.bulk_upsert", "failed", len(resp.Failed))
	return resp, nil
}

// ListByMonth implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListByMonth(ctx context.Context, month string) ([]attendance.AttendanceResponse, error) {
	if !validator.IsValidMonth(month) {
		return nil, attendance.ErrInvalidMonth
	}
	monthStart, err := time.Parse("2006-01", month)
	if err != nil {
		return nil, attendance.ErrInvalidMonth
	}

	records, err := retry.Value(ctx, a.rt.Policy, func(ctx context.Context) ([]attendance.Record, error) {
		return a.AttendanceRepository.ListByMonth(ctx, monthStart)
	})
	if err != nil {
		return nil, err
	}

	resp := make([]attendance.AttendanceResponse, 0, len(records))
	for _, r := range records {
		resp = append(resp, attendance.ToAttendanceResponse(r))
	}
	return resp, nil
}

// Statistics implements attendance.AttendanceService. Present counts
// include work from home; the rate is present over the active roster.
func (a *AttendanceServiceImpl) Statistics(ctx context.Context, date string) (attendance.StatisticsResponse, error) {
	day, ok := validator.IsValidDate(date)
	if !ok {
		return attendance.StatisticsResponse{}, validator.ValidationErrors{{Field: "date", Message: "date must be in YYYY-MM-DD format"}}
	}

	employees, err := retry.Value(ctx, a.rt.Policy, a.directory.ListActive)
	if err != nil {
		return attendance.StatisticsResponse{}, err
	}
	records, err := retry.Value(ctx, a.rt.Policy, func(ctx context.Context) ([]attendance.Record, error) {
		return a.AttendanceRepository.ListByDate(ctx, day)
	})
	if err != nil {
		return attendance.StatisticsResponse{}, err
	}

	stats := attendance.StatisticsResponse{
		Date:             date,
		TotalEmployees:   len(employees),
		MarkedAttendance: len(records),
		AttendanceRate:   decimal.Zero,
	}
	for _, r := range records {
		switch r.Status {
		case attendance.StatusPresent:
			stats.PresentCount++
		case attendance.StatusWorkFromHome:
			stats.PresentCount++
			stats.WorkFromHomeCount++
		case attendance.StatusAbsent:
			stats.AbsentCount++
		case attendance.StatusLate:
			stats.LateCount++
		case attendance.StatusHalfDay:
			stats.HalfDayCount++
		}
	}
	stats.PendingAttendance = max(0, stats.TotalEmployees-stats.MarkedAttendance)
	if stats.TotalEmployees > 0 {
		stats.AttendanceRate = decimal.NewFromInt(int64(stats.PresentCount)).
			Div(decimal.NewFromInt(int64(stats.TotalEmployees))).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}
	return stats, nil
}

// Report implements attendance.AttendanceService. Employees without any
// record in the range are left out, unless the report is for one employee.
func (a *AttendanceServiceImpl) Report(ctx context.Context, req attendance.AttendanceReportRequest) (attendance.AttendanceReportResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceReportResponse{}, err
	}
	from, _ := validator.IsValidDate(req.From)
	to, _ := validator.IsValidDate(req.To)

	var emp *employee.Employee
	if !validator.IsEmpty(req.EmployeeID) {
		found, err := retry.Value(ctx, a.rt.Policy, func(ctx context.Context) (employee.Employee, error) {
			return a.directory.GetByID(ctx, req.EmployeeID)
		})
		if err != nil {
			return attendance.AttendanceReportResponse{}, err
		}
		emp = &found
	}

	records, err := retry.Value(ctx, a.rt.Policy, func(ctx context.Context) ([]attendance.Record, error) {
		return a.AttendanceRepository.ListBetween(ctx, from, to)
	})
	if err != nil {
		return attendance.AttendanceReportResponse{}, err
	}
	if emp != nil {
		kept := records[:0:0]
		for _, r := range records {
			if r.EmployeeID == emp.ID {
				kept = append(kept, r)
			}
		}
		records = kept
	}

	rows := attendance.BuildReport(records)
	if emp != nil {
		if len(rows) == 0 {
			rows = append(rows, attendance.EmployeeAttendanceReport{
				EmployeeID:     emp.ID,
				HoursWorked:    decimal.Zero,
				OvertimeHours:  decimal.Zero,
				AttendanceRate: decimal.Zero,
			})
		}
		rows[0].EmployeeName = &emp.FullName
	} else if err := a.fillNames(ctx, rows); err != nil {
		return attendance.AttendanceReportResponse{}, err
	}

	return attendance.AttendanceReportResponse{
		From:         req.From,
		To:           req.To,
		TotalRecords: len(records),
		Employees:    rows,
	}, nil
}

// fillNames names rows the store left unnamed, from the active roster.
func (a *AttendanceServiceImpl) fillNames(ctx context.Context, rows []attendance.EmployeeAttendanceReport) error {
	missing := false
	for _, row := range rows {
		missing = missing || row.EmployeeName == nil
	}
	if !missing {
		return nil
	}

	employees, err := retry.Value(ctx, a.rt.Policy, a.directory.ListActive)
	if err != nil {
		return err
	}
	names := make(map[string]string, len(employees))
	for _, e := range employees {
		names[e.ID] = e.FullName
	}
	for i := range rows {
		if name, ok := names[rows[i].EmployeeID]; ok && rows[i].EmployeeName == nil {
			rows[i].EmployeeName = &name
		}
	}
	return nil
}

// Delete implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Delete(ctx context.Context, id string) (err error) {
	defer a.rt.Metrics.Observe("attendance.delete", time.Now(), &err)

	return retry.Do(ctx, a.rt.Policy, func(ctx context.Context) error {
		return a.AttendanceRepository.Delete(ctx, id)
	})
}
