package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/retry"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PayrollServiceImpl struct {
	tx             database.Transactor
	payrollRepo    payroll.PayrollRepository
	directory      employee.Directory
	attendanceRepo attendance.AttendanceRepository
	calendar       payroll.Calendar
	settings       payroll.GenerationSettings
	rt             service.Runtime
}

func NewPayrollService(
	tx database.Transactor,
	payrollRepo payroll.PayrollRepository,
	directory employee.Directory,
	attendanceRepo attendance.AttendanceRepository,
	calendar payroll.Calendar,
	settings payroll.GenerationSettings,
	rt service.Runtime,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		tx:             tx,
		payrollRepo:    payrollRepo,
		directory:      directory,
		attendanceRepo: attendanceRepo,
		calendar:       calendar,
		settings:       settings,
		rt:             rt.WithDefaults(),
	}
}

// ========== CALCULATION ==========

func (s *PayrollServiceImpl) ComputeNetSalary(ctx context.Context, components payroll.Components) (resp payroll.ComputeNetSalaryResponse, err error) {
	defer s.rt.Metrics.Observe("payroll.compute", time.Now(), &err)

	net, err := payroll.ComputeNetSalary(components)
	if err != nil {
		return payroll.ComputeNetSalaryResponse{}, err
	}
	return payroll.ComputeNetSalaryResponse{NetSalary: net}, nil
}

// ========== RECORDS ==========

func (s *PayrollServiceImpl) CreateRecord(ctx context.Context, req payroll.CreatePayrollRecordRequest) (resp payroll.PayrollRecordResponse, err error) {
	defer s.rt.Metrics.Observe("payroll.create", time.Now(), &err)

	if err := req.Validate(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	if _, err := payroll.ParseMonth(req.Month); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	emp, err := retry.Value(ctx, s.rt.Policy, func(ctx context.Context) (employee.Employee, error) {
		return s.directory.GetByID(ctx, req.EmployeeID)
	})
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	// Any net sent by the client is ignored. Components are stored at the
	// precision the net is computed from.
	net, err := payroll.ComputeNetSalary(req.Components)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	components := req.Components.Round()

	record := payroll.PayrollRecord{
		EmployeeID:   emp.ID,
		Month:        req.Month,
		BasicSalary:  *components.Basic,
		HRA:          *components.HRA,
		Allowances:   *components.Allowances,
		Overtime:     valueOrZero(components.Overtime),
		Bonus:        valueOrZero(components.Bonus),
		Deductions:   *components.Deductions,
		Tax:          *components.Tax,
		NetSalary:    net,
		Status:       payroll.PayrollStatusPending,
		Remark:       req.Remark,
		EmployeeName: &emp.FullName,
		EmployeeCode: &emp.EmployeeCode,
	}
	switch {
	case req.Bank != nil:
		record.Bank = &payroll.BankDetails{
			BankName:      req.Bank.BankName,
			AccountNumber: req.Bank.AccountNumber,
			IFSCCode:      req.Bank.IFSCCode,
			DepositStatus: payroll.DepositStatusPending,
		}
	case emp.Bank != nil:
		record.Bank = &payroll.BankDetails{
			BankName:      emp.Bank.BankName,
			AccountNumber: emp.Bank.AccountNumber,
			IFSCCode:      emp.Bank.IFSCCode,
			DepositStatus: payroll.DepositStatusPending,
		}
	}

	created, err := retry.Value(ctx, s.rt.Policy, func(ctx context.Context) (payroll.PayrollRecord, error) {
		return s.payrollRepo.Insert(ctx, record)
	})
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	return payroll.ToRecordResponse(created), nil
}

// GenerateMonthlyPayroll builds and stores one record per active employee.
// The month is written in one transaction and a month that already has
// records is rejected.
func (s *PayrollServiceImpl) GenerateMonthlyPayroll(ctx context.Context, req payroll.GeneratePayrollRequest) (resp payroll.GeneratePayrollResponse, err error) {
	defer s.rt.Metrics.Observe("payroll.generate", time.Now(), &err)

	if err := req.Validate(); err != nil {
		return payroll.GeneratePayrollResponse{}, err
	}
	monthStart, err := payroll.ParseMonth(req.Month)
	if err != nil {
		return payroll.GeneratePayrollResponse{}, err
	}

	employees, err := retry.Value(ctx, s.rt.Policy, s.directory.ListActive)
	if err != nil {
		return payroll.GeneratePayrollResponse{}, err
	}
	records, err := retry.Value(ctx, s.rt.Policy, func(ctx context.Context) ([]attendance.Record, error) {
		return s.attendanceRepo.ListByMonth(ctx, monthStart)
	})
	if err != nil {
		return payroll.GeneratePayrollResponse{}, err
	}

	gen, err := payroll.BuildMonthlyRecords(req.Month, employees, records, s.calendar, s.settings)
	if err != nil {
		return payroll.GeneratePayrollResponse{}, err
	}

	var stored []payroll.PayrollRecord
	err = retry.Do(ctx, s.rt.Policy, func(ctx context.Context) error {
		stored = make([]payroll.PayrollRecord, 0, len(gen.Records))
		return s.tx.WithinTx(ctx, func(ctx context.Context) error {
			existing, err := s.payrollRepo.CountByMonth(ctx, req.Month)
			if err != nil {
				return err
			}
			if existing > 0 {
				return payroll.ErrPayrollAlreadyGenerated
			}

			for _, record := range gen.Records {
				created, err := s.payrollRepo.Insert(ctx, record)
				if err != nil {
					if errors.Is(err, payroll.ErrPayrollRecordAlreadyExists) {
						return payroll.ErrPayrollAlreadyGenerated
					}
					return fmt.Errorf("insert payroll record for employee %s: %w", record.EmployeeID, err)
				}
				stored = append(stored, created)
			}
			return nil
		})
	})
	if err != nil {
		return payroll.GeneratePayrollResponse{}, err
	}

	s.rt.Metrics.BatchItems("payroll.generate", "created", len(stored))
	s.rt.Metrics.BatchItems("payroll.generate", "skipped", len(gen.Skipped))
	for _, sk := range gen.Skipped {
		s.rt.Logger.Warn("employee skipped from payroll generation",
			zap.String("month", req.Month),
			zap.String("employee_id", sk.EmployeeID),
			zap.String("reason", sk.Reason),
		)
	}
	s.rt.Logger.Info("payroll generated",
		zap.String("month", req.Month),
		zap.Int("count", len(stored)),
		zap.Int("skipped", len(gen.Skipped)),
	)

	resp = payroll.GeneratePayrollResponse{
		Month:   req.Month,
		Records: make([]payroll.PayrollRecordResponse, 0, len(stored)),
		Count:   len(stored),
	}
	for _, r := range stored {
		resp.Records = append(resp.Records, payroll.ToRecordResponse(r))
	}
	for _, sk := range gen.Skipped {
		resp.Skipped = append(resp.Skipped, payroll.SkippedEmployeeResponse{EmployeeID: sk.EmployeeID, Reason: sk.Reason})
	}
	return resp, nil
}

// MarkPaid settles records one by one. Records already Paid count as
// updated and keep their original stamps. Unknown ids are reported under
// AlreadyResolved; every other per-record error goes to Failed. A
// cancelled context stops the batch but still returns what was settled.
func (s *PayrollServiceImpl) MarkPaid(ctx context.Context, req payroll.MarkPaidRequest) (resp payroll.MarkPaidResponse, err error) {
	defer s.rt.Metrics.Observe("payroll.mark_paid", time.Now(), &err)

	if err := req.Validate(); err != nil {
		return payroll.MarkPaidResponse{}, err
	}

	resp = payroll.MarkPaidResponse{
		Succeeded:       []string{},
		AlreadyResolved: []string{},
		Failed:          []payroll.MarkPaidFailure{},
	}
	for i, id := range req.RecordIDs {
		if err := ctx.Err(); err != nil {
			s.rt.Logger.Warn("mark paid interrupted",
				zap.Int("processed", i),
				zap.Int("total", len(req.RecordIDs)),
				zap.Error(err),
			)
			resp.Interrupted = true
			for _, rest := range req.RecordIDs[i:] {
				resp.Failed = append(resp.Failed, payroll.MarkPaidFailure{
					ID:      rest,
					Kind:    string(apperror.KindTransient),
					Message: "not processed: " + err.Error(),
				})
			}
			break
		}

		err := s.markOnePaid(ctx, id, req.PaidBy)
		switch {
		case err == nil:
			resp.UpdatedCount++
			resp.Succeeded = append(resp.Succeeded, id)
		case errors.Is(err, payroll.ErrPayrollRecordNotFound):
			s.rt.Logger.Warn("payroll record not found while marking paid", zap.String("record_id", id))
			resp.AlreadyResolved = append(resp.AlreadyResolved, id)
		default:
			s.rt.Logger.Error("failed to mark payroll record paid", zap.String("record_id", id), zap.Error(err))
			resp.Failed = append(resp.Failed, payroll.MarkPaidFailure{
				ID:      id,
				Kind:    string(apperror.KindOf(err)),
				Message: err.Error(),
			})
		}
	}

	s.rt.Metrics.BatchItems("payroll.mark_paid", "succeeded", len(resp.Succeeded))
	s.rt.Metrics.BatchItems("payroll.mark_paid", "already_resolved", len(resp.AlreadyResolved))
	s.rt.Metrics.BatchItems("payroll.mark_paid", "failed", len(resp.Failed))
	return resp, nil
}

func (s *PayrollServiceImpl) markOnePaid(ctx context.Context, id, paidBy string) error {
	current, err := retry.Value(ctx, s.rt.Policy, func(ctx context.Context) (payroll.PayrollRecord, error) {
		return s.payrollRepo.GetByID(ctx, id)
	})
	if err != nil {
		return err
	}
	if current.Status == payroll.PayrollStatusPaid {
		return nil
	}

	paidAt := s.rt.Now()
	status := payroll.PayrollStatusPaid
	fields := payroll.RecordUpdate{Status: &status, PaidAt: &paidAt}
	if paidBy != "" {
		fields.PaidBy = &paidBy
	}
	if current.Bank != nil {
		bank := *current.Bank
		txID := "TXN-" + uuid.NewString()
		bank.DepositDate = &paidAt
		bank.TransactionID = &txID
		bank.DepositStatus = payroll.DepositStatusDeposited
		fields.Bank = &bank
	}

	_, err = retry.Value(ctx, s.rt.Policy, func(ctx context.Context) (payroll.PayrollRecord, error) {
		return s.payrollRepo.Update(ctx, id, fields)
	})
	return err
}

// UpdateRecord merges the provided components into the stored record and
// recomputes its net salary.
func (s *PayrollServiceImpl) UpdateRecord(ctx context.Context, req payroll.UpdatePayrollRecordRequest) (resp payroll.PayrollRecordResponse, err error) {
	defer s.rt.Metrics.Observe("payroll.update", time.Now(), &err)

	if err := req.Validate(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	current, err := retry.Value(ctx, s.rt.Policy, func(ctx context.Context) (payroll.PayrollRecord, error) {
		return s.payrollRepo.GetByID(ctx, req.ID)
	})
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	merged := current.Components().Merge(req.Components)
	net, err := payroll.ComputeNetSalary(merged)
	merged = merged.Round()
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	fields := payroll.RecordUpdate{
		BasicSalary: merged.Basic,
		HRA:         merged.HRA,
		Allowances:  merged.Allowances,
		Overtime:    merged.Overtime,
		Bonus:       merged.Bonus,
		Deductions:  merged.Deductions,
		Tax:         merged.Tax,
		NetSalary:   &net,
		Remark:      req.Remark,
	}
	updated, err := retry.Value(ctx, s.rt.Policy, func(ctx context.Context) (payroll.PayrollRecord, error) {
		return s.payrollRepo.Update(ctx, req.ID, fields)
	})
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	return payroll.ToRecordResponse(updated), nil
}

func (s *PayrollServiceImpl) DeleteRecord(ctx context.Context, id string) (err error) {
	defer s.rt.Metrics.Observe("payroll.delete", time.Now(), &err)

	return retry.Do(ctx, s.rt.Policy, func(ctx context.Context) error {
		return s.payrollRepo.Delete(ctx, id)
	})
}

func (s *PayrollServiceImpl) GetRecord(ctx context.Context, id string) (payroll.PayrollRecordResponse, error) {
	record, err := retry.Value(ctx, s.rt.Policy, func(ctx context.Context) (payroll.PayrollRecord, error) {
		return s.payrollRepo.GetByID(ctx, id)
	})
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	return payroll.ToRecordResponse(record), nil
}

func (s *PayrollServiceImpl) ListRecords(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.PayrollRecordResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	var records []payroll.PayrollRecord
	var err error
	if filter.Month != nil {
		if _, err := payroll.ParseMonth(*filter.Month); err != nil {
			return nil, err
		}
		records, err = retry.Value(ctx, s.rt.Policy, func(ctx context.Context) ([]payroll.PayrollRecord, error) {
			return s.payrollRepo.ListByMonth(ctx, *filter.Month)
		})
	} else {
		records, err = retry.Value(ctx, s.rt.Policy, func(ctx context.Context) ([]payroll.PayrollRecord, error) {
			return s.payrollRepo.ListByEmployee(ctx, *filter.EmployeeID)
		})
	}
	if err != nil {
		return nil, err
	}

	resp := make([]payroll.PayrollRecordResponse, 0, len(records))
	for _, r := range records {
		if filter.Month != nil && filter.EmployeeID != nil && r.EmployeeID != *filter.EmployeeID {
			continue
		}
		resp = append(resp, payroll.ToRecordResponse(r))
	}
	return resp, nil
}

// ========== REPORTING ==========

func (s *PayrollServiceImpl) GetSummary(ctx context.Context, month string) (payroll.PayrollSummaryResponse, error) {
	if _, err := payroll.ParseMonth(month); err != nil {
		return payroll.PayrollSummaryResponse{}, err
	}

	records, err := retry.Value(ctx, s.rt.Policy, func(ctx context.Context) ([]payroll.PayrollRecord, error) {
		return s.payrollRepo.ListByMonth(ctx, month)
	})
	if err != nil {
		return payroll.PayrollSummaryResponse{}, err
	}

	return payroll.ToSummaryResponse(payroll.Summarize(month, records)), nil
}

// Report summarises every month from req.From to req.To. Months without
// records are listed with zero totals.
func (s *PayrollServiceImpl) Report(ctx context.Context, req payroll.PayrollReportRequest) (payroll.PayrollReportResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollReportResponse{}, err
	}
	from, _ := payroll.ParseMonth(req.From)
	to, _ := payroll.ParseMonth(req.To)

	records, err := retry.Value(ctx, s.rt.Policy, func(ctx context.Context) ([]payroll.PayrollRecord, error) {
		return s.payrollRepo.ListByMonthRange(ctx, req.From, req.To)
	})
	if err != nil {
		return payroll.PayrollReportResponse{}, err
	}

	byMonth := map[string][]payroll.PayrollRecord{}
	for _, r := range records {
		byMonth[r.Month] = append(byMonth[r.Month], r)
	}

	resp := payroll.PayrollReportResponse{
		From:             req.From,
		To:               req.To,
		Months:           []payroll.PayrollSummaryResponse{},
		TotalGrossSalary: decimal.Zero,
		TotalDeductions:  decimal.Zero,
		TotalNetSalary:   decimal.Zero,
	}
	for m := from; !m.After(to); m = m.AddDate(0, 1, 0) {
		month := m.Format("2006-01")
		summary := payroll.Summarize(month, byMonth[month])
		resp.Months = append(resp.Months, payroll.ToSummaryResponse(summary))
		resp.TotalGrossSalary = resp.TotalGrossSalary.Add(summary.TotalGross)
		resp.TotalDeductions = resp.TotalDeductions.Add(summary.TotalDeduction)
		resp.TotalNetSalary = resp.TotalNetSalary.Add(summary.TotalNet)
	}
	return resp, nil
}

func valueOrZero(v *decimal.Decimal) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return *v
}
