package payroll

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// Calendar lists the working days of a month.
type Calendar interface {
	WorkingDays(monthStart time.Time) ([]time.Time, error)
}

type GenerationSettings struct {
	OvertimeRatePerHour decimal.Decimal
}

// SkippedEmployee is an active employee no record could be built for.
type SkippedEmployee struct {
	EmployeeID string
	Reason     string
}

type Generation struct {
	Month   string
	Records []PayrollRecord
	Count   int
	Skipped []SkippedEmployee
}

var hundred = decimal.NewFromInt(100)

// ParseMonth validates a YYYY-MM key and returns the first day of the month.
func ParseMonth(month string) (time.Time, error) {
	if !validator.IsValidMonth(month) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidMonth, month)
	}
	return time.Parse("2006-01", month)
}

// BuildMonthlyRecords builds one Pending record per active employee from
// their salary structure and the month's attendance. It does not touch
// any store; IDs are left for the store to assign.
func BuildMonthlyRecords(
	month string,
	employees []employee.Employee,
	attendanceForMonth []attendance.Record,
	calendar Calendar,
	settings GenerationSettings,
) (Generation, error) {
	monthStart, err := ParseMonth(month)
	if err != nil {
		return Generation{}, err
	}

	workingDays, err := calendar.WorkingDays(monthStart)
	if err != nil {
		return Generation{}, fmt.Errorf("list working days for %s: %w", month, err)
	}
	isWorkingDay := make(map[string]bool, len(workingDays))
	for _, d := range workingDays {
		isWorkingDay[d.Format("2006-01-02")] = true
	}

	byEmployee := make(map[string][]attendance.Record)
	for _, rec := range attendanceForMonth {
		if rec.Date.Format("2006-01") != month {
			continue
		}
		byEmployee[rec.EmployeeID] = append(byEmployee[rec.EmployeeID], rec)
	}

	gen := Generation{Month: month, Records: []PayrollRecord{}}
	for _, emp := range employees {
		if !emp.IsActive() {
			continue
		}

		presentDays, overtimeHours := tallyAttendance(byEmployee[emp.ID], isWorkingDay)
		ratio := AttendanceRatio(presentDays, len(workingDays))
		overtime := overtimeHours.Mul(settings.OvertimeRatePerHour).Round(2)

		components := Components{
			Basic:      ptr(emp.Salary.Basic),
			HRA:        ptr(emp.Salary.HRA),
			Allowances: ptr(emp.Salary.TotalAllowances()),
			Overtime:   ptr(overtime),
			Bonus:      ptr(decimal.Zero),
			Deductions: ptr(decimal.Zero),
			Tax:        ptr(decimal.Zero),
		}.Round()
		net, err := ComputeNetSalary(components)
		if err != nil {
			gen.Skipped = append(gen.Skipped, SkippedEmployee{EmployeeID: emp.ID, Reason: err.Error()})
			continue
		}

		record := PayrollRecord{
			EmployeeID:      emp.ID,
			Month:           month,
			BasicSalary:     *components.Basic,
			HRA:             *components.HRA,
			Allowances:      *components.Allowances,
			Overtime:        *components.Overtime,
			Bonus:           decimal.Zero,
			Deductions:      decimal.Zero,
			Tax:             decimal.Zero,
			NetSalary:       net,
			Status:          PayrollStatusPending,
			AttendanceRatio: &ratio,
			WorkingDays:     ptr(len(workingDays)),
			PresentDays:     &presentDays,
			EmployeeName:    ptr(emp.FullName),
			EmployeeCode:    ptr(emp.EmployeeCode),
		}
		if emp.Bank != nil {
			record.Bank = &BankDetails{
				BankName:      emp.Bank.BankName,
				AccountNumber: emp.Bank.AccountNumber,
				IFSCCode:      emp.Bank.IFSCCode,
				DepositStatus: DepositStatusPending,
			}
		}
		gen.Records = append(gen.Records, record)
	}
	gen.Count = len(gen.Records)

	return gen, nil
}

// tallyAttendance sums presence over working days, one record per date,
// and overtime hours over every record.
func tallyAttendance(records []attendance.Record, isWorkingDay map[string]bool) (decimal.Decimal, decimal.Decimal) {
	perDay := make(map[string]decimal.Decimal)
	overtime := decimal.Zero
	for _, rec := range records {
		overtime = overtime.Add(rec.OvertimeHours)
		day := rec.Date.Format("2006-01-02")
		if isWorkingDay[day] {
			perDay[day] = rec.Status.PresenceWeight()
		}
	}

	present := decimal.Zero
	for _, w := range perDay {
		present = present.Add(w)
	}
	return present, overtime
}

// AttendanceRatio is presentDays over workingDays as a percentage rounded
// to 2 places and capped at 100.
func AttendanceRatio(presentDays decimal.Decimal, workingDays int) decimal.Decimal {
	if workingDays <= 0 {
		return decimal.Zero
	}
	ratio := presentDays.Div(decimal.NewFromInt(int64(workingDays))).Mul(hundred).Round(2)
	if ratio.GreaterThan(hundred) {
		return hundred
	}
	return ratio
}
