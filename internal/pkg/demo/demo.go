// Package demo fills the employee directory and attendance store with
// generated data for local runs and load checks.
package demo

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/shopspring/decimal"
)

var (
	departments = []string{"Engineering", "Finance", "Human Resources", "Operations", "Sales"}
	banks       = []string{"BCA", "BNI", "BRI", "Mandiri"}
)

// WorkingDays lists the working days of a month.
type WorkingDays interface {
	WorkingDays(monthStart time.Time) ([]time.Time, error)
}

type Seeder struct {
	faker      *gofakeit.Faker
	employees  employee.EmployeeRepository
	attendance attendance.AttendanceRepository
	calendar   WorkingDays
}

// NewSeeder returns a Seeder. A zero seed picks a random one.
func NewSeeder(seed uint64, employees employee.EmployeeRepository, attendanceRepo attendance.AttendanceRepository, calendar WorkingDays) *Seeder {
	return &Seeder{
		faker:      gofakeit.New(seed),
		employees:  employees,
		attendance: attendanceRepo,
		calendar:   calendar,
	}
}

type Result struct {
	Employees  []employee.Employee
	Attendance int
}

// Seed creates n employees and one attendance record per employee for
// every working day of month.
func (s *Seeder) Seed(ctx context.Context, n int, month time.Time) (Result, error) {
	var result Result

	for i := 0; i < n; i++ {
		created, err := s.employees.Create(ctx, s.Employee(i+1))
		if err != nil {
			return result, fmt.Errorf("failed to create employee %d: %w", i+1, err)
		}
		result.Employees = append(result.Employees, created)
	}

	days, err := s.calendar.WorkingDays(month)
	if err != nil {
		return result, fmt.Errorf("failed to list working days: %w", err)
	}

	for _, emp := range result.Employees {
		for _, day := range days {
			if _, _, err := s.attendance.Upsert(ctx, s.Attendance(emp.ID, day)); err != nil {
				return result, fmt.Errorf("failed to record attendance for %s on %s: %w", emp.ID, day.Format("2006-01-02"), err)
			}
			result.Attendance++
		}
	}

	return result, nil
}

// Employee builds an active employee with a plausible salary structure.
func (s *Seeder) Employee(seq int) employee.Employee {
	f := s.faker
	basic := decimal.NewFromInt(int64(f.Number(40, 150)) * 100)
	transport := decimal.NewFromInt(int64(f.Number(2, 6)) * 50)

	emp := employee.Employee{
		EmployeeCode: fmt.Sprintf("EMP%04d", seq),
		FullName:     f.Name(),
		Email:        f.Email(),
		Department:   f.RandomString(departments),
		Role:         f.JobTitle(),
		Status:       employee.StatusActive,
		JoinDate:     f.DateRange(time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		Salary: employee.SalaryStructure{
			Basic:      basic,
			HRA:        basic.Mul(decimal.NewFromFloat(0.2)).Round(2),
			Allowances: decimal.NewFromInt(int64(f.Number(1, 5)) * 100),
			Transport:  &transport,
		},
	}
	if f.Number(1, 10) > 1 {
		bank := f.RandomString(banks)
		emp.Bank = &employee.BankAccount{
			BankName:      bank,
			AccountNumber: f.AchAccount(),
			IFSCCode:      fmt.Sprintf("%s%04d", bank, f.Number(1, 9999)),
		}
	}
	return emp
}

// Attendance builds one day's record, mostly present.
func (s *Seeder) Attendance(employeeID string, day time.Time) attendance.Record {
	f := s.faker
	rec := attendance.Record{
		EmployeeID:    employeeID,
		Date:          day,
		HoursWorked:   decimal.NewFromInt(8),
		OvertimeHours: decimal.Zero,
	}

	switch roll := f.Number(1, 100); {
	case roll <= 70:
		rec.Status = attendance.StatusPresent
		if f.Number(1, 10) == 1 {
			rec.OvertimeHours = decimal.NewFromInt(int64(f.Number(1, 3)))
		}
	case roll <= 80:
		rec.Status = attendance.StatusWorkFromHome
	case roll <= 88:
		rec.Status = attendance.StatusLate
		rec.HoursWorked = decimal.NewFromInt(7)
	case roll <= 94:
		rec.Status = attendance.StatusHalfDay
		rec.HoursWorked = decimal.NewFromInt(4)
	default:
		rec.Status = attendance.StatusAbsent
		rec.HoursWorked = decimal.Zero
	}
	return rec
}
