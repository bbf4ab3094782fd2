package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayrollStatus enum
type PayrollStatus string

const (
	PayrollStatusPending PayrollStatus = "Pending"
	PayrollStatusPaid    PayrollStatus = "Paid"
)

const (
	DepositStatusPending   = "Pending"
	DepositStatusDeposited = "Deposited"
)

// BankDetails - Deposit target, stamped when the record is paid
type BankDetails struct {
	BankName      string
	AccountNumber string
	IFSCCode      string
	DepositDate   *time.Time
	TransactionID *string
	DepositStatus string
}

// PayrollRecord - One employee's pay for one month
type PayrollRecord struct {
	ID              string
	EmployeeID      string
	Month           string // YYYY-MM
	BasicSalary     decimal.Decimal
	HRA             decimal.Decimal
	Allowances      decimal.Decimal
	Overtime        decimal.Decimal
	Bonus           decimal.Decimal
	Deductions      decimal.Decimal
	Tax             decimal.Decimal
	NetSalary       decimal.Decimal
	Status          PayrollStatus
	Bank            *BankDetails
	AttendanceRatio *decimal.Decimal
	WorkingDays     *int
	PresentDays     *decimal.Decimal
	Remark          *string
	PaidAt          *time.Time
	PaidBy          *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
}

// Components returns the record's amounts as calculator input.
func (r PayrollRecord) Components() Components {
	return Components{
		Basic:      ptr(r.BasicSalary),
		HRA:        ptr(r.HRA),
		Allowances: ptr(r.Allowances),
		Overtime:   ptr(r.Overtime),
		Bonus:      ptr(r.Bonus),
		Deductions: ptr(r.Deductions),
		Tax:        ptr(r.Tax),
	}
}

// Gross is every earning before deductions and tax.
func (r PayrollRecord) Gross() decimal.Decimal {
	return r.BasicSalary.Add(r.HRA).Add(r.Allowances).Add(r.Overtime).Add(r.Bonus)
}

// RecordUpdate holds the fields a store update writes. Nil fields are left as is.
type RecordUpdate struct {
	BasicSalary *decimal.Decimal
	HRA         *decimal.Decimal
	Allowances  *decimal.Decimal
	Overtime    *decimal.Decimal
	Bonus       *decimal.Decimal
	Deductions  *decimal.Decimal
	Tax         *decimal.Decimal
	NetSalary   *decimal.Decimal
	Status      *PayrollStatus
	Bank        *BankDetails
	Remark      *string
	PaidAt      *time.Time
	PaidBy      *string
}

// Apply returns r with the non-nil fields of u written over it.
func (u RecordUpdate) Apply(r PayrollRecord) PayrollRecord {
	set := func(dst *decimal.Decimal, src *decimal.Decimal) {
		if src != nil {
			*dst = *src
		}
	}
	set(&r.BasicSalary, u.BasicSalary)
	set(&r.HRA, u.HRA)
	set(&r.Allowances, u.Allowances)
	set(&r.Overtime, u.Overtime)
	set(&r.Bonus, u.Bonus)
	set(&r.Deductions, u.Deductions)
	set(&r.Tax, u.Tax)
	set(&r.NetSalary, u.NetSalary)
	if u.Status != nil {
		r.Status = *u.Status
	}
	if u.Bank != nil {
		bank := *u.Bank
		r.Bank = &bank
	}
	if u.Remark != nil {
		r.Remark = u.Remark
	}
	if u.PaidAt != nil {
		r.PaidAt = u.PaidAt
	}
	if u.PaidBy != nil {
		r.PaidBy = u.PaidBy
	}
	return r
}

// Summary - Month totals across every record
type Summary struct {
	Month          string
	TotalEmployees int
	TotalGross     decimal.Decimal
	TotalDeduction decimal.Decimal
	TotalNet       decimal.Decimal
	PaidCount      int
	PendingCount   int
	AverageSalary  decimal.Decimal
}

// Summarize totals records of one month.
func Summarize(month string, records []PayrollRecord) Summary {
	s := Summary{
		Month:          month,
		TotalEmployees: len(records),
		TotalGross:     decimal.Zero,
		TotalDeduction: decimal.Zero,
		TotalNet:       decimal.Zero,
		AverageSalary:  decimal.Zero,
	}
	for _, r := range records {
		s.TotalGross = s.TotalGross.Add(r.Gross())
		s.TotalDeduction = s.TotalDeduction.Add(r.Deductions).Add(r.Tax)
		s.TotalNet = s.TotalNet.Add(r.NetSalary)
		if r.Status == PayrollStatusPaid {
			s.PaidCount++
		} else {
			s.PendingCount++
		}
	}
	if len(records) > 0 {
		s.AverageSalary = s.TotalNet.Div(decimal.NewFromInt(int64(len(records)))).Round(2)
	}
	return s
}

func ptr[T any](v T) *T {
	return &v
}
