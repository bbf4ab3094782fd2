package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID           string
	EmployeeCode string
	FullName     string
	Email        string
	Department   string
	Role         string
	Status       Status
	JoinDate     time.Time
	Salary       SalaryStructure
	Bank         *BankAccount
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
	StatusOnLeave  Status = "On Leave"
)

// SalaryStructure is the stored monthly pay structure. Transport, medical
// and food are optional allowance lines.
type SalaryStructure struct {
	Basic      decimal.Decimal
	HRA        decimal.Decimal
	Allowances decimal.Decimal
	Transport  *decimal.Decimal
	Medical    *decimal.Decimal
	Food       *decimal.Decimal
}

// TotalAllowances folds the optional allowance lines into Allowances.
func (s SalaryStructure) TotalAllowances() decimal.Decimal {
	total := s.Allowances
	for _, line := range []*decimal.Decimal{s.Transport, s.Medical, s.Food} {
		if line != nil {
			total = total.Add(*line)
		}
	}
	return total
}

type BankAccount struct {
	BankName      string
	AccountNumber string
	IFSCCode      string
}

func (e Employee) IsActive() bool {
	return e.Status == StatusActive
}
