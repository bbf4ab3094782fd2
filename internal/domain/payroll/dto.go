package payroll

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== CALCULATION DTOs ==========

type ComputeNetSalaryResponse struct {
	NetSalary decimal.Decimal `json:"net_salary"`
}

// ========== PAYROLL RECORD DTOs ==========

type BankDetailsRequest struct {
	BankName      string `json:"bank_name" validate:"required"`
	AccountNumber string `json:"account_number" validate:"required"`
	IFSCCode      string `json:"ifsc_code" validate:"required"`
}

type CreatePayrollRecordRequest struct {
	EmployeeID string              `json:"employee_id" validate:"required"`
	Month      string              `json:"month" validate:"required"`
	Remark     *string             `json:"remark,omitempty"`
	Bank       *BankDetailsRequest `json:"bank_details,omitempty"`
	Components
}

func (r *CreatePayrollRecordRequest) Validate() error {
	var errs validator.ValidationErrors
	if err := validator.Struct(r); err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		errs = append(errs, fieldErrs...)
	}
	if err := r.Components.Validate(); err != nil {
		errs = append(errs, err.(validator.ValidationErrors)...)
	}
	return errs.Err()
}

type GeneratePayrollRequest struct {
	Month string `json:"month"`
}

func (r *GeneratePayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Month) {
		errs.Add("month", "month is required")
	}

	return errs.Err()
}

type UpdatePayrollRecordRequest struct {
	ID     string  `json:"-"`
	Remark *string `json:"remark,omitempty"`
	Components
}

func (r *UpdatePayrollRecordRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	}
	if r.Components.IsEmpty() && r.Remark == nil {
		errs.Add("components", "at least one field must be provided")
	}

	return errs.Err()
}

type MarkPaidRequest struct {
	RecordIDs []string `json:"record_ids"`
	PaidBy    string   `json:"-"`
}

func (r *MarkPaidRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.RecordIDs) == 0 {
		errs.Add("record_ids", "at least one record is required")
	}
	for _, id := range r.RecordIDs {
		if validator.IsEmpty(id) {
			errs.Add("record_ids", "record ids must not be empty")
			break
		}
	}

	return errs.Err()
}

type MarkPaidFailure struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type MarkPaidResponse struct {
	UpdatedCount    int               `json:"updated_count"`
	Succeeded       []string          `json:"succeeded"`
	AlreadyResolved []string          `json:"already_resolved"`
	Failed          []MarkPaidFailure `json:"failed"`
	// Interrupted is set when the caller went away mid-batch. Ids that
	// were never attempted are listed in Failed.
	Interrupted bool `json:"interrupted,omitempty"`
}

type PayrollFilter struct {
	Month      *string
	EmployeeID *string
}

func (f *PayrollFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Month == nil && f.EmployeeID == nil {
		errs.Add("month", "month or employee_id is required")
	}

	return errs.Err()
}

type BankDetailsResponse struct {
	BankName      string     `json:"bank_name"`
	AccountNumber string     `json:"account_number"`
	IFSCCode      string     `json:"ifsc_code"`
	DepositDate   *time.Time `json:"deposit_date,omitempty"`
	TransactionID *string    `json:"transaction_id,omitempty"`
	DepositStatus string     `json:"deposit_status"`
}

type PayrollRecordResponse struct {
	ID              string               `json:"id"`
	EmployeeID      string               `json:"employee_id"`
	EmployeeName    *string              `json:"employee_name,omitempty"`
	EmployeeCode    *string              `json:"employee_code,omitempty"`
	Month           string               `json:"month"`
	BasicSalary     decimal.Decimal      `json:"basic_salary"`
	HRA             decimal.Decimal      `json:"hra"`
	Allowances      decimal.Decimal      `json:"allowances"`
	Overtime        decimal.Decimal      `json:"overtime"`
	Bonus           decimal.Decimal      `json:"bonus"`
	Deductions      decimal.Decimal      `json:"deductions"`
	Tax             decimal.Decimal      `json:"tax"`
	NetSalary       decimal.Decimal      `json:"net_salary"`
	Status          PayrollStatus        `json:"status"`
	BankDetails     *BankDetailsResponse `json:"bank_details,omitempty"`
	AttendanceRatio *decimal.Decimal     `json:"attendance_ratio,omitempty"`
	WorkingDays     *int                 `json:"working_days,omitempty"`
	PresentDays     *decimal.Decimal     `json:"present_days,omitempty"`
	Remark          *string              `json:"remark,omitempty"`
	PaidAt          *time.Time           `json:"paid_at,omitempty"`
	PaidBy          *string              `json:"paid_by,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

type SkippedEmployeeResponse struct {
	EmployeeID string `json:"employee_id"`
	Reason     string `json:"reason"`
}

type GeneratePayrollResponse struct {
	Month   string                    `json:"month"`
	Records []PayrollRecordResponse   `json:"records"`
	Count   int                       `json:"count"`
	Skipped []SkippedEmployeeResponse `json:"skipped,omitempty"`
}

type PayrollSummaryResponse struct {
	Month            string          `json:"month"`
	TotalEmployees   int             `json:"total_employees"`
	TotalGrossSalary decimal.Decimal `json:"total_gross_salary"`
	TotalDeductions  decimal.Decimal `json:"total_deductions"`
	TotalNetSalary   decimal.Decimal `json:"total_net_salary"`
	PaidCount        int             `json:"paid_count"`
	PendingCount     int             `json:"pending_count"`
	AverageSalary    decimal.Decimal `json:"average_salary"`
}

// PayrollReportRequest selects the months from..to, both inclusive.
type PayrollReportRequest struct {
	From string
	To   string
}

func (r *PayrollReportRequest) Validate() error {
	var errs validator.ValidationErrors

	fromOK, toOK := validator.IsValidMonth(r.From), validator.IsValidMonth(r.To)
	if !fromOK {
		errs.Add("from", "from must be in YYYY-MM format")
	}
	if !toOK {
		errs.Add("to", "to must be in YYYY-MM format")
	}
	if fromOK && toOK && r.To < r.From {
		errs.Add("to", "to must not be before from")
	}

	return errs.Err()
}

type PayrollReportResponse struct {
	From             string                   `json:"from"`
	To               string                   `json:"to"`
	Months           []PayrollSummaryResponse `json:"months"`
	TotalGrossSalary decimal.Decimal          `json:"total_gross_salary"`
	TotalDeductions  decimal.Decimal          `json:"total_deductions"`
	TotalNetSalary   decimal.Decimal          `json:"total_net_salary"`
}

func ToRecordResponse(r PayrollRecord) PayrollRecordResponse {
	resp := PayrollRecordResponse{
		ID:              r.ID,
		EmployeeID:      r.EmployeeID,
		EmployeeName:    r.EmployeeName,
		EmployeeCode:    r.EmployeeCode,
		Month:           r.Month,
		BasicSalary:     r.BasicSalary,
		HRA:             r.HRA,
		Allowances:      r.Allowances,
		Overtime:        r.Overtime,
		Bonus:           r.Bonus,
		Deductions:      r.Deductions,
		Tax:             r.Tax,
		NetSalary:       r.NetSalary,
		Status:          r.Status,
		AttendanceRatio: r.AttendanceRatio,
		WorkingDays:     r.WorkingDays,
		PresentDays:     r.PresentDays,
		Remark:          r.Remark,
		PaidAt:          r.PaidAt,
		PaidBy:          r.PaidBy,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if r.Bank != nil {
		resp.BankDetails = &BankDetailsResponse{
			BankName:      r.Bank.BankName,
			AccountNumber: r.Bank.AccountNumber,
			IFSCCode:      r.Bank.IFSCCode,
			DepositDate:   r.Bank.DepositDate,
			TransactionID: r.Bank.TransactionID,
			DepositStatus: r.Bank.DepositStatus,
		}
	}
	return resp
}

func ToSummaryResponse(s Summary) PayrollSummaryResponse {
	return PayrollSummaryResponse{
		Month:            s.Month,
		TotalEmployees:   s.TotalEmployees,
		TotalGrossSalary: s.TotalGross,
		TotalDeductions:  s.TotalDeduction,
		TotalNetSalary:   s.TotalNet,
		PaidCount:        s.PaidCount,
		PendingCount:     s.PendingCount,
		AverageSalary:    s.AverageSalary,
	}
}
