package payroll

import "context"

type PayrollService interface {
	// Calculation
	ComputeNetSalary(ctx context.Context, components Components) (ComputeNetSalaryResponse, error)

	// Records
	CreateRecord(ctx context.Context, req CreatePayrollRecordRequest) (PayrollRecordResponse, error)
	GenerateMonthlyPayroll(ctx context.Context, req GeneratePayrollRequest) (GeneratePayrollResponse, error)
	MarkPaid(ctx context.Context, req MarkPaidRequest) (MarkPaidResponse, error)
	UpdateRecord(ctx context.Context, req UpdatePayrollRecordRequest) (PayrollRecordResponse, error)
	DeleteRecord(ctx context.Context, id string) error
	GetRecord(ctx context.Context, id string) (PayrollRecordResponse, error)
	ListRecords(ctx context.Context, filter PayrollFilter) ([]PayrollRecordResponse, error)

	// Reporting
	GetSummary(ctx context.Context, month string) (PayrollSummaryResponse, error)
	Report(ctx context.Context, req PayrollReportRequest) (PayrollReportResponse, error)
}
