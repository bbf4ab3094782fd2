package payroll

import "context"

// PayrollRepository defines data access methods for payroll records.
type PayrollRepository interface {
	Insert(ctx context.Context, record PayrollRecord) (PayrollRecord, error)
	GetByID(ctx context.Context, id string) (PayrollRecord, error)
	Update(ctx context.Context, id string, fields RecordUpdate) (PayrollRecord, error)
	Delete(ctx context.Context, id string) error
	ListByMonth(ctx context.Context, month string) ([]PayrollRecord, error)
	// ListByMonthRange returns records whose month lies in from..to, both
	// inclusive. Months are YYYY-MM so they compare as strings.
	ListByMonthRange(ctx context.Context, from, to string) ([]PayrollRecord, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]PayrollRecord, error)
	CountByMonth(ctx context.Context, month string) (int, error)
}
