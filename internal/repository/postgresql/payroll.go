package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type payrollRepositoryImpl struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepositoryImpl{db: db}
}

const payrollSelect = `
	SELECT p.id, p.employee_id, p.month, p.basic_salary, p.hra, p.allowances, p.overtime, p.bonus,
		p.deductions, p.tax, p.net_salary, p.status,
		p.bank_name, p.account_number, p.ifsc_code, p.deposit_date, p.transaction_id, p.deposit_status,
		p.attendance_ratio, p.working_days, p.present_days, p.remark, p.paid_at, p.paid_by,
		p.created_at, p.updated_at, e.full_name, e.employee_code
	FROM payroll_records p
	LEFT JOIN employees e ON e.id = p.employee_id`

func scanPayroll(row pgx.Row) (payroll.PayrollRecord, error) {
	var rec payroll.PayrollRecord
	var bankName, accountNumber, ifscCode, transactionID, depositStatus *string
	var depositDate *time.Time
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.Month, &rec.BasicSalary, &rec.HRA, &rec.Allowances, &rec.Overtime, &rec.Bonus,
		&rec.Deductions, &rec.Tax, &rec.NetSalary, &rec.Status,
		&bankName, &accountNumber, &ifscCode, &depositDate, &transactionID, &depositStatus,
		&rec.AttendanceRatio, &rec.WorkingDays, &rec.PresentDays, &rec.Remark, &rec.PaidAt, &rec.PaidBy,
		&rec.CreatedAt, &rec.UpdatedAt, &rec.EmployeeName, &rec.EmployeeCode,
	)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}
	if bankName != nil {
		rec.Bank = &payroll.BankDetails{
			BankName:      *bankName,
			DepositDate:   depositDate,
			TransactionID: transactionID,
		}
		if accountNumber != nil {
			rec.Bank.AccountNumber = *accountNumber
		}
		if ifscCode != nil {
			rec.Bank.IFSCCode = *ifscCode
		}
		if depositStatus != nil {
			rec.Bank.DepositStatus = *depositStatus
		}
	}
	return rec, nil
}

type bankColumns struct {
	name, account, ifsc, transactionID, depositStatus *string
	depositDate                                       *time.Time
}

func splitBank(b *payroll.BankDetails) bankColumns {
	if b == nil {
		return bankColumns{}
	}
	return bankColumns{
		name:          &b.BankName,
		account:       &b.AccountNumber,
		ifsc:          &b.IFSCCode,
		transactionID: b.TransactionID,
		depositStatus: &b.DepositStatus,
		depositDate:   b.DepositDate,
	}
}

// Insert implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) Insert(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	if record.Status == "" {
		record.Status = payroll.PayrollStatusPending
	}
	bank := splitBank(record.Bank)

	query := `
		INSERT INTO payroll_records (
			employee_id, month, basic_salary, hra, allowances, overtime, bonus, deductions, tax, net_salary, status,
			bank_name, account_number, ifsc_code, deposit_date, transaction_id, deposit_status,
			attendance_ratio, working_days, present_days, remark, paid_at, paid_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		record.EmployeeID, record.Month, record.BasicSalary, record.HRA, record.Allowances, record.Overtime,
		record.Bonus, record.Deductions, record.Tax, record.NetSalary, string(record.Status),
		bank.name, bank.account, bank.ifsc, bank.depositDate, bank.transactionID, bank.depositStatus,
		record.AttendanceRatio, record.WorkingDays, record.PresentDays, record.Remark, record.PaidAt, record.PaidBy,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordAlreadyExists
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to create payroll record: %w", err)
	}
	return record, nil
}

// GetByID implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) GetByID(ctx context.Context, id string) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	rec, err := scanPayroll(q.QueryRow(ctx, payrollSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record by id: %w", err)
	}
	return rec, nil
}

// Update implements payroll.PayrollRepository. Nil fields keep their stored value.
func (r *payrollRepositoryImpl) Update(ctx context.Context, id string, fields payroll.RecordUpdate) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	var status *string
	if fields.Status != nil {
		s := string(*fields.Status)
		status = &s
	}
	bank := splitBank(fields.Bank)

	query := `
		UPDATE payroll_records SET
			basic_salary = COALESCE($2, basic_salary),
			hra = COALESCE($3, hra),
			allowances = COALESCE($4, allowances),
			overtime = COALESCE($5, overtime),
			bonus = COALESCE($6, bonus),
			deductions = COALESCE($7, deductions),
			tax = COALESCE($8, tax),
			net_salary = COALESCE($9, net_salary),
			status = COALESCE($10, status),
			bank_name = COALESCE($11, bank_name),
			account_number = COALESCE($12, account_number),
			ifsc_code = COALESCE($13, ifsc_code),
			deposit_date = COALESCE($14, deposit_date),
			transaction_id = COALESCE($15, transaction_id),
			deposit_status = COALESCE($16, deposit_status),
			remark = COALESCE($17, remark),
			paid_at = COALESCE($18, paid_at),
			paid_by = COALESCE($19, paid_by),
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id,
		fields.BasicSalary, fields.HRA, fields.Allowances, fields.Overtime, fields.Bonus,
		fields.Deductions, fields.Tax, fields.NetSalary, status,
		bank.name, bank.account, bank.ifsc, bank.depositDate, bank.transactionID, bank.depositStatus,
		fields.Remark, fields.PaidAt, fields.PaidBy,
	)
	if err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to update payroll record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM payroll_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete payroll record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayrollRecordNotFound
	}
	return nil
}

// ListByMonth implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) ListByMonth(ctx context.Context, month string) ([]payroll.PayrollRecord, error) {
	return r.list(ctx, payrollSelect+` WHERE p.month = $1 ORDER BY p.employee_id`, month)
}

// ListByMonthRange implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) ListByMonthRange(ctx context.Context, from, to string) ([]payroll.PayrollRecord, error) {
	return r.list(ctx, payrollSelect+` WHERE p.month >= $1 AND p.month <= $2 ORDER BY p.month, p.employee_id`, from, to)
}

// ListByEmployee implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string) ([]payroll.PayrollRecord, error) {
	return r.list(ctx, payrollSelect+` WHERE p.employee_id = $1 ORDER BY p.month DESC`, employeeID)
}

// CountByMonth implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) CountByMonth(ctx context.Context, month string) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM payroll_records WHERE month = $1`, month).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count payroll records: %w", err)
	}
	return count, nil
}

func (r *payrollRepositoryImpl) list(ctx context.Context, query string, args ...any) ([]payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll records: %w", err)
	}
	defer rows.Close()

	records := []payroll.PayrollRecord{}
	for rows.Next() {
		rec, err := scanPayroll(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payroll records: %w", err)
	}
	return records, nil
}
