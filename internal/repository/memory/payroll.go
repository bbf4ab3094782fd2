package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
)

type payrollRepositoryImpl struct {
	mu      sync.RWMutex
	records map[string]payroll.PayrollRecord
}

func NewPayrollRepository() payroll.PayrollRepository {
	return &payrollRepositoryImpl{records: make(map[string]payroll.PayrollRecord)}
}

func (r *payrollRepositoryImpl) Insert(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.records {
		if existing.EmployeeID == record.EmployeeID && existing.Month == record.Month {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordAlreadyExists
		}
	}

	if record.ID == "" {
		record.ID = newID()
	}
	if record.Status == "" {
		record.Status = payroll.PayrollStatusPending
	}
	ts := now()
	record.CreatedAt, record.UpdatedAt = ts, ts
	record.Bank = cloneBank(record.Bank)
	r.records[record.ID] = record
	return record, nil
}

func (r *payrollRepositoryImpl) GetByID(ctx context.Context, id string) (payroll.PayrollRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}
	rec.Bank = cloneBank(rec.Bank)
	return rec, nil
}

func (r *payrollRepositoryImpl) Update(ctx context.Context, id string, fields payroll.RecordUpdate) (payroll.PayrollRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}
	rec = fields.Apply(rec)
	rec.UpdatedAt = now()
	r.records[id] = rec

	rec.Bank = cloneBank(rec.Bank)
	return rec, nil
}

func (r *payrollRepositoryImpl) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return payroll.ErrPayrollRecordNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *payrollRepositoryImpl) ListByMonth(ctx context.Context, month string) ([]payroll.PayrollRecord, error) {
	return r.filter(func(rec payroll.PayrollRecord) bool { return rec.Month == month }), nil
}

func (r *payrollRepositoryImpl) ListByMonthRange(ctx context.Context, from, to string) ([]payroll.PayrollRecord, error) {
	return r.filter(func(rec payroll.PayrollRecord) bool { return rec.Month >= from && rec.Month <= to }), nil
}

func (r *payrollRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string) ([]payroll.PayrollRecord, error) {
	return r.filter(func(rec payroll.PayrollRecord) bool { return rec.EmployeeID == employeeID }), nil
}

func (r *payrollRepositoryImpl) CountByMonth(ctx context.Context, month string) (int, error) {
	return len(r.filter(func(rec payroll.PayrollRecord) bool { return rec.Month == month })), nil
}

func (r *payrollRepositoryImpl) filter(keep func(payroll.PayrollRecord) bool) []payroll.PayrollRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []payroll.PayrollRecord{}
	for _, rec := range r.records {
		if keep(rec) {
			rec.Bank = cloneBank(rec.Bank)
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month > out[j].Month
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out
}

func cloneBank(b *payroll.BankDetails) *payroll.BankDetails {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}
