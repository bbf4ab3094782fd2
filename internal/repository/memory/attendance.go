package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
)

type attendanceRepositoryImpl struct {
	mu      sync.RWMutex
	records map[string]attendance.Record
	byKey   map[string]string // employee_id|date -> id
}

func NewAttendanceRepository() attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{
		records: make(map[string]attendance.Record),
		byKey:   make(map[string]string),
	}
}

func naturalKey(employeeID string, date time.Time) string {
	return employeeID + "|" + dateKey(date)
}

func (r *attendanceRepositoryImpl) Upsert(ctx context.Context, record attendance.Record) (attendance.Record, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := naturalKey(record.EmployeeID, record.Date)
	ts := now()
	if id, ok := r.byKey[key]; ok {
		existing := r.records[id]
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
		record.UpdatedAt = ts
		r.records[id] = record
		return record, false, nil
	}

	record.ID = newID()
	record.CreatedAt, record.UpdatedAt = ts, ts
	r.records[record.ID] = record
	r.byKey[key] = record.ID
	return record, true, nil
}

func (r *attendanceRepositoryImpl) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return attendance.ErrAttendanceNotFound
	}
	delete(r.byKey, naturalKey(rec.EmployeeID, rec.Date))
	delete(r.records, id)
	return nil
}

func (r *attendanceRepositoryImpl) ListByMonth(ctx context.Context, monthStart time.Time) ([]attendance.Record, error) {
	month := monthStart.Format("2006-01")
	return r.filter(func(rec attendance.Record) bool {
		return rec.Date.Format("2006-01") == month
	}), nil
}

func (r *attendanceRepositoryImpl) ListByDate(ctx context.Context, date time.Time) ([]attendance.Record, error) {
	day := dateKey(date)
	return r.filter(func(rec attendance.Record) bool {
		return dateKey(rec.Date) == day
	}), nil
}

func (r *attendanceRepositoryImpl) ListBetween(ctx context.Context, from, to time.Time) ([]attendance.Record, error) {
	lo, hi := dateKey(from), dateKey(to)
	return r.filter(func(rec attendance.Record) bool {
		day := dateKey(rec.Date)
		return day >= lo && day <= hi
	}), nil
}

func (r *attendanceRepositoryImpl) filter(keep func(attendance.Record) bool) []attendance.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []attendance.Record{}
	for _, rec := range r.records {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out
}
