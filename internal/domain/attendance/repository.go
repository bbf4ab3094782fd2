package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	// ListByMonth returns every record dated within the month that starts at monthStart.
	ListByMonth(ctx context.Context, monthStart time.Time) ([]Record, error)
	ListByDate(ctx context.Context, date time.Time) ([]Record, error)
	// ListBetween returns records dated from..to, both days inclusive.
	ListBetween(ctx context.Context, from, to time.Time) ([]Record, error)
	// Upsert inserts or replaces the record for (EmployeeID, Date) and
	// reports whether a new row was created.
	Upsert(ctx context.Context, record Record) (Record, bool, error)
	Delete(ctx context.Context, id string) error
}
