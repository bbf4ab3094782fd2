package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// Upsert records attendance for one employee and date
	Upsert(ctx context.Context, req UpsertAttendanceRequest) (UpsertAttendanceResponse, error)

	// BulkUpsert processes records in order; failures do not stop the batch
	BulkUpsert(ctx context.Context, req BulkUpsertAttendanceRequest) (BulkUpsertAttendanceResponse, error)

	// ListByMonth lists attendance for a YYYY-MM month
	ListByMonth(ctx context.Context, month string) ([]AttendanceResponse, error)

	// Statistics summarises one date against the active roster
	Statistics(ctx context.Context, date string) (StatisticsResponse, error)

	// Report tallies each employee's attendance over a date range
	Report(ctx context.Context, req AttendanceReportRequest) (AttendanceReportResponse, error)

	Delete(ctx context.Context, id string) error
}
