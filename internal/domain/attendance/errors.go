package attendance

import "github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/apperror"

// Attendance domain errors
var (
	ErrAttendanceNotFound = apperror.New(apperror.KindNotFound, "attendance record not found")
	ErrInvalidMonth       = apperror.New(apperror.KindInvalidMonth, "month must be in YYYY-MM format")
)
