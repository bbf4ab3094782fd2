package attendance

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type UpsertAttendanceRequest struct {
	EmployeeID    string           `json:"employee_id" validate:"required"`
	Date          string           `json:"date" validate:"required,date"`
	Status        string           `json:"status" validate:"required"`
	HoursWorked   *decimal.Decimal `json:"hours_worked,omitempty"`
	CheckIn       *string          `json:"check_in,omitempty"`
	CheckOut      *string          `json:"check_out,omitempty"`
	OvertimeHours *decimal.Decimal `json:"overtime_hours,omitempty"`
	Remarks       *string          `json:"remarks,omitempty"`
}

var clockRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

func (r *UpsertAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors
	if err := validator.Struct(r); err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		errs = append(errs, fieldErrs...)
	}

	if !validator.IsEmpty(r.Status) && !Status(r.Status).Valid() {
		errs.Add("status", "status must be one of: Present, Absent, Late, Half Day, Work From Home")
	}
	if r.HoursWorked != nil && r.HoursWorked.IsNegative() {
		errs.Add("hours_worked", "hours_worked must be non-negative")
	}
	if r.OvertimeHours != nil && r.OvertimeHours.IsNegative() {
		errs.Add("overtime_hours", "overtime_hours must be non-negative")
	}
	if r.CheckIn != nil && !clockRegex.MatchString(*r.CheckIn) {
		errs.Add("check_in", "check_in must be in HH:MM format")
	}
	if r.CheckOut != nil && !clockRegex.MatchString(*r.CheckOut) {
		errs.Add("check_out", "check_out must be in HH:MM format")
	}

	return errs.Err()
}

// ToRecord converts a validated request into a Record.
func (r *UpsertAttendanceRequest) ToRecord() Record {
	date, _ := validator.IsValidDate(r.Date)
	rec := Record{
		EmployeeID:    strings.TrimSpace(r.EmployeeID),
		Date:          date,
		Status:        Status(r.Status),
		HoursWorked:   decimal.Zero,
		OvertimeHours: decimal.Zero,
		CheckIn:       r.CheckIn,
		CheckOut:      r.CheckOut,
		Remarks:       r.Remarks,
	}
	if r.HoursWorked != nil {
		rec.HoursWorked = *r.HoursWorked
	}
	if r.OvertimeHours != nil {
		rec.OvertimeHours = *r.OvertimeHours
	}
	return rec
}

type BulkUpsertAttendanceRequest struct {
	Records []UpsertAttendanceRequest `json:"records"`
}

func (r *BulkUpsertAttendanceRequest) Validate() error {
	if len(r.Records) == 0 {
		return validator.ValidationErrors{{Field: "records", Message: "at least one record is required"}}
	}
	return nil
}

type AttendanceResponse struct {
	ID            string          `json:"id"`
	EmployeeID    string          `json:"employee_id"`
	EmployeeName  *string         `json:"employee_name,omitempty"`
	Date          string          `json:"date"`
	Status        Status          `json:"status"`
	HoursWorked   decimal.Decimal `json:"hours_worked"`
	CheckIn       *string         `json:"check_in,omitempty"`
	CheckOut      *string         `json:"check_out,omitempty"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
	Remarks       *string         `json:"remarks,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type UpsertAttendanceResponse struct {
	Attendance AttendanceResponse `json:"attendance"`
	Created    bool               `json:"created"`
}

// BulkFailure describes one rejected item of a bulk upsert.
type BulkFailure struct {
	Index      int    `json:"index"`
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Kind       string `json:"kind"`
	Message    string `json:"message"`
}

type BulkUpsertAttendanceResponse struct {
	Created int           `json:"created"`
	Updated int           `json:"updated"`
	Failed  []BulkFailure `json:"failed"`
	Total   int           `json:"total"`
	// Interrupted is set when the caller went away mid-batch; the items
	// never attempted are listed in Failed.
	Interrupted bool `json:"interrupted,omitempty"`
}

type StatisticsResponse struct {
	Date              string          `json:"date"`
	TotalEmployees    int             `json:"total_employees"`
	PresentCount      int             `json:"present_count"`
	AbsentCount       int             `json:"absent_count"`
	LateCount         int             `json:"late_count"`
	HalfDayCount      int             `json:"half_day_count"`
	WorkFromHomeCount int             `json:"wfh_count"`
	AttendanceRate    decimal.Decimal `json:"attendance_rate"`
	MarkedAttendance  int             `json:"marked_attendance"`
	PendingAttendance int             `json:"pending_attendance"`
}

// AttendanceReportRequest selects the days from..to, both inclusive, and
// optionally a single employee.
type AttendanceReportRequest struct {
	From       string
	To         string
	EmployeeID string
}

func (r *AttendanceReportRequest) Validate() error {
	var errs validator.ValidationErrors

	from, fromOK := validator.IsValidDate(r.From)
	if !fromOK {
		errs.Add("from", "from must be in YYYY-MM-DD format")
	}
	to, toOK := validator.IsValidDate(r.To)
	if !toOK {
		errs.Add("to", "to must be in YYYY-MM-DD format")
	}
	if fromOK && toOK && to.Before(from) {
		errs.Add("to", "to must not be before from")
	}

	return errs.Err()
}

type EmployeeAttendanceReport struct {
	EmployeeID    string          `json:"employee_id"`
	EmployeeName  *string         `json:"employee_name,omitempty"`
	MarkedDays    int             `json:"marked_days"`
	PresentDays   int             `json:"present_days"`
	AbsentDays    int             `json:"absent_days"`
	LateDays      int             `json:"late_days"`
	HalfDays      int             `json:"half_days"`
	WorkFromHome  int             `json:"wfh_days"`
	HoursWorked   decimal.Decimal `json:"hours_worked"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
	// AttendanceRate is the presence-weighted share of marked days, in
	// percent.
	AttendanceRate decimal.Decimal `json:"attendance_rate"`
}

type AttendanceReportResponse struct {
	From         string                     `json:"from"`
	To           string                     `json:"to"`
	TotalRecords int                        `json:"total_records"`
	Employees    []EmployeeAttendanceReport `json:"employees"`
}

// BuildReport folds records into one row per employee, ordered by
// employee id.
func BuildReport(records []Record) []EmployeeAttendanceReport {
	rows := map[string]*EmployeeAttendanceReport{}
	weights := map[string]decimal.Decimal{}
	ids := []string{}
	for _, rec := range records {
		row, ok := rows[rec.EmployeeID]
		if !ok {
			row = &EmployeeAttendanceReport{
				EmployeeID:     rec.EmployeeID,
				EmployeeName:   rec.EmployeeName,
				HoursWorked:    decimal.Zero,
				OvertimeHours:  decimal.Zero,
				AttendanceRate: decimal.Zero,
			}
			rows[rec.EmployeeID] = row
			ids = append(ids, rec.EmployeeID)
		}
		row.MarkedDays++
		switch rec.Status {
		case StatusPresent:
			row.PresentDays++
		case StatusWorkFromHome:
			row.PresentDays++
			row.WorkFromHome++
		case StatusAbsent:
			row.AbsentDays++
		case StatusLate:
			row.LateDays++
		case StatusHalfDay:
			row.HalfDays++
		}
		row.HoursWorked = row.HoursWorked.Add(rec.HoursWorked)
		row.OvertimeHours = row.OvertimeHours.Add(rec.OvertimeHours)
		weights[rec.EmployeeID] = weights[rec.EmployeeID].Add(rec.Status.PresenceWeight())
	}

	sort.Strings(ids)
	out := make([]EmployeeAttendanceReport, 0, len(ids))
	for _, id := range ids {
		row := rows[id]
		row.AttendanceRate = weights[id].
			Div(decimal.NewFromInt(int64(row.MarkedDays))).
			Mul(decimal.NewFromInt(100)).
			Round(2)
		out = append(out, *row)
	}
	return out
}

func ToAttendanceResponse(r Record) AttendanceResponse {
	return AttendanceResponse{
		ID:            r.ID,
		EmployeeID:    r.EmployeeID,
		EmployeeName:  r.EmployeeName,
		Date:          r.Date.Format("2006-01-02"),
		Status:        r.Status,
		HoursWorked:   r.HoursWorked,
		CheckIn:       r.CheckIn,
		CheckOut:      r.CheckOut,
		OvertimeHours: r.OvertimeHours,
		Remarks:       r.Remarks,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
