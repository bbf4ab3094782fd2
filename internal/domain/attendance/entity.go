package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPresent      Status = "Present"
	StatusAbsent       Status = "Absent"
	StatusLate         Status = "Late"
	StatusHalfDay      Status = "Half Day"
	StatusWorkFromHome Status = "Work From Home"
)

var Statuses = []Status{StatusPresent, StatusAbsent, StatusLate, StatusHalfDay, StatusWorkFromHome}

func (s Status) Valid() bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}

// PresenceWeight is how much of a day the status counts as present.
func (s Status) PresenceWeight() decimal.Decimal {
	switch s {
	case StatusPresent, StatusLate, StatusWorkFromHome:
		return decimal.NewFromInt(1)
	case StatusHalfDay:
		return decimal.NewFromFloat(0.5)
	default:
		return decimal.Zero
	}
}

// Record is one employee's attendance for one date. (EmployeeID, Date)
// is the natural key.
type Record struct {
	ID            string
	EmployeeID    string
	Date          time.Time
	Status        Status
	HoursWorked   decimal.Decimal
	CheckIn       *string // HH:MM
	CheckOut      *string // HH:MM
	OvertimeHours decimal.Decimal
	Remarks       *string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Joined fields
	EmployeeName *string
}
