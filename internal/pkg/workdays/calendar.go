package workdays

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

const dateLayout = "2006-01-02"

// Calendar expands the Monday to Friday working week for a month and
// removes configured public holidays.
type Calendar struct {
	holidays []time.Time
}

// NewCalendar parses holidays given as YYYY-MM-DD strings.
func NewCalendar(holidays []string) (*Calendar, error) {
	c := &Calendar{}
	for _, h := range holidays {
		d, err := time.Parse(dateLayout, h)
		if err != nil {
			return nil, fmt.Errorf("invalid holiday %q: %w", h, err)
		}
		c.holidays = append(c.holidays, d)
	}
	return c, nil
}

// MonthStart returns the first day of month ("YYYY-MM") in UTC.
func MonthStart(month string) (time.Time, error) {
	return time.Parse("2006-01", month)
}

// WorkingDays lists the working dates of the month starting at monthStart.
func (c *Calendar) WorkingDays(monthStart time.Time) ([]time.Time, error) {
	start := time.Date(monthStart.Year(), monthStart.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)

	rr, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.DAILY,
		Dtstart:   start,
		Until:     end,
		Byweekday: []rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR},
	})
	if err != nil {
		return nil, fmt.Errorf("build working day rule: %w", err)
	}

	set := rrule.Set{}
	set.RRule(rr)
	for _, h := range c.holidays {
		if h.Year() == start.Year() && h.Month() == start.Month() {
			set.ExDate(h)
		}
	}

	return set.Between(start, end, true), nil
}

// IsWorkingDay reports whether date is in days, comparing calendar dates only.
func IsWorkingDay(days []time.Time, date time.Time) bool {
	key := date.Format(dateLayout)
	for _, d := range days {
		if d.Format(dateLayout) == key {
			return true
		}
	}
	return false
}
