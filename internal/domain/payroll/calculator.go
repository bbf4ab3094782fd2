package payroll

import (
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// Components are the amounts a net salary is derived from. Overtime and
// Bonus are optional and count as zero when absent.
type Components struct {
	Basic      *decimal.Decimal `json:"basic_salary"`
	HRA        *decimal.Decimal `json:"hra"`
	Allowances *decimal.Decimal `json:"allowances"`
	Overtime   *decimal.Decimal `json:"overtime,omitempty"`
	Bonus      *decimal.Decimal `json:"bonus,omitempty"`
	Deductions *decimal.Decimal `json:"deductions"`
	Tax        *decimal.Decimal `json:"tax"`
}

func (c Components) Validate() error {
	var errs validator.ValidationErrors

	required := func(field string, v *decimal.Decimal) {
		if v == nil {
			errs.Add(field, field+" is required")
			return
		}
		if v.IsNegative() {
			errs.Add(field, field+" must be non-negative")
		}
	}
	optional := func(field string, v *decimal.Decimal) {
		if v != nil && v.IsNegative() {
			errs.Add(field, field+" must be non-negative")
		}
	}

	switch {
	case c.Basic == nil:
		errs.Add("basic_salary", "basic_salary is required")
	case !c.Basic.Round(2).IsPositive():
		errs.Add("basic_salary", "basic_salary must be greater than 0")
	}
	required("hra", c.HRA)
	required("allowances", c.Allowances)
	optional("overtime", c.Overtime)
	optional("bonus", c.Bonus)
	required("deductions", c.Deductions)
	required("tax", c.Tax)

	return errs.Err()
}

// ComputeNetSalary returns basic + hra + allowances + overtime + bonus
// - deductions - tax over the components rounded to 2 decimal places, so
// the net always equals the formula applied to what gets stored. The
// result may be negative when deductions exceed earnings.
func ComputeNetSalary(c Components) (decimal.Decimal, error) {
	if err := c.Validate(); err != nil {
		return decimal.Zero, err
	}

	c = c.Round()
	earnings := decimal.Sum(*c.Basic, *c.HRA, *c.Allowances, valueOrZero(c.Overtime), valueOrZero(c.Bonus))
	return earnings.Sub(*c.Deductions).Sub(*c.Tax), nil
}

// Round returns c with every set component rounded to 2 decimal places.
func (c Components) Round() Components {
	round := func(v *decimal.Decimal) *decimal.Decimal {
		if v == nil {
			return nil
		}
		r := v.Round(2)
		return &r
	}
	return Components{
		Basic:      round(c.Basic),
		HRA:        round(c.HRA),
		Allowances: round(c.Allowances),
		Overtime:   round(c.Overtime),
		Bonus:      round(c.Bonus),
		Deductions: round(c.Deductions),
		Tax:        round(c.Tax),
	}
}

// Merge returns c with every non-nil field of patch written over it.
func (c Components) Merge(patch Components) Components {
	pick := func(cur, next *decimal.Decimal) *decimal.Decimal {
		if next != nil {
			return next
		}
		return cur
	}
	return Components{
		Basic:      pick(c.Basic, patch.Basic),
		HRA:        pick(c.HRA, patch.HRA),
		Allowances: pick(c.Allowances, patch.Allowances),
		Overtime:   pick(c.Overtime, patch.Overtime),
		Bonus:      pick(c.Bonus, patch.Bonus),
		Deductions: pick(c.Deductions, patch.Deductions),
		Tax:        pick(c.Tax, patch.Tax),
	}
}

// IsEmpty reports whether no component is set.
func (c Components) IsEmpty() bool {
	return c.Basic == nil && c.HRA == nil && c.Allowances == nil && c.Overtime == nil &&
		c.Bonus == nil && c.Deductions == nil && c.Tax == nil
}

func valueOrZero(v *decimal.Decimal) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return *v
}
