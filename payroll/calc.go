/*
Package payroll computes monthly payroll summaries.

PURPOSE:
  Server-side rendition of the payroll summary view: monthly gross from the
  employee's base salary, a per-day deduction for approved unpaid leave, and
  overtime pay for banked weekly time over the cap.

MONEY:
  All money math uses decimal.Decimal. Division rounds to 2 places at the
  summary boundary only; intermediate figures keep full precision.

SEE ALSO:
  - service.go: Assembles calculator inputs from the stores
*/
package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultOvertimeMultiplier is the pay multiplier for hours over the cap.
var DefaultOvertimeMultiplier = decimal.NewFromFloat(1.5)

const hoursPerWorkday = 8

// Calculator derives a monthly summary from already-aggregated inputs.
type Calculator struct {
	OvertimeMultiplier decimal.Decimal
	WeeklyCap          time.Duration
}

// Summary is one employee-month of payroll.
type Summary struct {
	Month         string // YYYY-MM
	Gross         decimal.Decimal
	UnpaidDays    int
	Deduction     decimal.Decimal
	OvertimeHours decimal.Decimal
	OvertimePay   decimal.Decimal
	Net           decimal.Decimal
}

// Compute builds the summary. workingDays is the number of weekdays in the
// month, the divisor for the per-day rate; overtime is the month's banked
// time over the weekly cap.
func (c Calculator) Compute(month string, baseSalary decimal.Decimal, unpaidDays, workingDays int, overtime time.Duration) Summary {
	if workingDays <= 0 {
		workingDays = 1
	}

	perDay := baseSalary.Div(decimal.NewFromInt(int64(workingDays)))
	deduction := perDay.Mul(decimal.NewFromInt(int64(unpaidDays)))

	hourlyRate := perDay.Div(decimal.NewFromInt(hoursPerWorkday))
	overtimeHours := decimal.NewFromFloat(overtime.Hours())
	overtimePay := hourlyRate.Mul(overtimeHours).Mul(c.multiplier())

	return Summary{
		Month:         month,
		Gross:         baseSalary.Round(2),
		UnpaidDays:    unpaidDays,
		Deduction:     deduction.Round(2),
		OvertimeHours: overtimeHours.Round(2),
		OvertimePay:   overtimePay.Round(2),
		Net:           baseSalary.Sub(deduction).Add(overtimePay).Round(2),
	}
}

func (c Calculator) multiplier() decimal.Decimal {
	if c.OvertimeMultiplier.IsZero() {
		return DefaultOvertimeMultiplier
	}
	return c.OvertimeMultiplier
}

// WorkingDays counts weekdays (Mon-Fri) in the month starting at monthStart.
func WorkingDays(monthStart time.Time) int {
	count := 0
	for d := monthStart; d.Month() == monthStart.Month(); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			count++
		}
	}
	return count
}

// OvertimeOverCap sums banked weekly time exceeding the cap.
func OvertimeOverCap(weeks []time.Duration, cap time.Duration) time.Duration {
	var total time.Duration
	for _, w := range weeks {
		if w > cap {
			total += w - cap
		}
	}
	return total
}
