/*
service.go - Monthly payroll assembly

PURPOSE:
  Gathers the calculator's inputs for one employee-month: base salary from
  the directory, approved unpaid days clipped to the month, and banked
  weekly durations whose week starts in the month.
*/
package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/warp/workforce-engine/employee"
	"github.com/warp/workforce-engine/leave"
	"github.com/warp/workforce-engine/worktime"
)

// Service assembles monthly summaries from the domain stores.
type Service struct {
	Calc      Calculator
	Directory employee.Store
	Requests  leave.RequestStore
	Weekly    worktime.Store
}

func NewService(calc Calculator, directory employee.Store, requests leave.RequestStore, weekly worktime.Store) *Service {
	return &Service{Calc: calc, Directory: directory, Requests: requests, Weekly: weekly}
}

// MonthlySummary computes the summary for month in YYYY-MM form.
func (s *Service) MonthlySummary(ctx context.Context, employeeID, month string) (Summary, error) {
	monthStart, err := time.Parse("2006-01", month)
	if err != nil {
		return Summary{}, fmt.Errorf("invalid month %q: %w", month, err)
	}
	monthEnd := monthStart.AddDate(0, 1, -1)

	emp, err := s.Directory.GetEmployee(ctx, employeeID)
	if err != nil {
		return Summary{}, err
	}

	unpaid, err := s.unpaidDays(ctx, employeeID, monthStart, monthEnd)
	if err != nil {
		return Summary{}, err
	}

	// Weeks are keyed by their Monday anchor; bounding by the month itself
	// assigns a boundary-straddling week to exactly one month.
	weeks, err := s.Weekly.ListWeekly(ctx, employeeID, monthStart, monthEnd)
	if err != nil {
		return Summary{}, err
	}
	banked := make([]time.Duration, len(weeks))
	for i, w := range weeks {
		banked[i] = w.Accumulated
	}
	overtime := OvertimeOverCap(banked, s.Calc.WeeklyCap)

	return s.Calc.Compute(month, emp.BaseSalary, unpaid, WorkingDays(monthStart), overtime), nil
}

// unpaidDays counts approved unpaid-leave days clipped to [from, to].
func (s *Service) unpaidDays(ctx context.Context, employeeID string, from, to time.Time) (int, error) {
	reqs, err := s.Requests.ListApprovedInRange(ctx, employeeID, leave.TypeUnpaid, from, to)
	if err != nil {
		return 0, err
	}
	days := 0
	for _, r := range reqs {
		start := r.StartDate
		if start.Before(from) {
			start = from
		}
		end := r.EndDate
		if end.After(to) {
			end = to
		}
		if !end.Before(start) {
			days += leave.RequestedDays(start, end)
		}
	}
	return days, nil
}
