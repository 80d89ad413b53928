/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates employees, balances,
	requests and attendance rows that demonstrate specific features.

AVAILABLE SCENARIOS:

	fresh-team:     Three employees on untouched default entitlements
	busy-quarter:   Part-used balances with pending and decided requests
	mid-week-shift: Open attendance session with banked weekly hours

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create employees with default balances
 3. Seed requests / attendance / weekly progress as needed

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "busy-quarter"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: LoadScenario, ListScenarios handlers
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/workforce-engine/employee"
	"github.com/warp/workforce-engine/leave"
	"github.com/warp/workforce-engine/worktime"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "fresh-team",
		Name:        "Fresh Team",
		Description: "Three employees on untouched default leave entitlements",
	},
	{
		ID:          "busy-quarter",
		Name:        "Busy Quarter",
		Description: "Part-used balances with pending and decided leave requests",
	},
	{
		ID:          "mid-week-shift",
		Name:        "Mid-Week Shift",
		Description: "Open attendance session with banked weekly hours near the cap",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}

	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:          h.currentScenario,
		Name:        h.currentScenario,
		Description: "Currently loaded scenario",
	})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()

	// Reset first. Any live refreshers belong to the old dataset.
	h.Elapsed.StopAll()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	var err error
	switch req.ID {
	case "fresh-team":
		err = h.loadFreshTeamScenario(ctx)
	case "busy-quarter":
		err = h.loadBusyQuarterScenario(ctx)
	case "mid-week-shift":
		err = h.loadMidWeekShiftScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.currentScenario = req.ID
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ID})
}

// ResetDatabase clears all data without loading a scenario.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	h.Elapsed.StopAll()
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) seedEmployee(ctx context.Context, id, name, email, department, salary string, hiredYearsAgo int) error {
	base, err := decimal.NewFromString(salary)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	emp := &employee.Employee{
		ID:         id,
		Name:       name,
		Email:      email,
		Department: department,
		BaseSalary: base,
		HireDate:   now.AddDate(-hiredYearsAgo, 0, 0),
		CreatedAt:  now,
	}
	if err := h.Store.SaveEmployee(ctx, emp); err != nil {
		return err
	}
	for _, item := range leave.DefaultBalances() {
		if err := h.Store.SaveBalance(ctx, id, item); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadFreshTeamScenario(ctx context.Context) error {
	team := []struct {
		id, name, email, department, salary string
		years                               int
	}{
		{"emp-001", "Alice Johnson", "alice@example.com", "Engineering", "5200", 2},
		{"emp-002", "Bob Chen", "bob@example.com", "Engineering", "4800", 1},
		{"emp-003", "Carol Davis", "carol@example.com", "Design", "4500", 3},
	}
	for _, m := range team {
		if err := h.seedEmployee(ctx, m.id, m.name, m.email, m.department, m.salary, m.years); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadBusyQuarterScenario(ctx context.Context) error {
	if err := h.loadFreshTeamScenario(ctx); err != nil {
		return err
	}

	now := time.Now().UTC()

	// Alice: approved annual leave last month, eating into her balance.
	start := leave.DateOnly(now.AddDate(0, -1, 0))
	approved, err := h.Leave.Submit(ctx, "emp-001", leave.Draft{
		LeaveType: leave.TypeAnnual,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 4),
		Reason:    "Family trip",
	})
	if err != nil {
		return err
	}
	if _, err := h.Leave.Approve(ctx, approved.ID, "manager"); err != nil {
		return err
	}

	// Bob: sick leave rejected for missing documentation.
	sick, err := h.Leave.Submit(ctx, "emp-002", leave.Draft{
		LeaveType: leave.TypeSick,
		StartDate: leave.DateOnly(now.AddDate(0, 0, -10)),
		EndDate:   leave.DateOnly(now.AddDate(0, 0, -9)),
		Reason:    "Flu",
	})
	if err != nil {
		return err
	}
	if _, err := h.Leave.Reject(ctx, sick.ID, "manager", "Medical certificate required"); err != nil {
		return err
	}

	// Carol: pending casual leave holding days right now.
	if _, err := h.Leave.Submit(ctx, "emp-003", leave.Draft{
		LeaveType: leave.TypeCasual,
		StartDate: leave.DateOnly(now.AddDate(0, 0, 7)),
		EndDate:   leave.DateOnly(now.AddDate(0, 0, 8)),
		Reason:    "Moving apartment",
	}); err != nil {
		return err
	}

	// Alice again: approved unpaid leave this month, feeds the payroll view.
	unpaid, err := h.Leave.Submit(ctx, "emp-001", leave.Draft{
		LeaveType: leave.TypeUnpaid,
		StartDate: leave.DateOnly(now.AddDate(0, 0, -3)),
		EndDate:   leave.DateOnly(now.AddDate(0, 0, -2)),
		Reason:    "Personal matters",
	})
	if err != nil {
		return err
	}
	_, err = h.Leave.Approve(ctx, unpaid.ID, "manager")
	return err
}

func (h *Handler) loadMidWeekShiftScenario(ctx context.Context) error {
	if err := h.seedEmployee(ctx, "emp-010", "Dana Lee", "dana@example.com", "Support", "4000", 1); err != nil {
		return err
	}

	now := time.Now()

	// Closed sessions banked earlier this week: 8h Monday-equivalent plus a
	// near-cap bank so the freeze behavior is one long session away.
	weekOf := worktime.WeekAnchor(now)
	if err := h.Store.SaveWeekly(ctx, &worktime.WeeklyProgress{
		EmployeeID:  "emp-010",
		WeekOf:      weekOf,
		Accumulated: 32 * time.Hour,
	}); err != nil {
		return err
	}

	// Open session started this morning.
	in := worktime.FormatClock(time.Date(now.Year(), now.Month(), now.Day(), 9, 0, 0, 0, now.Location()))
	if err := h.Store.SaveRecord(ctx, &worktime.Record{
		EmployeeID: "emp-010",
		Date:       time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
		ClockIn:    &in,
		Status:     worktime.StatusPresent,
	}); err != nil {
		return err
	}

	h.Elapsed.StartFor("emp-010")
	return nil
}
