/*
handlers.go - HTTP API handlers for the workforce engine

PURPOSE:
  Exposes the leave, worktime, payroll and notification domains via REST.
  Handles HTTP request/response, JSON serialization, and delegates to the
  domain services.

ENDPOINTS:
  Employees:
    GET    /api/employees                     List all employees
    POST   /api/employees                     Create employee (with default balances)
    GET    /api/employees/{id}                Get employee details
    GET    /api/employees/{id}/balances       Leave balances
    GET    /api/employees/{id}/history        Leave audit trail

  Leave requests:
    POST   /api/employees/{id}/requests       Submit a leave request
    GET    /api/employees/{id}/requests       List the employee's requests
    GET    /api/requests/pending              All pending requests
    POST   /api/requests/{id}/approve         Approve
    POST   /api/requests/{id}/reject          Reject
    POST   /api/requests/{id}/cancel          Cancel

  Attendance:
    POST   /api/employees/{id}/attendance/clock-in
    POST   /api/employees/{id}/attendance/clock-out
    GET    /api/employees/{id}/attendance/today
    GET    /api/employees/{id}/attendance/elapsed

  Payroll:
    GET    /api/employees/{id}/payroll?month=YYYY-MM

  Notifications:
    GET    /api/employees/{id}/notifications
    POST   /api/notifications/{id}/read

  Scenarios:
    GET    /api/scenarios                     List demo scenarios
    POST   /api/scenarios/load                Load a demo scenario
    POST   /api/scenarios/reset               Reset the database

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed input (bad JSON, bad dates)
  - 404: Resource not found
  - 409: Invalid state transition (double clock-in, deciding a decided request)
  - 422: Admission failures from leave.Evaluate (rendered inline by the form)
  - 500: Internal errors

SEE ALSO:
  - dto.go:       Request/response data structures
  - elapsed.go:   Live work-timer hub
  - scenarios.go: Demo scenario loaders
  - server.go:    Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/workforce-engine/employee"
	"github.com/warp/workforce-engine/leave"
	"github.com/warp/workforce-engine/notify"
	"github.com/warp/workforce-engine/payroll"
	"github.com/warp/workforce-engine/worktime"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is the composite persistence surface the API needs. Both
// store/sqlite and store/memory satisfy it.
type Store interface {
	employee.Store
	leave.Store
	worktime.Store
	notify.Store

	EmployeeName(ctx context.Context, id string) (string, error)
	Reset(ctx context.Context) error
	Close() error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    Store
	Leave    *leave.Service
	Worktime *worktime.Service
	Payroll  *payroll.Service
	Notify   *notify.Service
	Elapsed  *ElapsedHub

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler wires the domain services around the store.
func NewHandler(store Store, weeklyCap time.Duration, overtimeMultiplier decimal.Decimal) *Handler {
	notifier := notify.NewService(store)
	wt := worktime.NewService(store, weeklyCap)
	calc := payroll.Calculator{OvertimeMultiplier: overtimeMultiplier, WeeklyCap: wt.WeeklyCap}

	return &Handler{
		Store:    store,
		Leave:    leave.NewService(store, store, notifier),
		Worktime: wt,
		Payroll:  payroll.NewService(calc, store, store, store),
		Notify:   notifier,
		Elapsed:  NewElapsedHub(wt),
	}
}

// Shutdown stops background refreshers. Called on server teardown.
func (h *Handler) Shutdown() {
	h.Elapsed.StopAll()
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, emp := range employees {
		dtos[i] = toEmployeeDTO(emp)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Store.GetEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "name and email are required", nil)
		return
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	salary := decimal.Zero
	if req.BaseSalary != "" {
		var err error
		if salary, err = decimal.NewFromString(req.BaseSalary); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid base_salary", err)
			return
		}
	}
	hireDate := time.Now().UTC()
	if req.HireDate != "" {
		var err error
		if hireDate, err = time.Parse(dayLayout, req.HireDate); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid hire_date", err)
			return
		}
	}

	ctx := r.Context()
	emp := &employee.Employee{
		ID:         id,
		Name:       req.Name,
		Email:      req.Email,
		Department: req.Department,
		BaseSalary: salary,
		HireDate:   hireDate,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.Store.SaveEmployee(ctx, emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save employee", err)
		return
	}

	// New employees start with the standard entitlements.
	for _, item := range leave.DefaultBalances() {
		if err := h.Store.SaveBalance(ctx, id, item); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to seed balances", err)
			return
		}
	}

	writeJSON(w, http.StatusCreated, toEmployeeDTO(*emp))
}

// =============================================================================
// LEAVE HANDLERS
// =============================================================================

func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.Leave.Balances(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]BalanceDTO, len(balances))
	for i, item := range balances {
		dtos[i] = toBalanceDTO(item)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SubmitLeave handles the leave application form.
func (h *Handler) SubmitLeave(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	var req SubmitLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	draft := leave.Draft{
		LeaveType: leave.Type(req.LeaveType),
		Reason:    req.Reason,
	}
	// Unparseable dates stay zero and fail admission as incomplete,
	// matching the form's behavior of treating them as unset.
	if req.StartDate != "" {
		t, err := time.Parse(dayLayout, req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start_date", err)
			return
		}
		draft.StartDate = t
	}
	if req.EndDate != "" {
		t, err := time.Parse(dayLayout, req.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end_date", err)
			return
		}
		draft.EndDate = t
	}

	created, err := h.Leave.Submit(r.Context(), employeeID, draft)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeaveRequestDTO(*created))
}

func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.Leave.Requests(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveRequestDTOs(reqs))
}

func (h *Handler) ListPendingRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.Leave.Pending(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list pending requests", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveRequestDTOs(reqs))
}

func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	var body DecisionRequest
	_ = json.NewDecoder(r.Body).Decode(&body)
	actor := body.ActorID
	if actor == "" {
		actor = "manager"
	}

	req, err := h.Leave.Approve(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveRequestDTO(*req))
}

func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	var body RejectLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if body.Reason == "" {
		writeError(w, http.StatusBadRequest, "reason is required", nil)
		return
	}

	req, err := h.Leave.Reject(r.Context(), chi.URLParam(r, "id"), "manager", body.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveRequestDTO(*req))
}

func (h *Handler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	req, err := h.Leave.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveRequestDTO(*req))
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Leave.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]HistoryEntryDTO, len(entries))
	for i, entry := range entries {
		dtos[i] = toHistoryDTO(entry)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

func (h *Handler) ClockIn(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	rec, err := h.Worktime.ClockIn(r.Context(), employeeID, time.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// The open session owns exactly one refresher from here until
	// clock-out or shutdown.
	h.Elapsed.StartFor(employeeID)
	writeJSON(w, http.StatusCreated, toAttendanceDTO(*rec))
}

func (h *Handler) ClockOut(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	rec, err := h.Worktime.ClockOut(r.Context(), employeeID, time.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.Elapsed.StopFor(employeeID)
	writeJSON(w, http.StatusOK, toAttendanceDTO(*rec))
}

func (h *Handler) GetToday(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Worktime.Today(r.Context(), chi.URLParam(r, "id"), time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load attendance", err)
		return
	}
	writeJSON(w, http.StatusOK, toAttendanceDTO(rec))
}

func (h *Handler) GetElapsed(w http.ResponseWriter, r *http.Request) {
	dto, err := h.Elapsed.Snapshot(r.Context(), chi.URLParam(r, "id"), time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute elapsed time", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// PAYROLL HANDLERS
// =============================================================================

func (h *Handler) GetPayroll(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		month = time.Now().Format("2006-01")
	}

	summary, err := h.Payroll.MonthlySummary(r.Context(), chi.URLParam(r, "id"), month)
	if err != nil {
		if errors.Is(err, employee.ErrNotFound) {
			writeDomainError(w, err)
			return
		}
		writeError(w, http.StatusBadRequest, "Failed to compute payroll summary", err)
		return
	}
	writeJSON(w, http.StatusOK, toPayrollDTO(summary))
}

// =============================================================================
// NOTIFICATION HANDLERS
// =============================================================================

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	items, err := h.Notify.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list notifications", err)
		return
	}

	dtos := make([]NotificationDTO, len(items))
	for i, n := range items {
		dtos[i] = toNotificationDTO(n)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := h.Notify.MarkRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to mark notification read", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors onto HTTP statuses and the error
// codes the form renders inline.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, leave.ErrIncompleteRequest):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error: "Please fill in all fields", Code: "incomplete_request"})
	case errors.Is(err, leave.ErrInvertedDateRange):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error: "End date cannot be before start date", Code: "inverted_date_range"})
	case errors.Is(err, leave.ErrInsufficientBalance):
		var insufficient *leave.InsufficientBalanceError
		resp := ErrorResponse{Error: "Insufficient leave balance", Code: "insufficient_balance"}
		if errors.As(err, &insufficient) {
			resp.Error = fmt.Sprintf("Insufficient leave balance. You have %d days of %s remaining.",
				insufficient.Remaining, insufficient.LeaveType)
			resp.Details = map[string]any{
				"leave_type": string(insufficient.LeaveType),
				"remaining":  insufficient.Remaining,
				"requested":  insufficient.Requested,
			}
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
	case errors.Is(err, leave.ErrNotPending):
		writeError(w, http.StatusConflict, "Request has already been decided", err)
	case errors.Is(err, worktime.ErrAlreadyClockedIn):
		writeError(w, http.StatusConflict, "Already clocked in today", err)
	case errors.Is(err, worktime.ErrNotClockedIn):
		writeError(w, http.StatusConflict, "No open session to clock out of", err)
	case leave.IsNotFound(err), errors.Is(err, employee.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
