/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in the domain layer (leave.Evaluate), not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/workforce-engine/employee"
	"github.com/warp/workforce-engine/leave"
	"github.com/warp/workforce-engine/notify"
	"github.com/warp/workforce-engine/payroll"
	"github.com/warp/workforce-engine/worktime"
)

const dayLayout = "2006-01-02"

// =============================================================================
// EMPLOYEES
// =============================================================================

type EmployeeDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department,omitempty"`
	BaseSalary string `json:"base_salary"`
	HireDate   string `json:"hire_date"`
	CreatedAt  string `json:"created_at,omitempty"`
}

type CreateEmployeeRequest struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	BaseSalary string `json:"base_salary"`
	HireDate   string `json:"hire_date"`
}

// =============================================================================
// LEAVE
// =============================================================================

type BalanceDTO struct {
	Type      string `json:"type"`
	Total     int    `json:"total"`
	Used      int    `json:"used"`
	Pending   int    `json:"pending"`
	Remaining int    `json:"remaining"`
}

// SubmitLeaveRequest is the leave application form payload.
type SubmitLeaveRequest struct {
	LeaveType string `json:"leave_type"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
	Reason    string `json:"reason"`
}

type LeaveRequestDTO struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	EmployeeName    string  `json:"employee_name"`
	LeaveType       string  `json:"leave_type"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	Days            int     `json:"days"`
	Reason          string  `json:"reason"`
	Status          string  `json:"status"`
	ApprovedBy      *string `json:"approved_by,omitempty"`
	ApprovedAt      *string `json:"approved_at,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

type RejectLeaveRequest struct {
	Reason string `json:"reason"`
}

type DecisionRequest struct {
	ActorID string `json:"actor_id"`
}

type HistoryEntryDTO struct {
	ID        string `json:"id"`
	RequestID string `json:"request_id"`
	Action    string `json:"action"`
	LeaveType string `json:"leave_type"`
	Days      int    `json:"days"`
	Actor     string `json:"actor"`
	At        string `json:"at"`
}

// =============================================================================
// ATTENDANCE / WORK TIME
// =============================================================================

type AttendanceDTO struct {
	Date     string  `json:"date"`
	ClockIn  *string `json:"clock_in,omitempty"`
	ClockOut *string `json:"clock_out,omitempty"`
	Status   string  `json:"status"`
	State    string  `json:"state"`
}

// ElapsedDTO is the live work-timer display payload.
type ElapsedDTO struct {
	Display       string `json:"display"` // HH:MM:SS
	ElapsedMs     int64  `json:"elapsed_ms"`
	WeeklyMs      int64  `json:"weekly_ms"`
	CapReached    bool   `json:"cap_reached"`
	SessionState  string `json:"session_state"`
	RefreshedAt   string `json:"refreshed_at,omitempty"`
	LiveRefresher bool   `json:"live_refresher"`
}

// =============================================================================
// PAYROLL
// =============================================================================

type PayrollSummaryDTO struct {
	Month         string `json:"month"`
	Gross         string `json:"gross"`
	UnpaidDays    int    `json:"unpaid_days"`
	Deduction     string `json:"deduction"`
	OvertimeHours string `json:"overtime_hours"`
	OvertimePay   string `json:"overtime_pay"`
	Net           string `json:"net"`
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

type NotificationDTO struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ID string `json:"id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toEmployeeDTO(emp employee.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:         emp.ID,
		Name:       emp.Name,
		Email:      emp.Email,
		Department: emp.Department,
		BaseSalary: emp.BaseSalary.String(),
		HireDate:   emp.HireDate.Format(dayLayout),
		CreatedAt:  emp.CreatedAt.Format(time.RFC3339),
	}
}

func toBalanceDTO(item leave.BalanceItem) BalanceDTO {
	return BalanceDTO{
		Type:      string(item.Type),
		Total:     item.Total,
		Used:      item.Used,
		Pending:   item.Pending,
		Remaining: item.Remaining(),
	}
}

func toLeaveRequestDTO(req leave.Request) LeaveRequestDTO {
	dto := LeaveRequestDTO{
		ID:              req.ID,
		EmployeeID:      req.EmployeeID,
		EmployeeName:    req.EmployeeName,
		LeaveType:       string(req.LeaveType),
		StartDate:       req.StartDate.Format(dayLayout),
		EndDate:         req.EndDate.Format(dayLayout),
		Days:            req.Days,
		Reason:          req.Reason,
		Status:          string(req.Status),
		ApprovedBy:      req.ApprovedBy,
		RejectionReason: req.RejectionReason,
		CreatedAt:       req.CreatedAt.Format(time.RFC3339),
	}
	if req.ApprovedAt != nil {
		v := req.ApprovedAt.Format(time.RFC3339)
		dto.ApprovedAt = &v
	}
	return dto
}

func toLeaveRequestDTOs(reqs []leave.Request) []LeaveRequestDTO {
	dtos := make([]LeaveRequestDTO, len(reqs))
	for i, req := range reqs {
		dtos[i] = toLeaveRequestDTO(req)
	}
	return dtos
}

func toHistoryDTO(entry leave.HistoryEntry) HistoryEntryDTO {
	return HistoryEntryDTO{
		ID:        entry.ID,
		RequestID: entry.RequestID,
		Action:    string(entry.Action),
		LeaveType: string(entry.LeaveType),
		Days:      entry.Days,
		Actor:     entry.Actor,
		At:        entry.At.Format(time.RFC3339),
	}
}

func toAttendanceDTO(rec worktime.Record) AttendanceDTO {
	return AttendanceDTO{
		Date:     rec.Date.Format(dayLayout),
		ClockIn:  rec.ClockIn,
		ClockOut: rec.ClockOut,
		Status:   rec.Status,
		State:    worktime.StateOf(rec).String(),
	}
}

func toPayrollDTO(s payroll.Summary) PayrollSummaryDTO {
	return PayrollSummaryDTO{
		Month:         s.Month,
		Gross:         s.Gross.String(),
		UnpaidDays:    s.UnpaidDays,
		Deduction:     s.Deduction.String(),
		OvertimeHours: s.OvertimeHours.String(),
		OvertimePay:   s.OvertimePay.String(),
		Net:           s.Net.String(),
	}
}

func toNotificationDTO(n notify.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
}
