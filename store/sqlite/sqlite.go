/*
Package sqlite provides the SQLite-backed implementation of the domain
storage interfaces.

PURPOSE:
  Implements the employee, leave, worktime and notification store surfaces
  on a single SQLite database. In production the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  employees:       Directory entries (base salary stored as decimal text)
  leave_balances:  total/used/pending counters per employee and leave type
  leave_requests:  Request rows with status lifecycle
  leave_history:   Append-only audit trail (no UPDATE/DELETE paths)
  attendance:      One row per employee-day, wall-clock strings
  weekly_progress: Banked milliseconds per employee and Monday key
  notifications:   Rows behind the UI notification list

WAL MODE:
  The database is opened with WAL for better read concurrency; a
  sync.RWMutex serializes writers within the process.

USAGE:
  store, err := sqlite.New("./data/workforce.db")   // or ":memory:"
  defer store.Close()

SEE ALSO:
  - store/memory: In-memory implementation of the same interfaces
  - leave/store.go, worktime/service.go: Interface definitions
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/workforce-engine/employee"
	"github.com/warp/workforce-engine/leave"
	"github.com/warp/workforce-engine/notify"
	"github.com/warp/workforce-engine/worktime"
)

const (
	dayLayout  = "2006-01-02"
	timeLayout = time.RFC3339
)

// Store implements every domain storage interface on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		department TEXT,
		base_salary TEXT NOT NULL DEFAULT '0',
		hire_date TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS leave_balances (
		employee_id TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		total INTEGER NOT NULL DEFAULT 0,
		used INTEGER NOT NULL DEFAULT 0,
		pending INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (employee_id, leave_type)
	);

	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		employee_name TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		days INTEGER NOT NULL,
		reason TEXT NOT NULL,
		status TEXT NOT NULL,
		approved_by TEXT,
		approved_at TEXT,
		rejection_reason TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_requests_employee ON leave_requests(employee_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_requests_status ON leave_requests(status, created_at);

	-- Append-only: no UPDATE or DELETE statements exist for this table.
	CREATE TABLE IF NOT EXISTS leave_history (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		request_id TEXT NOT NULL,
		action TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		days INTEGER NOT NULL,
		actor TEXT NOT NULL,
		at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_history_employee ON leave_history(employee_id, at);

	CREATE TABLE IF NOT EXISTS attendance (
		employee_id TEXT NOT NULL,
		date TEXT NOT NULL,
		clock_in TEXT,
		clock_out TEXT,
		status TEXT NOT NULL,
		PRIMARY KEY (employee_id, date)
	);

	CREATE TABLE IF NOT EXISTS weekly_progress (
		employee_id TEXT NOT NULL,
		week_of TEXT NOT NULL,
		accumulated_ms INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (employee_id, week_of)
	);

	CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		read INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_notifications_employee ON notifications(employee_id, created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Reset drops all rows. Used by the scenario loader.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, table := range []string{
		"employees", "leave_balances", "leave_requests",
		"leave_history", "attendance", "weekly_progress", "notifications",
	} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// EMPLOYEE DIRECTORY
// =============================================================================

func (s *Store) SaveEmployee(ctx context.Context, emp *employee.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, email, department, base_salary, hire_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			department = excluded.department,
			base_salary = excluded.base_salary,
			hire_date = excluded.hire_date`,
		emp.ID, emp.Name, emp.Email, emp.Department,
		emp.BaseSalary.String(), emp.HireDate.Format(dayLayout),
		emp.CreatedAt.Format(timeLayout))
	return err
}

func (s *Store) GetEmployee(ctx context.Context, id string) (*employee.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, department, base_salary, hire_date, created_at
		FROM employees WHERE id = ?`, id)
	emp, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, employee.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return emp, nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]employee.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, department, base_salary, hire_date, created_at
		FROM employees ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *emp)
	}
	return result, rows.Err()
}

// EmployeeName satisfies leave.EmployeeDirectory.
func (s *Store) EmployeeName(ctx context.Context, id string) (string, error) {
	emp, err := s.GetEmployee(ctx, id)
	if err != nil {
		return "", err
	}
	return emp.Name, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (*employee.Employee, error) {
	var emp employee.Employee
	var salary, hireDate, createdAt string
	var department sql.NullString
	if err := row.Scan(&emp.ID, &emp.Name, &emp.Email, &department, &salary, &hireDate, &createdAt); err != nil {
		return nil, err
	}
	emp.Department = department.String
	emp.BaseSalary, _ = decimal.NewFromString(salary)
	emp.HireDate, _ = time.Parse(dayLayout, hireDate)
	emp.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	return &emp, nil
}

// =============================================================================
// LEAVE BALANCES
// =============================================================================

func (s *Store) Balances(ctx context.Context, employeeID string) ([]leave.BalanceItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM employees WHERE id = ?`, employeeID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, leave.ErrEmployeeNotFound
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT leave_type, total, used, pending
		FROM leave_balances WHERE employee_id = ?`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byType := make(map[leave.Type]leave.BalanceItem)
	for rows.Next() {
		var item leave.BalanceItem
		if err := rows.Scan(&item.Type, &item.Total, &item.Used, &item.Pending); err != nil {
			return nil, err
		}
		byType[item.Type] = item
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Stable display order regardless of insertion order.
	var result []leave.BalanceItem
	for _, t := range leave.Types() {
		if item, ok := byType[t]; ok {
			result = append(result, item)
		}
	}
	return result, nil
}

func (s *Store) SaveBalance(ctx context.Context, employeeID string, item leave.BalanceItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_balances (employee_id, leave_type, total, used, pending)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, leave_type) DO UPDATE SET
			total = excluded.total,
			used = excluded.used,
			pending = excluded.pending`,
		employeeID, item.Type, item.Total, item.Used, item.Pending)
	return err
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

func (s *Store) SaveRequest(ctx context.Context, req *leave.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var approvedAt *string
	if req.ApprovedAt != nil {
		v := req.ApprovedAt.Format(timeLayout)
		approvedAt = &v
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_requests
			(id, employee_id, employee_name, leave_type, start_date, end_date,
			 days, reason, status, approved_by, approved_at, rejection_reason,
			 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			approved_by = excluded.approved_by,
			approved_at = excluded.approved_at,
			rejection_reason = excluded.rejection_reason,
			updated_at = excluded.updated_at`,
		req.ID, req.EmployeeID, req.EmployeeName, req.LeaveType,
		req.StartDate.Format(dayLayout), req.EndDate.Format(dayLayout),
		req.Days, req.Reason, req.Status, req.ApprovedBy, approvedAt,
		req.RejectionReason,
		req.CreatedAt.Format(timeLayout), req.UpdatedAt.Format(timeLayout))
	return err
}

func (s *Store) GetRequest(ctx context.Context, id string) (*leave.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, requestColumns+` WHERE id = ?`, id)
	req, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, leave.ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (s *Store) ListRequests(ctx context.Context, employeeID string) ([]leave.Request, error) {
	return s.listRequests(ctx, requestColumns+` WHERE employee_id = ? ORDER BY created_at, id`, employeeID)
}

func (s *Store) ListPending(ctx context.Context) ([]leave.Request, error) {
	return s.listRequests(ctx, requestColumns+` WHERE status = ? ORDER BY created_at, id`, string(leave.StatusPending))
}

func (s *Store) ListApprovedInRange(ctx context.Context, employeeID string, leaveType leave.Type, from, to time.Time) ([]leave.Request, error) {
	return s.listRequests(ctx, requestColumns+`
		WHERE employee_id = ? AND leave_type = ? AND status = ?
		  AND end_date >= ? AND start_date <= ?
		ORDER BY start_date`,
		employeeID, string(leaveType), string(leave.StatusApproved),
		from.Format(dayLayout), to.Format(dayLayout))
}

const requestColumns = `
	SELECT id, employee_id, employee_name, leave_type, start_date, end_date,
	       days, reason, status, approved_by, approved_at, rejection_reason,
	       created_at, updated_at
	FROM leave_requests`

func (s *Store) listRequests(ctx context.Context, query string, args ...any) ([]leave.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []leave.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *req)
	}
	return result, rows.Err()
}

func scanRequest(row scanner) (*leave.Request, error) {
	var req leave.Request
	var startDate, endDate, createdAt, updatedAt string
	var approvedBy, approvedAt, rejectionReason sql.NullString

	err := row.Scan(&req.ID, &req.EmployeeID, &req.EmployeeName, &req.LeaveType,
		&startDate, &endDate, &req.Days, &req.Reason, &req.Status,
		&approvedBy, &approvedAt, &rejectionReason, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	req.StartDate, _ = time.Parse(dayLayout, startDate)
	req.EndDate, _ = time.Parse(dayLayout, endDate)
	req.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	req.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
	if approvedBy.Valid {
		req.ApprovedBy = &approvedBy.String
	}
	if approvedAt.Valid {
		if t, err := time.Parse(timeLayout, approvedAt.String); err == nil {
			req.ApprovedAt = &t
		}
	}
	if rejectionReason.Valid {
		req.RejectionReason = &rejectionReason.String
	}
	return &req, nil
}

// =============================================================================
// LEAVE HISTORY - append-only
// =============================================================================

func (s *Store) AppendHistory(ctx context.Context, entry leave.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_history (id, employee_id, request_id, action, leave_type, days, actor, at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.EmployeeID, entry.RequestID, entry.Action,
		entry.LeaveType, entry.Days, entry.Actor, entry.At.Format(timeLayout))
	return err
}

func (s *Store) History(ctx context.Context, employeeID string) ([]leave.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, request_id, action, leave_type, days, actor, at
		FROM leave_history WHERE employee_id = ? ORDER BY at, id`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []leave.HistoryEntry
	for rows.Next() {
		var entry leave.HistoryEntry
		var at string
		if err := rows.Scan(&entry.ID, &entry.EmployeeID, &entry.RequestID,
			&entry.Action, &entry.LeaveType, &entry.Days, &entry.Actor, &at); err != nil {
			return nil, err
		}
		entry.At, _ = time.Parse(timeLayout, at)
		result = append(result, entry)
	}
	return result, rows.Err()
}

// =============================================================================
// ATTENDANCE
// =============================================================================

func (s *Store) GetRecord(ctx context.Context, employeeID string, date time.Time) (*worktime.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT employee_id, date, clock_in, clock_out, status
		FROM attendance WHERE employee_id = ? AND date = ?`,
		employeeID, date.Format(dayLayout))

	var rec worktime.Record
	var day string
	var clockIn, clockOut sql.NullString
	err := row.Scan(&rec.EmployeeID, &day, &clockIn, &clockOut, &rec.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rec.Date, _ = time.Parse(dayLayout, day)
	if clockIn.Valid {
		rec.ClockIn = &clockIn.String
	}
	if clockOut.Valid {
		rec.ClockOut = &clockOut.String
	}
	return &rec, nil
}

func (s *Store) SaveRecord(ctx context.Context, rec *worktime.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance (employee_id, date, clock_in, clock_out, status)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, date) DO UPDATE SET
			clock_in = excluded.clock_in,
			clock_out = excluded.clock_out,
			status = excluded.status`,
		rec.EmployeeID, rec.Date.Format(dayLayout), rec.ClockIn, rec.ClockOut, rec.Status)
	return err
}

func (s *Store) GetWeekly(ctx context.Context, employeeID string, weekOf time.Time) (*worktime.WeeklyProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT accumulated_ms FROM weekly_progress
		WHERE employee_id = ? AND week_of = ?`,
		employeeID, weekOf.Format(dayLayout))

	var ms int64
	err := row.Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &worktime.WeeklyProgress{
		EmployeeID:  employeeID,
		WeekOf:      weekOf,
		Accumulated: time.Duration(ms) * time.Millisecond,
	}, nil
}

func (s *Store) SaveWeekly(ctx context.Context, wp *worktime.WeeklyProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO weekly_progress (employee_id, week_of, accumulated_ms)
		VALUES (?, ?, ?)
		ON CONFLICT(employee_id, week_of) DO UPDATE SET
			accumulated_ms = excluded.accumulated_ms`,
		wp.EmployeeID, wp.WeekOf.Format(dayLayout), wp.Accumulated.Milliseconds())
	return err
}

func (s *Store) ListWeekly(ctx context.Context, employeeID string, from, to time.Time) ([]worktime.WeeklyProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT week_of, accumulated_ms FROM weekly_progress
		WHERE employee_id = ? AND week_of >= ? AND week_of <= ?
		ORDER BY week_of`,
		employeeID, from.Format(dayLayout), to.Format(dayLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []worktime.WeeklyProgress
	for rows.Next() {
		var weekOf string
		var ms int64
		if err := rows.Scan(&weekOf, &ms); err != nil {
			return nil, err
		}
		wp := worktime.WeeklyProgress{
			EmployeeID:  employeeID,
			Accumulated: time.Duration(ms) * time.Millisecond,
		}
		wp.WeekOf, _ = time.Parse(dayLayout, weekOf)
		result = append(result, wp)
	}
	return result, rows.Err()
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

func (s *Store) SaveNotification(ctx context.Context, n *notify.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, employee_id, title, message, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, n.EmployeeID, n.Title, n.Message, boolToInt(n.Read),
		n.CreatedAt.Format(timeLayout))
	return err
}

func (s *Store) ListNotifications(ctx context.Context, employeeID string) ([]notify.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, title, message, read, created_at
		FROM notifications WHERE employee_id = ? ORDER BY created_at, id`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []notify.Notification
	for rows.Next() {
		var n notify.Notification
		var read int
		var createdAt string
		if err := rows.Scan(&n.ID, &n.EmployeeID, &n.Title, &n.Message, &read, &createdAt); err != nil {
			return nil, err
		}
		n.Read = read != 0
		n.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		result = append(result, n)
	}
	return result, rows.Err()
}

func (s *Store) MarkRead(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `UPDATE notifications SET read = 1 WHERE id = ?`, id)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
