// Package memory provides the in-memory store implementation used by tests
// and -db=:memory: style development runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/workforce-engine/employee"
	"github.com/warp/workforce-engine/leave"
	"github.com/warp/workforce-engine/notify"
	"github.com/warp/workforce-engine/worktime"
)

// =============================================================================
// MEMORY STORE - single-process implementation of every domain store
// =============================================================================

type Store struct {
	mu sync.RWMutex

	employees     map[string]employee.Employee
	balances      map[string]map[leave.Type]leave.BalanceItem
	requests      map[string]leave.Request
	history       map[string][]leave.HistoryEntry
	records       map[dayKey]worktime.Record
	weekly        map[weekKey]worktime.WeeklyProgress
	notifications map[string][]notify.Notification
}

type dayKey struct {
	EmployeeID string
	Date       string // YYYY-MM-DD
}

type weekKey struct {
	EmployeeID string
	WeekOf     string // YYYY-MM-DD, Monday
}

func New() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.employees = make(map[string]employee.Employee)
	s.balances = make(map[string]map[leave.Type]leave.BalanceItem)
	s.requests = make(map[string]leave.Request)
	s.history = make(map[string][]leave.HistoryEntry)
	s.records = make(map[dayKey]worktime.Record)
	s.weekly = make(map[weekKey]worktime.WeeklyProgress)
	s.notifications = make(map[string][]notify.Notification)
}

// Reset drops all data. Used by the scenario loader.
func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return nil
}

// Close satisfies the lifecycle surface shared with the sqlite store.
func (s *Store) Close() error { return nil }

func dayString(t time.Time) string { return t.Format("2006-01-02") }

// =============================================================================
// EMPLOYEE DIRECTORY
// =============================================================================

func (s *Store) SaveEmployee(_ context.Context, emp *employee.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[emp.ID] = *emp
	return nil
}

func (s *Store) GetEmployee(_ context.Context, id string) (*employee.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	emp, ok := s.employees[id]
	if !ok {
		return nil, employee.ErrNotFound
	}
	return &emp, nil
}

func (s *Store) ListEmployees(_ context.Context) ([]employee.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]employee.Employee, 0, len(s.employees))
	for _, emp := range s.employees {
		result = append(result, emp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// EmployeeName satisfies leave.EmployeeDirectory.
func (s *Store) EmployeeName(ctx context.Context, id string) (string, error) {
	emp, err := s.GetEmployee(ctx, id)
	if err != nil {
		return "", err
	}
	return emp.Name, nil
}

// =============================================================================
// LEAVE BALANCES
// =============================================================================

func (s *Store) Balances(_ context.Context, employeeID string) ([]leave.BalanceItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.employees[employeeID]; !ok {
		return nil, leave.ErrEmployeeNotFound
	}
	byType := s.balances[employeeID]
	var result []leave.BalanceItem
	for _, t := range leave.Types() {
		if item, ok := byType[t]; ok {
			result = append(result, item)
		}
	}
	return result, nil
}

func (s *Store) SaveBalance(_ context.Context, employeeID string, item leave.BalanceItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.balances[employeeID] == nil {
		s.balances[employeeID] = make(map[leave.Type]leave.BalanceItem)
	}
	s.balances[employeeID][item.Type] = item
	return nil
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

func (s *Store) SaveRequest(_ context.Context, req *leave.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[req.ID] = *req
	return nil
}

func (s *Store) GetRequest(_ context.Context, id string) (*leave.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[id]
	if !ok {
		return nil, leave.ErrRequestNotFound
	}
	return &req, nil
}

func (s *Store) ListRequests(_ context.Context, employeeID string) ([]leave.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []leave.Request
	for _, req := range s.requests {
		if req.EmployeeID == employeeID {
			result = append(result, req)
		}
	}
	sortRequests(result)
	return result, nil
}

func (s *Store) ListPending(_ context.Context) ([]leave.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []leave.Request
	for _, req := range s.requests {
		if req.Status == leave.StatusPending {
			result = append(result, req)
		}
	}
	sortRequests(result)
	return result, nil
}

func (s *Store) ListApprovedInRange(_ context.Context, employeeID string, leaveType leave.Type, from, to time.Time) ([]leave.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []leave.Request
	for _, req := range s.requests {
		if req.EmployeeID != employeeID || req.LeaveType != leaveType || req.Status != leave.StatusApproved {
			continue
		}
		if req.EndDate.Before(from) || req.StartDate.After(to) {
			continue
		}
		result = append(result, req)
	}
	sortRequests(result)
	return result, nil
}

func sortRequests(reqs []leave.Request) {
	sort.Slice(reqs, func(i, j int) bool {
		if reqs[i].CreatedAt.Equal(reqs[j].CreatedAt) {
			return reqs[i].ID < reqs[j].ID
		}
		return reqs[i].CreatedAt.Before(reqs[j].CreatedAt)
	})
}

// =============================================================================
// LEAVE HISTORY - append-only
// =============================================================================

func (s *Store) AppendHistory(_ context.Context, entry leave.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[entry.EmployeeID] = append(s.history[entry.EmployeeID], entry)
	return nil
}

func (s *Store) History(_ context.Context, employeeID string) ([]leave.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]leave.HistoryEntry, len(s.history[employeeID]))
	copy(result, s.history[employeeID])
	return result, nil
}

// =============================================================================
// ATTENDANCE
// =============================================================================

func (s *Store) GetRecord(_ context.Context, employeeID string, date time.Time) (*worktime.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[dayKey{EmployeeID: employeeID, Date: dayString(date)}]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *Store) SaveRecord(_ context.Context, rec *worktime.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[dayKey{EmployeeID: rec.EmployeeID, Date: dayString(rec.Date)}] = *rec
	return nil
}

func (s *Store) GetWeekly(_ context.Context, employeeID string, weekOf time.Time) (*worktime.WeeklyProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wp, ok := s.weekly[weekKey{EmployeeID: employeeID, WeekOf: dayString(weekOf)}]
	if !ok {
		return nil, nil
	}
	return &wp, nil
}

func (s *Store) SaveWeekly(_ context.Context, wp *worktime.WeeklyProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weekly[weekKey{EmployeeID: wp.EmployeeID, WeekOf: dayString(wp.WeekOf)}] = *wp
	return nil
}

func (s *Store) ListWeekly(_ context.Context, employeeID string, from, to time.Time) ([]worktime.WeeklyProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fromKey, toKey := dayString(from), dayString(to)
	var result []worktime.WeeklyProgress
	for k, wp := range s.weekly {
		if k.EmployeeID == employeeID && k.WeekOf >= fromKey && k.WeekOf <= toKey {
			result = append(result, wp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].WeekOf.Before(result[j].WeekOf) })
	return result, nil
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

func (s *Store) SaveNotification(_ context.Context, n *notify.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[n.EmployeeID] = append(s.notifications[n.EmployeeID], *n)
	return nil
}

func (s *Store) ListNotifications(_ context.Context, employeeID string) ([]notify.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]notify.Notification, len(s.notifications[employeeID]))
	copy(result, s.notifications[employeeID])
	return result, nil
}

func (s *Store) MarkRead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for empID, list := range s.notifications {
		for i := range list {
			if list[i].ID == id {
				list[i].Read = true
				s.notifications[empID] = list
				return nil
			}
		}
	}
	return nil
}
