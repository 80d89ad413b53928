/*
store.go - Persistence interfaces for the leave domain

PURPOSE:
  Declares what the leave Service needs from storage. Implementations live
  in store/sqlite (production) and store/memory (tests/dev); the domain
  package knows neither.

CONTRACTS:
  - Balances is a fresh read on every call; the Service never caches it.
  - AppendHistory is append-only. No update or delete path exists.
  - SaveRequest upserts by ID.
*/
package leave

import (
	"context"
	"time"
)

// Store is the full persistence surface the leave Service depends on.
type Store interface {
	BalanceStore
	RequestStore
	HistoryStore
}

// BalanceStore reads and writes the per-type balance counters.
type BalanceStore interface {
	// Balances returns every balance item for the employee, one per leave
	// type, in stable order. Returns ErrEmployeeNotFound for unknown IDs.
	Balances(ctx context.Context, employeeID string) ([]BalanceItem, error)

	// SaveBalance upserts the counters for one leave type.
	SaveBalance(ctx context.Context, employeeID string, item BalanceItem) error
}

// RequestStore persists leave requests.
type RequestStore interface {
	SaveRequest(ctx context.Context, req *Request) error
	GetRequest(ctx context.Context, id string) (*Request, error)
	ListRequests(ctx context.Context, employeeID string) ([]Request, error)

	// ListPending returns all pending requests across employees, oldest first.
	ListPending(ctx context.Context) ([]Request, error)

	// ListApprovedInRange returns approved requests of the given type whose
	// date range overlaps [from, to]. Used by payroll for unpaid-day counts.
	ListApprovedInRange(ctx context.Context, employeeID string, leaveType Type, from, to time.Time) ([]Request, error)
}

// HistoryStore persists the append-only audit trail.
type HistoryStore interface {
	AppendHistory(ctx context.Context, entry HistoryEntry) error
	History(ctx context.Context, employeeID string) ([]HistoryEntry, error)
}
