// Package employee holds the employee directory shared by the leave,
// worktime and payroll domains.
package employee

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Employee is a directory entry. BaseSalary is the monthly gross used by
// payroll; decimal keeps money math exact.
type Employee struct {
	ID         string
	Name       string
	Email      string
	Department string
	BaseSalary decimal.Decimal
	HireDate   time.Time
	CreatedAt  time.Time
}

// ErrNotFound is returned for unknown employee IDs.
var ErrNotFound = errors.New("employee not found")

// Store is the directory persistence surface.
type Store interface {
	SaveEmployee(ctx context.Context, emp *Employee) error
	GetEmployee(ctx context.Context, id string) (*Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
}
