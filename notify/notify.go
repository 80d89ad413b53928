// Package notify stores the notification rows behind the UI's toast and
// notification list. Rows are created on leave decisions and listed per
// employee.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID         string
	EmployeeID string
	Title      string
	Message    string
	Read       bool
	CreatedAt  time.Time
}

// Store is the notification persistence surface.
type Store interface {
	SaveNotification(ctx context.Context, n *Notification) error
	ListNotifications(ctx context.Context, employeeID string) ([]Notification, error)
	MarkRead(ctx context.Context, id string) error
}

// Service creates and lists notifications. It satisfies leave.Notifier.
type Service struct {
	Store Store
	Now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{Store: store, Now: time.Now}
}

// Notify records a notification for the employee.
func (s *Service) Notify(ctx context.Context, employeeID, title, message string) error {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	return s.Store.SaveNotification(ctx, &Notification{
		ID:         uuid.NewString(),
		EmployeeID: employeeID,
		Title:      title,
		Message:    message,
		CreatedAt:  now,
	})
}

func (s *Service) List(ctx context.Context, employeeID string) ([]Notification, error) {
	return s.Store.ListNotifications(ctx, employeeID)
}

func (s *Service) MarkRead(ctx context.Context, id string) error {
	return s.Store.MarkRead(ctx, id)
}
