package notifications

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	KindOnboardingCompleted = "onboarding_completed"
	KindSessionAutoClosed   = "session_auto_closed"
)

type Notification struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employeeId"`
	Kind       string    `json:"kind"`
	Message    string    `json:"message"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Mailer sends the outbound copy of a notification. Implementations may be
// no-ops when email delivery is not configured.
type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

func (s *Service) Create(ctx context.Context, employeeID, kind, message string) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO notifications (employee_id, kind, message)
    VALUES ($1, $2, $3)
  `, employeeID, kind, message)
	return err
}

func (s *Service) List(ctx context.Context, employeeID string, unreadOnly bool, limit int) ([]Notification, error) {
	query := `
    SELECT id, employee_id, kind, message, read, created_at
    FROM notifications
    WHERE employee_id = $1`
	if unreadOnly {
		query += " AND read = false"
	}
	query += " ORDER BY created_at DESC LIMIT $2"

	rows, err := s.DB.Query(ctx, query, employeeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.EmployeeID, &n.Kind, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Service) MarkRead(ctx context.Context, notificationID string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE notifications
    SET read = true
    WHERE id = $1
  `, notificationID)
	return err
}
