package auth

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AuthUser struct {
	ID           string
	Email        string
	Role         string
	PasswordHash string
	EmployeeID   string
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (AuthUser, error) {
	var user AuthUser
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, role, password_hash, COALESCE(employee_id::text, '')
    FROM users
    WHERE email = $1 AND status = 'active'
  `, email).Scan(&user.ID, &user.Email, &user.Role, &user.PasswordHash, &user.EmployeeID)
	if err != nil {
		return AuthUser{}, err
	}
	return user, nil
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET last_login = now() WHERE id = $1", userID)
	return err
}

func (s *Store) EmployeeIDForUser(ctx context.Context, userID string) (string, error) {
	var employeeID string
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(employee_id::text, '')
    FROM users
    WHERE id = $1
  `, userID).Scan(&employeeID)
	if err != nil {
		return "", err
	}
	return employeeID, nil
}
