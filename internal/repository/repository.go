package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/streamvault/streamvault/internal/models"
)

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the users table if it does not exist. It is
// idempotent and is run once at process start.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			user_id VARCHAR(100) NOT NULL UNIQUE,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			phone VARCHAR(50) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure users table: %w", err)
	}
	return nil
}

// FindByHandleOrEmail returns the rows colliding with the given handle or
// email. Used by the registration duplicate check.
func (r *Repository) FindByHandleOrEmail(ctx context.Context, userID, email string) ([]models.User, error) {
	query := `
		SELECT id, user_id, email
		FROM users
		WHERE user_id = $1 OR email = $2`
	rows, err := r.db.QueryContext(ctx, query, userID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to query existing users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.UserID, &u.Email); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read user rows: %w", err)
	}
	return users, nil
}

// FindByHandle retrieves a full user row by handle
func (r *Repository) FindByHandle(ctx context.Context, userID string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, user_id, name, email, phone, password_hash, created_at
		FROM users
		WHERE user_id = $1`
	err := r.db.QueryRowContext(ctx, query, userID).
		Scan(&user.ID, &user.UserID, &user.Name, &user.Email, &user.Phone, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// CreateUser inserts a new user row. A unique-constraint violation is
// returned as *models.ConflictError: the constraint, not the pre-insert
// duplicate check, is the authoritative conflict signal under concurrent
// registrations.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (user_id, name, email, phone, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, user.UserID, user.Name, user.Email, user.Phone, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if conflict := conflictFromPQ(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// conflictFromPQ maps a Postgres unique_violation (23505) to a ConflictError,
// using the constraint name to identify the colliding column.
func conflictFromPQ(err error) *models.ConflictError {
	pqErr, ok := err.(*pq.Error)
	if !ok || pqErr.Code != "23505" {
		return nil
	}
	conflict := &models.ConflictError{}
	switch {
	case strings.Contains(pqErr.Constraint, "user_id"):
		conflict.HandleTaken = true
	case strings.Contains(pqErr.Constraint, "email"):
		conflict.EmailTaken = true
	}
	return conflict
}
