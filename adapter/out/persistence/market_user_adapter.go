// Package persistence provides database adapters implementing outbound ports.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"market_server/core/domain"
	"market_server/core/port/out"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// =============================================================================
// User Adapter (PostgreSQL)
// =============================================================================

// UserAdapter implements out.UserRepository using PostgreSQL.
type UserAdapter struct {
	db *sqlx.DB
}

// NewUserAdapter creates a new UserAdapter.
func NewUserAdapter(db *sqlx.DB) *UserAdapter {
	return &UserAdapter{db: db}
}

// =============================================================================
// Database Row Mapping
// =============================================================================

type userRow struct {
	ID          string         `db:"id"`
	Email       string         `db:"email"`
	Name        string         `db:"name"`
	Role        string         `db:"role"`
	CompanyName sql.NullString `db:"company_name"`
	GSTNumber   sql.NullString `db:"gst_number"`
	Phone       sql.NullString `db:"phone"`
	Categories  pq.StringArray `db:"categories"`
	IsActive    bool           `db:"is_active"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r *userRow) toEntity() (*domain.User, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user ID: %w", err)
	}

	return &domain.User{
		ID:          id,
		Email:       r.Email,
		Name:        r.Name,
		Role:        domain.UserRole(r.Role),
		CompanyName: r.CompanyName.String,
		GSTNumber:   r.GSTNumber.String,
		Phone:       r.Phone.String,
		Categories:  []string(r.Categories),
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// =============================================================================
// CRUD Operations
// =============================================================================

// Create inserts a new user record.
func (a *UserAdapter) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, name, role, company_name, gst_number, phone, categories, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := a.db.ExecContext(ctx, query,
		user.ID.String(),
		user.Email,
		user.Name,
		string(user.Role),
		nullString(user.CompanyName),
		nullString(user.GSTNumber),
		nullString(user.Phone),
		pq.StringArray(user.Categories),
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID, or nil when absent.
func (a *UserAdapter) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var row userRow
	query := `SELECT * FROM users WHERE id = $1`

	err := a.db.GetContext(ctx, &row, query, id.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return row.toEntity()
}

// GetByEmail retrieves a user by email, or nil when absent.
func (a *UserAdapter) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var row userRow
	query := `SELECT * FROM users WHERE email = $1`

	err := a.db.GetContext(ctx, &row, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return row.toEntity()
}

// Update updates an existing user record.
func (a *UserAdapter) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users SET
			email = $2,
			name = $3,
			role = $4,
			company_name = $5,
			gst_number = $6,
			phone = $7,
			categories = $8,
			is_active = $9,
			updated_at = $10
		WHERE id = $1`

	result, err := a.db.ExecContext(ctx, query,
		user.ID.String(),
		user.Email,
		user.Name,
		string(user.Role),
		nullString(user.CompanyName),
		nullString(user.GSTNumber),
		nullString(user.Phone),
		pq.StringArray(user.Categories),
		user.IsActive,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Deactivate marks a user inactive.
func (a *UserAdapter) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE users SET is_active = false, updated_at = $2 WHERE id = $1`

	result, err := a.db.ExecContext(ctx, query, id.String(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// List retrieves users matching the filter.
func (a *UserAdapter) List(ctx context.Context, filter *domain.UserFilter) ([]*domain.User, error) {
	query := `SELECT * FROM users WHERE 1=1`
	args := []any{}
	argPos := 1

	if filter != nil {
		if filter.Role != nil {
			query += fmt.Sprintf(" AND role = $%d", argPos)
			args = append(args, string(*filter.Role))
			argPos++
		}
		if filter.IsActive != nil {
			query += fmt.Sprintf(" AND is_active = $%d", argPos)
			args = append(args, *filter.IsActive)
			argPos++
		}
		if filter.Search != "" {
			query += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d OR company_name ILIKE $%d)", argPos, argPos, argPos)
			args = append(args, "%"+filter.Search+"%")
			argPos++
		}
	}

	query += " ORDER BY created_at DESC"
	if filter != nil && filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argPos)
		args = append(args, filter.Limit)
		argPos++
	}
	if filter != nil && filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argPos)
		args = append(args, filter.Offset)
	}

	var rows []userRow
	if err := a.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*domain.User, 0, len(rows))
	for i := range rows {
		user, err := rows[i].toEntity()
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// =============================================================================
// Interface Compliance
// =============================================================================

var _ out.UserRepository = (*UserAdapter)(nil)
