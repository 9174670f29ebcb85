package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/vionex/auth-service/internal/models"
	"github.com/vionex/auth-service/internal/storage"
)

const uniqueViolation = "23505"

type AccountRepository struct {
	db storage.DBTX
}

func NewAccountRepository(db storage.DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, username, email, password_hash, COALESCE(full_name, ''), role, is_active, created_at`

// GetByIdentifier looks the account up by username or email.
func (r *AccountRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	query := `SELECT ` + accountColumns + ` FROM users WHERE username = $1 OR email = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, identifier))
}

func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + accountColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *AccountRepository) Create(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (id, username, email, password_hash, full_name, role)
	          VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
	          RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.FullName, user.Role,
	).Scan(&user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return storage.ErrAccountExists
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *AccountRepository) scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.Role,
		&user.IsActive,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &user, nil
}
