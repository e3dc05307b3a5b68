package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/calvinballing/server/models"
	"github.com/calvinballing/server/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserRepository implements the repositories.UserRepository interface
type UserRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB, logger *zap.Logger) repositories.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

const userColumns = "id, email, name, premium, two_factor_providers, created_at, updated_at"

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, name, premium, two_factor_providers, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.Premium,
		user.TwoFactorProviders,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.Debug("user created", zap.String("id", user.ID.String()))
	return nil
}

// GetByID retrieves a user by ID, nil when no row exists
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	user, err := scanUser(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1
	`

	executor := GetExecutor(ctx, r.db)
	user, err := scanUser(executor.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// Update updates a user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET email = $2, name = $3, premium = $4, two_factor_providers = $5, updated_at = $6
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.Premium,
		user.TwoFactorProviders,
		user.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user not found: %s", user.ID)
	}

	return nil
}

// WithTx returns a new repository instance bound to the transaction
func (r *UserRepository) WithTx(tx repositories.Transaction) repositories.UserRepository {
	return r
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Premium,
		&user.TwoFactorProviders,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}
