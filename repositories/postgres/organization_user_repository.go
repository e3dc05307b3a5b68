package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/calvinballing/server/models"
	"github.com/calvinballing/server/repositories"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// OrganizationUserRepository implements the repositories.OrganizationUserRepository interface
type OrganizationUserRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewOrganizationUserRepository creates a new membership repository
func NewOrganizationUserRepository(db *DB, logger *zap.Logger) repositories.OrganizationUserRepository {
	return &OrganizationUserRepository{
		db:     db,
		logger: logger,
	}
}

const organizationUserColumns = "id, organization_id, user_id, email, status, type, created_at, updated_at"

// GetByID retrieves a membership by ID
func (r *OrganizationUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.OrganizationUser, error) {
	query := `
		SELECT ` + organizationUserColumns + `
		FROM organization_users
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	orgUser, err := scanOrganizationUser(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get organization user: %w", err)
	}

	return orgUser, nil
}

// GetManyDetailsByOrganizationID retrieves every membership of an organization
func (r *OrganizationUserRepository) GetManyDetailsByOrganizationID(ctx context.Context, organizationID uuid.UUID) ([]*models.OrganizationUser, error) {
	query := `
		SELECT ` + organizationUserColumns + `
		FROM organization_users
		WHERE organization_id = $1
		ORDER BY email
	`

	return r.queryOrganizationUsers(ctx, query, organizationID)
}

// GetManyByManyUsers retrieves all memberships held by any of the given users
func (r *OrganizationUserRepository) GetManyByManyUsers(ctx context.Context, userIDs []uuid.UUID) ([]*models.OrganizationUser, error) {
	if len(userIDs) == 0 {
		return []*models.OrganizationUser{}, nil
	}

	query := `
		SELECT ` + organizationUserColumns + `
		FROM organization_users
		WHERE user_id = ANY($1)
		ORDER BY user_id, organization_id
	`

	ids := make([]string, len(userIDs))
	for i, id := range userIDs {
		ids[i] = id.String()
	}

	return r.queryOrganizationUsers(ctx, query, pq.Array(ids))
}

// Create creates a new membership
func (r *OrganizationUserRepository) Create(ctx context.Context, orgUser *models.OrganizationUser) error {
	query := `
		INSERT INTO organization_users (id, organization_id, user_id, email, status, type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		orgUser.ID,
		orgUser.OrganizationID,
		orgUser.UserID,
		orgUser.Email,
		orgUser.Status,
		orgUser.Type,
		orgUser.CreatedAt,
		orgUser.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create organization user: %w", err)
	}

	r.logger.Debug("organization user created", zap.String("id", orgUser.ID.String()))
	return nil
}

// Update updates a membership
func (r *OrganizationUserRepository) Update(ctx context.Context, orgUser *models.OrganizationUser) error {
	query := `
		UPDATE organization_users
		SET user_id = $2, email = $3, status = $4, type = $5, updated_at = $6
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		orgUser.ID,
		orgUser.UserID,
		orgUser.Email,
		orgUser.Status,
		orgUser.Type,
		orgUser.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update organization user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("organization user not found: %s", orgUser.ID)
	}

	return nil
}

// Delete removes a membership
func (r *OrganizationUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM organization_users WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete organization user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("organization user not found: %s", id)
	}

	r.logger.Debug("organization user deleted", zap.String("id", id.String()))
	return nil
}

// WithTx returns a new repository instance bound to the transaction
func (r *OrganizationUserRepository) WithTx(tx repositories.Transaction) repositories.OrganizationUserRepository {
	return r
}

func (r *OrganizationUserRepository) queryOrganizationUsers(ctx context.Context, query string, args ...interface{}) ([]*models.OrganizationUser, error) {
	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query organization users: %w", err)
	}
	defer rows.Close()

	orgUsers := make([]*models.OrganizationUser, 0)
	for rows.Next() {
		orgUser, err := scanOrganizationUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan organization user: %w", err)
		}
		orgUsers = append(orgUsers, orgUser)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate organization users: %w", err)
	}

	return orgUsers, nil
}

func scanOrganizationUser(row rowScanner) (*models.OrganizationUser, error) {
	orgUser := &models.OrganizationUser{}
	err := row.Scan(
		&orgUser.ID,
		&orgUser.OrganizationID,
		&orgUser.UserID,
		&orgUser.Email,
		&orgUser.Status,
		&orgUser.Type,
		&orgUser.CreatedAt,
		&orgUser.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return orgUser, nil
}
