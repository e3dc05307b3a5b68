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

// OrganizationRepository implements the repositories.OrganizationRepository interface
type OrganizationRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewOrganizationRepository creates a new organization repository
func NewOrganizationRepository(db *DB, logger *zap.Logger) repositories.OrganizationRepository {
	return &OrganizationRepository{
		db:     db,
		logger: logger,
	}
}

const organizationColumns = "id, name, slug, plan_type, use_policies, use_sso, seats, created_at, updated_at"

// Create creates a new organization
func (r *OrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	query := `
		INSERT INTO organizations (id, name, slug, plan_type, use_policies, use_sso, seats, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		org.ID,
		org.Name,
		org.Slug,
		org.PlanType,
		org.UsePolicies,
		org.UseSso,
		org.Seats,
		org.CreatedAt,
		org.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}

	r.logger.Debug("organization created", zap.String("id", org.ID.String()))
	return nil
}

// GetByID retrieves an organization by ID, nil when no row exists
func (r *OrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	query := `
		SELECT ` + organizationColumns + `
		FROM organizations
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	org, err := scanOrganization(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	return org, nil
}

// GetBySlug retrieves an organization by slug
func (r *OrganizationRepository) GetBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	query := `
		SELECT ` + organizationColumns + `
		FROM organizations
		WHERE slug = $1
	`

	executor := GetExecutor(ctx, r.db)
	org, err := scanOrganization(executor.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get organization by slug: %w", err)
	}

	return org, nil
}

// List retrieves all organizations with pagination
func (r *OrganizationRepository) List(ctx context.Context, limit, offset int) ([]*models.Organization, error) {
	query := `
		SELECT ` + organizationColumns + `
		FROM organizations
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	orgs := make([]*models.Organization, 0)
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, org)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate organizations: %w", err)
	}

	return orgs, nil
}

// Update updates an organization
func (r *OrganizationRepository) Update(ctx context.Context, org *models.Organization) error {
	query := `
		UPDATE organizations
		SET name = $2, slug = $3, plan_type = $4, use_policies = $5, use_sso = $6, seats = $7, updated_at = $8
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		org.ID,
		org.Name,
		org.Slug,
		org.PlanType,
		org.UsePolicies,
		org.UseSso,
		org.Seats,
		org.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("organization not found: %s", org.ID)
	}

	return nil
}

// WithTx returns a new repository instance bound to the transaction
func (r *OrganizationRepository) WithTx(tx repositories.Transaction) repositories.OrganizationRepository {
	return r
}

func scanOrganization(row rowScanner) (*models.Organization, error) {
	org := &models.Organization{}
	err := row.Scan(
		&org.ID,
		&org.Name,
		&org.Slug,
		&org.PlanType,
		&org.UsePolicies,
		&org.UseSso,
		&org.Seats,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return org, nil
}
