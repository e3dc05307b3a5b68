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

// PolicyRepository implements the repositories.PolicyRepository interface
type PolicyRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewPolicyRepository creates a new policy repository
func NewPolicyRepository(db *DB, logger *zap.Logger) repositories.PolicyRepository {
	return &PolicyRepository{
		db:     db,
		logger: logger,
	}
}

const policyColumns = "id, organization_id, type, data, enabled, creation_date, revision_date"

// GetByID retrieves a policy by ID, nil when no row exists
func (r *PolicyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Policy, error) {
	query := `
		SELECT ` + policyColumns + `
		FROM policies
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	policy, err := scanPolicy(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get policy: %w", err)
	}

	return policy, nil
}

// GetByOrganizationIDType retrieves the policy of one type for an
// organization, nil when the organization has never saved that type
func (r *PolicyRepository) GetByOrganizationIDType(ctx context.Context, organizationID uuid.UUID, policyType models.PolicyType) (*models.Policy, error) {
	query := `
		SELECT ` + policyColumns + `
		FROM policies
		WHERE organization_id = $1 AND type = $2
	`

	executor := GetExecutor(ctx, r.db)
	policy, err := scanPolicy(executor.QueryRowContext(ctx, query, organizationID, policyType))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get policy by organization and type: %w", err)
	}

	return policy, nil
}

// GetManyByOrganizationID retrieves all policies for an organization
func (r *PolicyRepository) GetManyByOrganizationID(ctx context.Context, organizationID uuid.UUID) ([]*models.Policy, error) {
	query := `
		SELECT ` + policyColumns + `
		FROM policies
		WHERE organization_id = $1
		ORDER BY type
	`

	return r.queryPolicies(ctx, query, organizationID)
}

// GetManyByUserID retrieves the policies of every organization the user
// holds an accepted or confirmed membership in
func (r *PolicyRepository) GetManyByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Policy, error) {
	query := `
		SELECT p.id, p.organization_id, p.type, p.data, p.enabled, p.creation_date, p.revision_date
		FROM policies p
		INNER JOIN organization_users ou ON ou.organization_id = p.organization_id
		WHERE ou.user_id = $1 AND ou.status IN ($2, $3)
		ORDER BY p.organization_id, p.type
	`

	return r.queryPolicies(ctx, query, userID,
		models.OrganizationUserStatusAccepted, models.OrganizationUserStatusConfirmed)
}

// Upsert inserts the policy or updates the existing row by ID
func (r *PolicyRepository) Upsert(ctx context.Context, policy *models.Policy) error {
	if policy.IsNew() {
		policy.ID = uuid.New()
		return r.insert(ctx, policy)
	}
	return r.update(ctx, policy)
}

func (r *PolicyRepository) insert(ctx context.Context, policy *models.Policy) error {
	query := `
		INSERT INTO policies (id, organization_id, type, data, enabled, creation_date, revision_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		policy.ID,
		policy.OrganizationID,
		policy.Type,
		policy.Data,
		policy.Enabled,
		policy.CreationDate,
		policy.RevisionDate,
	)

	if err != nil {
		return fmt.Errorf("failed to insert policy: %w", err)
	}

	r.logger.Debug("policy inserted",
		zap.String("id", policy.ID.String()),
		zap.String("type", string(policy.Type)))
	return nil
}

func (r *PolicyRepository) update(ctx context.Context, policy *models.Policy) error {
	query := `
		UPDATE policies
		SET data = $2, enabled = $3, revision_date = $4
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		policy.ID,
		policy.Data,
		policy.Enabled,
		policy.RevisionDate,
	)

	if err != nil {
		return fmt.Errorf("failed to update policy: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("policy not found: %s", policy.ID)
	}

	r.logger.Debug("policy updated",
		zap.String("id", policy.ID.String()),
		zap.String("type", string(policy.Type)))
	return nil
}

// WithTx returns a new repository instance bound to the transaction
func (r *PolicyRepository) WithTx(tx repositories.Transaction) repositories.PolicyRepository {
	return r
}

func (r *PolicyRepository) queryPolicies(ctx context.Context, query string, args ...interface{}) ([]*models.Policy, error) {
	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query policies: %w", err)
	}
	defer rows.Close()

	policies := make([]*models.Policy, 0)
	for rows.Next() {
		policy, err := scanPolicy(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan policy: %w", err)
		}
		policies = append(policies, policy)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate policies: %w", err)
	}

	return policies, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPolicy(row rowScanner) (*models.Policy, error) {
	policy := &models.Policy{}
	err := row.Scan(
		&policy.ID,
		&policy.OrganizationID,
		&policy.Type,
		&policy.Data,
		&policy.Enabled,
		&policy.CreationDate,
		&policy.RevisionDate,
	)
	if err != nil {
		return nil, err
	}
	return policy, nil
}
