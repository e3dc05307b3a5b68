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

// SsoConfigRepository implements the repositories.SsoConfigRepository interface
type SsoConfigRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewSsoConfigRepository creates a new SSO config repository
func NewSsoConfigRepository(db *DB, logger *zap.Logger) repositories.SsoConfigRepository {
	return &SsoConfigRepository{
		db:     db,
		logger: logger,
	}
}

// GetByOrganizationID retrieves the SSO config for an organization, nil
// when the organization has none
func (r *SsoConfigRepository) GetByOrganizationID(ctx context.Context, organizationID uuid.UUID) (*models.SsoConfig, error) {
	query := `
		SELECT id, organization_id, enabled, data, created_at, updated_at
		FROM sso_configs
		WHERE organization_id = $1
	`

	executor := GetExecutor(ctx, r.db)
	cfg := &models.SsoConfig{}
	err := executor.QueryRowContext(ctx, query, organizationID).Scan(
		&cfg.ID,
		&cfg.OrganizationID,
		&cfg.Enabled,
		&cfg.Data,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get sso config: %w", err)
	}

	return cfg, nil
}

// WithTx returns a new repository instance bound to the transaction
func (r *SsoConfigRepository) WithTx(tx repositories.Transaction) repositories.SsoConfigRepository {
	return r
}
