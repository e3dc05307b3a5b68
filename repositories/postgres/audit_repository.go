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

// AuditRepository implements the repositories.AuditRepository interface
type AuditRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *DB, logger *zap.Logger) repositories.AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

const auditColumns = "id, organization_id, acting_user_id, action, resource_type, resource_id, details, ip_address, request_id, timestamp"

// Insert inserts a new audit log entry
func (r *AuditRepository) Insert(ctx context.Context, log *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, organization_id, acting_user_id, action, resource_type, resource_id, details, ip_address, request_id, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		log.ID,
		log.OrganizationID,
		log.ActingUserID,
		log.Action,
		log.ResourceType,
		log.ResourceID,
		log.Details,
		nullableString(log.IPAddress),
		nullableString(log.RequestID),
		log.Timestamp,
	)

	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}

	return nil
}

// GetByID retrieves an audit log by ID
func (r *AuditRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AuditLog, error) {
	query := `
		SELECT ` + auditColumns + `
		FROM audit_logs
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	log, err := scanAuditLog(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get audit log: %w", err)
	}

	return log, nil
}

// GetByOrganizationID retrieves audit logs for an organization with pagination
func (r *AuditRepository) GetByOrganizationID(ctx context.Context, organizationID uuid.UUID, limit, offset int) ([]*models.AuditLog, error) {
	query := `
		SELECT ` + auditColumns + `
		FROM audit_logs
		WHERE organization_id = $1
		ORDER BY timestamp DESC
		LIMIT $2 OFFSET $3
	`

	return r.queryAuditLogs(ctx, query, organizationID, limit, offset)
}

// GetByAction retrieves audit logs by action type
func (r *AuditRepository) GetByAction(ctx context.Context, organizationID uuid.UUID, action models.AuditAction, limit, offset int) ([]*models.AuditLog, error) {
	query := `
		SELECT ` + auditColumns + `
		FROM audit_logs
		WHERE organization_id = $1 AND action = $2
		ORDER BY timestamp DESC
		LIMIT $3 OFFSET $4
	`

	return r.queryAuditLogs(ctx, query, organizationID, action, limit, offset)
}

// WithTx returns a new repository instance bound to the transaction
func (r *AuditRepository) WithTx(tx repositories.Transaction) repositories.AuditRepository {
	return r
}

func (r *AuditRepository) queryAuditLogs(ctx context.Context, query string, args ...interface{}) ([]*models.AuditLog, error) {
	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer rows.Close()

	logs := make([]*models.AuditLog, 0)
	for rows.Next() {
		log, err := scanAuditLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit logs: %w", err)
	}

	return logs, nil
}

func scanAuditLog(row rowScanner) (*models.AuditLog, error) {
	log := &models.AuditLog{}
	var ipAddress, requestID sql.NullString
	err := row.Scan(
		&log.ID,
		&log.OrganizationID,
		&log.ActingUserID,
		&log.Action,
		&log.ResourceType,
		&log.ResourceID,
		&log.Details,
		&ipAddress,
		&requestID,
		&log.Timestamp,
	)
	if err != nil {
		return nil, err
	}
	log.IPAddress = ipAddress.String
	log.RequestID = requestID.String
	return log, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
