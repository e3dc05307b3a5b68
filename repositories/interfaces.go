package repositories

import (
	"context"

	"github.com/calvinballing/server/models"
	"github.com/google/uuid"
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// PolicyRepository handles policy data operations
type PolicyRepository interface {
	// GetByID retrieves a policy by ID. Returns nil without error when the
	// row does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Policy, error)

	// GetByOrganizationIDType retrieves the policy of a given type for an
	// organization. Returns nil without error when the row does not exist.
	GetByOrganizationIDType(ctx context.Context, organizationID uuid.UUID, policyType models.PolicyType) (*models.Policy, error)

	// GetManyByOrganizationID retrieves all policies for an organization
	GetManyByOrganizationID(ctx context.Context, organizationID uuid.UUID) ([]*models.Policy, error)

	// GetManyByUserID retrieves the policies of every organization the user
	// holds an accepted or confirmed membership in
	GetManyByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Policy, error)

	// Upsert inserts the policy or updates the existing row by ID
	Upsert(ctx context.Context, policy *models.Policy) error

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) PolicyRepository
}

// OrganizationRepository handles organization data operations
type OrganizationRepository interface {
	// Create creates a new organization
	Create(ctx context.Context, org *models.Organization) error

	// GetByID retrieves an organization by ID. Returns nil without error
	// when the row does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)

	// GetBySlug retrieves an organization by slug
	GetBySlug(ctx context.Context, slug string) (*models.Organization, error)

	// List retrieves all organizations with pagination
	List(ctx context.Context, limit, offset int) ([]*models.Organization, error)

	// Update updates an organization
	Update(ctx context.Context, org *models.Organization) error

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) OrganizationRepository
}

// OrganizationUserRepository handles membership data operations
type OrganizationUserRepository interface {
	// GetByID retrieves a membership by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.OrganizationUser, error)

	// GetManyDetailsByOrganizationID retrieves every membership of an
	// organization
	GetManyDetailsByOrganizationID(ctx context.Context, organizationID uuid.UUID) ([]*models.OrganizationUser, error)

	// GetManyByManyUsers retrieves all memberships, across every
	// organization, held by any of the given users
	GetManyByManyUsers(ctx context.Context, userIDs []uuid.UUID) ([]*models.OrganizationUser, error)

	// Create creates a new membership
	Create(ctx context.Context, orgUser *models.OrganizationUser) error

	// Update updates a membership
	Update(ctx context.Context, orgUser *models.OrganizationUser) error

	// Delete removes a membership
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) OrganizationUserRepository
}

// SsoConfigRepository handles SSO configuration lookups
type SsoConfigRepository interface {
	// GetByOrganizationID retrieves the SSO config for an organization.
	// Returns nil without error when none exists.
	GetByOrganizationID(ctx context.Context, organizationID uuid.UUID) (*models.SsoConfig, error)

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) SsoConfigRepository
}

// UserRepository handles user data operations
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// Update updates a user
	Update(ctx context.Context, user *models.User) error

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) UserRepository
}

// AuditRepository handles audit log data operations
type AuditRepository interface {
	// Insert inserts a new audit log entry
	Insert(ctx context.Context, log *models.AuditLog) error

	// GetByID retrieves an audit log by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.AuditLog, error)

	// GetByOrganizationID retrieves audit logs for an organization with pagination
	GetByOrganizationID(ctx context.Context, organizationID uuid.UUID, limit, offset int) ([]*models.AuditLog, error)

	// GetByAction retrieves audit logs by action type
	GetByAction(ctx context.Context, organizationID uuid.UUID, action models.AuditAction, limit, offset int) ([]*models.AuditLog, error)

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) AuditRepository
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Organizations     OrganizationRepository
	OrganizationUsers OrganizationUserRepository
	Users             UserRepository
	Policies          PolicyRepository
	SsoConfigs        SsoConfigRepository
	AuditLogs         AuditRepository
}
