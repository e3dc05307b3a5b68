package postgres

import (
	"github.com/calvinballing/server/config"
	"github.com/calvinballing/server/repositories"
	"go.uber.org/zap"
)

// RepositoryFactory creates and manages all repositories
type RepositoryFactory struct {
	db     *DB
	logger *zap.Logger
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(cfg *config.Config, logger *zap.Logger) (*RepositoryFactory, error) {
	db, err := NewDB(cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	return &RepositoryFactory{db: db, logger: logger}, nil
}

// NewRepositories creates all repository instances
func (f *RepositoryFactory) NewRepositories() *repositories.Repositories {
	return &repositories.Repositories{
		Organizations:     NewOrganizationRepository(f.db, f.logger),
		OrganizationUsers: NewOrganizationUserRepository(f.db, f.logger),
		Users:             NewUserRepository(f.db, f.logger),
		Policies:          NewPolicyRepository(f.db, f.logger),
		SsoConfigs:        NewSsoConfigRepository(f.db, f.logger),
		AuditLogs:         NewAuditRepository(f.db, f.logger),
	}
}

// GetTransactionManager returns a transaction manager bound to the pool
func (f *RepositoryFactory) GetTransactionManager() repositories.TransactionManager {
	return NewTransactionManager(f.db, f.logger)
}

// GetDB returns the underlying database handle
func (f *RepositoryFactory) GetDB() *DB {
	return f.db
}

// Close closes the underlying connection pool
func (f *RepositoryFactory) Close() error {
	return f.db.Close()
}
