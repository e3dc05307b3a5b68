package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/calvinballing/server/config"
	"github.com/calvinballing/server/middleware"
	"github.com/calvinballing/server/repositories"
	"github.com/calvinballing/server/repositories/postgres"
	"github.com/calvinballing/server/services/audit"
	"github.com/calvinballing/server/services/mail"
	"github.com/calvinballing/server/services/orguser"
	"github.com/calvinballing/server/services/policy"
)

// Dependencies holds all application dependencies. This is the central
// wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Organizations     repositories.OrganizationRepository
	OrganizationUsers repositories.OrganizationUserRepository
	Users             repositories.UserRepository
	Policies          repositories.PolicyRepository
	SsoConfigs        repositories.SsoConfigRepository
	AuditLogs         repositories.AuditRepository
	TxManager         repositories.TransactionManager

	// Services
	AuditService   *audit.AuditService
	PolicyService  *policy.Service
	OrgUserService *orguser.Service
	Mailer         mail.Mailer

	// Auth
	AuthMiddleware *middleware.AuthMiddleware
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps.initRepositories()
	deps.initMailer(cfg)
	deps.initServices(cfg)
	deps.initAuth(cfg)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the PostgreSQL connection and repository factory
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	factory, err := postgres.NewRepositoryFactory(cfg, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}

	d.RepoFactory = factory
	d.DB = factory.GetDB()

	if err := d.DB.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	d.Logger.Info("database connection established",
		zap.String("connection", cfg.Database.LogString()))

	return nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()

	d.Organizations = repos.Organizations
	d.OrganizationUsers = repos.OrganizationUsers
	d.Users = repos.Users
	d.Policies = repos.Policies
	d.SsoConfigs = repos.SsoConfigs
	d.AuditLogs = repos.AuditLogs
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
}

// initMailer selects the mail transport. Without an SMTP host the server
// logs notifications instead of delivering them, which keeps local
// development free of mail setup.
func (d *Dependencies) initMailer(cfg *config.Config) {
	if cfg.Mail.Host == "" {
		d.Logger.Warn("SMTP not configured, mail notifications will be logged only")
		d.Mailer = mail.NewLogMailer(d.Logger)
		return
	}
	d.Mailer = mail.NewSMTPMailer(cfg.Mail, d.Logger)
	d.Logger.Info("SMTP mailer initialized", zap.String("host", cfg.Mail.Host))
}

// initServices wires the audit, policy, and membership services
func (d *Dependencies) initServices(cfg *config.Config) {
	d.AuditService = audit.NewAuditService(d.AuditLogs, d.Logger, audit.Config{
		BufferSize:  cfg.Audit.BufferSize,
		WorkerCount: cfg.Audit.WorkerCount,
	})

	validator := policy.NewDependencyValidator(d.Policies, d.SsoConfigs, d.Logger)
	d.PolicyService = policy.NewService(
		d.Policies,
		d.Organizations,
		d.OrganizationUsers,
		validator,
		d.AuditService,
		d.Mailer,
		d.Logger,
	)

	d.OrgUserService = orguser.NewService(d.OrganizationUsers, d.Users, d.TxManager, d.AuditService, d.Logger)

	d.Logger.Info("services initialized")
}

func (d *Dependencies) initAuth(cfg *config.Config) {
	if cfg.Auth.JWTSecret == "" {
		d.Logger.Warn("JWT secret not configured, protected routes will reject all requests")
		d.AuthMiddleware = middleware.NewAuthMiddleware(&rejectAllValidator{}, d.Logger)
		return
	}
	d.AuthMiddleware = middleware.NewAuthMiddleware(middleware.NewJWTValidator(cfg.Auth), d.Logger)
	d.Logger.Info("JWT authentication initialized", zap.String("issuer", cfg.Auth.Issuer))
}

// Start brings up the components with background workers.
func (d *Dependencies) Start() error {
	if err := d.AuditService.Start(); err != nil {
		return fmt.Errorf("failed to start audit service: %w", err)
	}
	return nil
}

// Shutdown stops background workers and closes the database. Safe to call
// once during process teardown.
func (d *Dependencies) Shutdown() error {
	var firstErr error

	if d.AuditService != nil {
		if err := d.AuditService.Stop(d.Config.Audit.StopTimeout); err != nil {
			d.Logger.Error("failed to stop audit service", zap.Error(err))
			firstErr = err
		}
	}

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			d.Logger.Error("failed to close database", zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

// rejectAllValidator rejects every token. Installed when no JWT secret is
// configured so protected routes fail closed.
type rejectAllValidator struct{}

func (v *rejectAllValidator) ValidateToken(ctx context.Context, token string) (*middleware.Claims, error) {
	return nil, fmt.Errorf("authentication is not configured")
}
