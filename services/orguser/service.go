package orguser

import (
	"context"
	"fmt"

	"github.com/calvinballing/server/models"
	"github.com/calvinballing/server/repositories"
	"github.com/calvinballing/server/services"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventLogger records membership audit events
type EventLogger interface {
	LogOrganizationUserRemoved(orgUser *models.OrganizationUser, policyType models.PolicyType, actingUserID *uuid.UUID) error
	LogOrganizationUserInvited(orgUser *models.OrganizationUser, actingUserID *uuid.UUID) error
}

// Service manages organization memberships. It carries the default
// membership-removal and two-factor-lookup capabilities that the policy
// engine takes as injected collaborators.
type Service struct {
	orgUserRepo repositories.OrganizationUserRepository
	userRepo    repositories.UserRepository
	txMgr       repositories.TransactionManager
	events      EventLogger
	logger      *zap.Logger
}

// NewService creates a new organization user Service
func NewService(orgUserRepo repositories.OrganizationUserRepository, userRepo repositories.UserRepository, txMgr repositories.TransactionManager, events EventLogger, logger *zap.Logger) *Service {
	return &Service{
		orgUserRepo: orgUserRepo,
		userRepo:    userRepo,
		txMgr:       txMgr,
		events:      events,
		logger:      logger,
	}
}

// Remove deletes a membership and records the removal in the audit trail.
// Implements the policy engine's MemberRemover capability.
func (s *Service) Remove(ctx context.Context, organizationID, organizationUserID uuid.UUID, actingUserID *uuid.UUID) error {
	orgUser, err := s.orgUserRepo.GetByID(ctx, organizationUserID)
	if err != nil {
		return fmt.Errorf("failed to look up organization user: %w", err)
	}
	if orgUser == nil {
		return services.ErrOrganizationUserNotFound
	}
	if orgUser.OrganizationID != organizationID {
		return services.ErrOrganizationUserNotFound
	}

	if err := s.orgUserRepo.Delete(ctx, organizationUserID); err != nil {
		return fmt.Errorf("failed to delete organization user: %w", err)
	}

	if err := s.events.LogOrganizationUserRemoved(orgUser, "", actingUserID); err != nil {
		s.logger.Warn("failed to log organization user removed event",
			zap.String("organization_user_id", organizationUserID.String()),
			zap.Error(err))
	}

	return nil
}

// TwoFactorIsEnabled reports whether the member's account has any enabled
// two-factor provider. Implements the policy engine's TwoFactorChecker
// capability. Members without a linked account cannot have two-factor
// enabled.
func (s *Service) TwoFactorIsEnabled(ctx context.Context, orgUser *models.OrganizationUser) (bool, error) {
	if orgUser.UserID == nil {
		return false, nil
	}

	user, err := s.userRepo.GetByID(ctx, *orgUser.UserID)
	if err != nil {
		return false, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return false, services.ErrUserNotFound
	}

	return user.HasTwoFactorEnabled(), nil
}

// Invite creates a membership in the Invited state. The duplicate check
// and the insert run in one transaction so two racing invites for the
// same address cannot both land.
func (s *Service) Invite(ctx context.Context, organizationID uuid.UUID, email string, userType models.OrganizationUserType, actingUserID *uuid.UUID) (*models.OrganizationUser, error) {
	if email == "" {
		return nil, services.ErrInvalidInput
	}

	orgUser := models.NewOrganizationUser(organizationID, email, userType)
	err := services.WithTransaction(ctx, s.txMgr, func(ctx context.Context, _ repositories.Transaction) error {
		existing, err := s.orgUserRepo.GetManyDetailsByOrganizationID(ctx, organizationID)
		if err != nil {
			return fmt.Errorf("failed to look up existing memberships: %w", err)
		}
		for _, m := range existing {
			if m.Email == email && m.Status != models.OrganizationUserStatusRevoked {
				return services.ErrOrganizationUserAlreadyExists
			}
		}
		return s.orgUserRepo.Create(ctx, orgUser)
	})
	if err != nil {
		if services.IsConflictError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create organization user: %w", err)
	}

	if err := s.events.LogOrganizationUserInvited(orgUser, actingUserID); err != nil {
		s.logger.Warn("failed to log organization user invited event",
			zap.String("organization_user_id", orgUser.ID.String()),
			zap.Error(err))
	}

	s.logger.Info("organization user invited",
		zap.String("organization_id", organizationID.String()),
		zap.String("organization_user_id", orgUser.ID.String()))

	return orgUser, nil
}
