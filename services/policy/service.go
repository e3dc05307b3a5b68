package policy

import (
	"context"
	"fmt"
	"time"

	"github.com/calvinballing/server/internal/observability"
	"github.com/calvinballing/server/models"
	"github.com/calvinballing/server/repositories"
	"github.com/calvinballing/server/services"
	"github.com/calvinballing/server/services/mail"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MemberRemover removes a membership from an organization. The capability
// is injected per call because removal semantics (seat reclaim, key
// revocation) belong to the caller, not this engine.
type MemberRemover interface {
	Remove(ctx context.Context, organizationID, organizationUserID uuid.UUID, actingUserID *uuid.UUID) error
}

// TwoFactorChecker reports whether a member has any two-factor method
// enabled. Injected per call for the same reason as MemberRemover.
type TwoFactorChecker interface {
	TwoFactorIsEnabled(ctx context.Context, orgUser *models.OrganizationUser) (bool, error)
}

// EventLogger records policy audit events
type EventLogger interface {
	LogPolicyUpdated(policy *models.Policy, actingUserID *uuid.UUID) error
}

// Service enforces organization policies: it validates proposed policy
// transitions against the dependency rules, cascades membership
// remediation when a policy turns on, and computes effective
// master-password constraints for users.
type Service struct {
	policyRepo  repositories.PolicyRepository
	orgRepo     repositories.OrganizationRepository
	orgUserRepo repositories.OrganizationUserRepository
	validator   *DependencyValidator
	events      EventLogger
	mailer      mail.Mailer
	logger      *zap.Logger
}

// NewService creates a new policy Service
func NewService(
	policyRepo repositories.PolicyRepository,
	orgRepo repositories.OrganizationRepository,
	orgUserRepo repositories.OrganizationUserRepository,
	validator *DependencyValidator,
	events EventLogger,
	mailer mail.Mailer,
	logger *zap.Logger,
) *Service {
	return &Service{
		policyRepo:  policyRepo,
		orgRepo:     orgRepo,
		orgUserRepo: orgUserRepo,
		validator:   validator,
		events:      events,
		mailer:      mailer,
		logger:      logger,
	}
}

// Save validates and persists a policy change, cascading membership
// remediation when the policy transitions from disabled to enabled.
//
// The transition check reads the currently persisted row and is therefore
// a best-effort guard: two concurrent saves for the same organization can
// interleave their reads. The engine holds no lock; callers needing
// stronger isolation must serialize saves per organization at the storage
// layer.
func (s *Service) Save(ctx context.Context, policy *models.Policy, remover MemberRemover, twoFactor TwoFactorChecker, actingUserID *uuid.UUID) (*models.Policy, error) {
	org, err := s.orgRepo.GetByID(ctx, policy.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up organization: %w", err)
	}
	if org == nil {
		return nil, services.ErrOrganizationNotFound
	}

	if err := s.validator.ValidateTransition(ctx, org, policy.Type, policy.Enabled); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if policy.IsNew() {
		policy.CreationDate = now
	}

	if policy.Enabled {
		wasEnabled, err := s.currentlyEnabled(ctx, policy)
		if err != nil {
			return nil, err
		}
		if !wasEnabled {
			if err := s.remediate(ctx, org, policy, remover, twoFactor, actingUserID); err != nil {
				return nil, err
			}
		}
	}

	policy.RevisionDate = now
	if err := s.policyRepo.Upsert(ctx, policy); err != nil {
		return nil, fmt.Errorf("failed to persist policy: %w", err)
	}

	if err := s.events.LogPolicyUpdated(policy, actingUserID); err != nil {
		s.logger.Warn("failed to log policy updated event",
			zap.String("policy_id", policy.ID.String()),
			zap.Error(err))
	}

	s.logger.Info("policy saved",
		zap.String("policy_id", policy.ID.String()),
		zap.String("organization_id", policy.OrganizationID.String()),
		zap.String("type", string(policy.Type)),
		zap.Bool("enabled", policy.Enabled))

	return policy, nil
}

// currentlyEnabled reports the enabled state of the persisted row, false
// when no row exists yet
func (s *Service) currentlyEnabled(ctx context.Context, policy *models.Policy) (bool, error) {
	if policy.IsNew() {
		return false, nil
	}
	current, err := s.policyRepo.GetByID(ctx, policy.ID)
	if err != nil {
		return false, fmt.Errorf("failed to look up current policy: %w", err)
	}
	return current != nil && current.Enabled, nil
}

// remediate applies the type-specific membership consequences of enabling
// a policy. Only TwoFactorAuthentication and SingleOrg cascade; every
// other type is a no-op.
func (s *Service) remediate(ctx context.Context, org *models.Organization, policy *models.Policy, remover MemberRemover, twoFactor TwoFactorChecker, actingUserID *uuid.UUID) error {
	switch policy.Type {
	case models.PolicyTypeTwoFactorAuthentication, models.PolicyTypeSingleOrg:
	default:
		return nil
	}

	orgUsers, err := s.orgUserRepo.GetManyDetailsByOrganizationID(ctx, org.ID)
	if err != nil {
		return fmt.Errorf("failed to enumerate organization members: %w", err)
	}

	// The removable set is computed once; members promoted or revoked
	// during the fan-out are not re-checked.
	removable := make([]*models.OrganizationUser, 0, len(orgUsers))
	for _, ou := range orgUsers {
		if ou.Removable(actingUserID) {
			removable = append(removable, ou)
		}
	}

	switch policy.Type {
	case models.PolicyTypeTwoFactorAuthentication:
		return s.remediateTwoFactor(ctx, org, removable, remover, twoFactor, actingUserID)
	case models.PolicyTypeSingleOrg:
		return s.remediateSingleOrg(ctx, org, removable, remover, actingUserID)
	}
	return nil
}

// remediateTwoFactor removes every removable member that has no two-factor
// method enabled. Each member is handled independently: one failure never
// aborts the rest of the fan-out.
func (s *Service) remediateTwoFactor(ctx context.Context, org *models.Organization, removable []*models.OrganizationUser, remover MemberRemover, twoFactor TwoFactorChecker, actingUserID *uuid.UUID) error {
	for _, orgUser := range removable {
		enabled, err := twoFactor.TwoFactorIsEnabled(ctx, orgUser)
		if err != nil {
			s.logger.Warn("two-factor check failed, member skipped",
				zap.String("organization_user_id", orgUser.ID.String()),
				zap.Error(err))
			continue
		}
		if enabled {
			continue
		}
		s.removeAndNotify(ctx, org, orgUser, models.PolicyTypeTwoFactorAuthentication, remover, actingUserID, s.mailer.SendRemovedForTwoFactor)
	}
	return nil
}

// remediateSingleOrg removes every removable member that holds a
// non-invited membership in another organization. Members only invited
// elsewhere are retained: they are not yet really multi-org.
func (s *Service) remediateSingleOrg(ctx context.Context, org *models.Organization, removable []*models.OrganizationUser, remover MemberRemover, actingUserID *uuid.UUID) error {
	userIDs := make([]uuid.UUID, 0, len(removable))
	for _, ou := range removable {
		if ou.UserID != nil {
			userIDs = append(userIDs, *ou.UserID)
		}
	}

	memberships, err := s.orgUserRepo.GetManyByManyUsers(ctx, userIDs)
	if err != nil {
		return fmt.Errorf("failed to look up other-organization memberships: %w", err)
	}

	for _, orgUser := range removable {
		if orgUser.UserID == nil {
			continue
		}
		if !hasOtherOrgMembership(memberships, *orgUser.UserID, org.ID) {
			continue
		}
		s.removeAndNotify(ctx, org, orgUser, models.PolicyTypeSingleOrg, remover, actingUserID, s.mailer.SendRemovedForSingleOrg)
	}
	return nil
}

// hasOtherOrgMembership reports whether the user holds a non-invited
// membership in any organization other than orgID
func hasOtherOrgMembership(memberships []*models.OrganizationUser, userID, orgID uuid.UUID) bool {
	for _, m := range memberships {
		if m.UserID != nil && *m.UserID == userID &&
			m.OrganizationID != orgID &&
			m.Status != models.OrganizationUserStatusInvited {
			return true
		}
	}
	return false
}

// removeAndNotify removes one member and sends the removal notification.
// Failures are logged and swallowed so the fan-out continues.
func (s *Service) removeAndNotify(ctx context.Context, org *models.Organization, orgUser *models.OrganizationUser, policyType models.PolicyType, remover MemberRemover, actingUserID *uuid.UUID, notify func(ctx context.Context, orgName, email string) error) {
	if err := remover.Remove(ctx, org.ID, orgUser.ID, actingUserID); err != nil {
		s.logger.Warn("failed to remove member during policy remediation",
			zap.String("organization_id", org.ID.String()),
			zap.String("organization_user_id", orgUser.ID.String()),
			zap.Error(err))
		return
	}
	observability.RecordMemberRemoved(string(policyType))

	s.logger.Info("member removed by policy remediation",
		zap.String("organization_id", org.ID.String()),
		zap.String("organization_user_id", orgUser.ID.String()))

	if err := notify(ctx, org.Name, orgUser.Email); err != nil {
		s.logger.Warn("failed to notify removed member",
			zap.String("email", orgUser.Email),
			zap.Error(err))
	}
}

// EffectiveMasterPasswordPolicy merges every enabled MasterPassword policy
// across the organizations the user belongs to into a single
// strictest-wins constraint set. Returns nil when the user is subject to
// no enabled MasterPassword policy; nil is distinct from an empty
// constraint set and callers must not substitute a default.
func (s *Service) EffectiveMasterPasswordPolicy(ctx context.Context, userID uuid.UUID) (*models.MasterPasswordPolicyData, error) {
	policies, err := s.policyRepo.GetManyByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user policies: %w", err)
	}

	var enforced *models.MasterPasswordPolicyData
	for _, p := range policies {
		if p.Type != models.PolicyTypeMasterPassword || !p.Enabled {
			continue
		}

		var data models.MasterPasswordPolicyData
		if err := p.DataModel(&data); err != nil {
			s.logger.Error("failed to decode master password policy data",
				zap.String("policy_id", p.ID.String()),
				zap.Error(err))
			continue
		}

		if enforced == nil {
			enforced = &models.MasterPasswordPolicyData{}
		}
		enforced.Combine(&data)
	}

	return enforced, nil
}
