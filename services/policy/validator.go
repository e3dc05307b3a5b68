package policy

import (
	"context"
	"fmt"

	"github.com/calvinballing/server/models"
	"github.com/calvinballing/server/repositories"
	"github.com/calvinballing/server/services"
	"go.uber.org/zap"
)

// dependencyCheck is a single read-only predicate over an organization's
// current policies and SSO configuration
type dependencyCheck func(ctx context.Context, v *DependencyValidator, org *models.Organization) error

// transitionRule describes the checks that gate enabling or disabling a
// policy type. A nil slice means the transition is unconstrained.
type transitionRule struct {
	onEnable  []dependencyCheck
	onDisable []dependencyCheck
}

// transitionRules is the closed dispatch table for cross-policy
// constraints. Adding a policy type with dependencies means adding one
// entry here.
var transitionRules = map[models.PolicyType]transitionRule{
	models.PolicyTypeSingleOrg: {
		onDisable: []dependencyCheck{requiredBySso, requiredByVaultTimeout, requiredByKeyConnector},
	},
	models.PolicyTypeRequireSso: {
		onEnable:  []dependencyCheck{dependsOnSingleOrg},
		onDisable: []dependencyCheck{requiredByKeyConnector},
	},
	models.PolicyTypeMaximumVaultTimeout: {
		onEnable: []dependencyCheck{dependsOnSingleOrg},
	},
	models.PolicyTypeActivateAutofill: {
		onEnable: []dependencyCheck{requiresEnterprisePlan},
	},
}

// DependencyValidator decides whether a proposed policy transition is legal
// given the organization's other persisted policies and SSO configuration.
// It is a pure predicate over current state: no writes, no side effects.
type DependencyValidator struct {
	policyRepo    repositories.PolicyRepository
	ssoConfigRepo repositories.SsoConfigRepository
	logger        *zap.Logger
}

// NewDependencyValidator creates a new DependencyValidator
func NewDependencyValidator(policyRepo repositories.PolicyRepository, ssoConfigRepo repositories.SsoConfigRepository, logger *zap.Logger) *DependencyValidator {
	return &DependencyValidator{
		policyRepo:    policyRepo,
		ssoConfigRepo: ssoConfigRepo,
		logger:        logger,
	}
}

// ValidateTransition accepts or rejects a proposed enabled-flag change. The
// policies feature gate is checked first, before any per-type rule.
func (v *DependencyValidator) ValidateTransition(ctx context.Context, org *models.Organization, policyType models.PolicyType, proposedEnabled bool) error {
	if !org.UsePolicies {
		return services.ErrCannotUsePolicies
	}

	rule, ok := transitionRules[policyType]
	if !ok {
		return nil
	}

	checks := rule.onDisable
	if proposedEnabled {
		checks = rule.onEnable
	}

	for _, check := range checks {
		if err := check(ctx, v, org); err != nil {
			v.logger.Debug("policy transition rejected",
				zap.String("organization_id", org.ID.String()),
				zap.String("type", string(policyType)),
				zap.Bool("proposed_enabled", proposedEnabled),
				zap.Error(err))
			return err
		}
	}

	return nil
}

// dependsOnSingleOrg rejects unless the SingleOrg policy is enabled
func dependsOnSingleOrg(ctx context.Context, v *DependencyValidator, org *models.Organization) error {
	singleOrg, err := v.policyRepo.GetByOrganizationIDType(ctx, org.ID, models.PolicyTypeSingleOrg)
	if err != nil {
		return fmt.Errorf("failed to look up single organization policy: %w", err)
	}
	if singleOrg == nil || !singleOrg.Enabled {
		return services.ErrSingleOrgNotEnabled
	}
	return nil
}

// requiredBySso rejects when the RequireSso policy is enabled
func requiredBySso(ctx context.Context, v *DependencyValidator, org *models.Organization) error {
	requireSso, err := v.policyRepo.GetByOrganizationIDType(ctx, org.ID, models.PolicyTypeRequireSso)
	if err != nil {
		return fmt.Errorf("failed to look up require sso policy: %w", err)
	}
	if requireSso != nil && requireSso.Enabled {
		return services.ErrRequireSsoEnabled
	}
	return nil
}

// requiredByVaultTimeout rejects when the MaximumVaultTimeout policy is enabled
func requiredByVaultTimeout(ctx context.Context, v *DependencyValidator, org *models.Organization) error {
	vaultTimeout, err := v.policyRepo.GetByOrganizationIDType(ctx, org.ID, models.PolicyTypeMaximumVaultTimeout)
	if err != nil {
		return fmt.Errorf("failed to look up maximum vault timeout policy: %w", err)
	}
	if vaultTimeout != nil && vaultTimeout.Enabled {
		return services.ErrVaultTimeoutEnabled
	}
	return nil
}

// requiredByKeyConnector rejects when the organization's SSO configuration
// has key connector turned on
func requiredByKeyConnector(ctx context.Context, v *DependencyValidator, org *models.Organization) error {
	ssoConfig, err := v.ssoConfigRepo.GetByOrganizationID(ctx, org.ID)
	if err != nil {
		return fmt.Errorf("failed to look up sso config: %w", err)
	}
	if ssoConfig != nil && ssoConfig.KeyConnectorEnabled() {
		return services.ErrKeyConnectorEnabled
	}
	return nil
}

// requiresEnterprisePlan rejects unless the organization is on an
// Enterprise-tier plan
func requiresEnterprisePlan(_ context.Context, _ *DependencyValidator, org *models.Organization) error {
	if !org.PlanType.IsEnterprise() {
		return services.ErrRequiresEnterprisePlan
	}
	return nil
}
