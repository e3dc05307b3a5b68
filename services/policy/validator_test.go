package policy

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/calvinballing/server/models"
	"github.com/calvinballing/server/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testOrg() *models.Organization {
	return &models.Organization{
		ID:          uuid.New(),
		Name:        "Acme",
		PlanType:    models.PlanTypeEnterpriseAnnually,
		UsePolicies: true,
	}
}

func enabledPolicy(orgID uuid.UUID, policyType models.PolicyType) *models.Policy {
	return &models.Policy{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Type:           policyType,
		Enabled:        true,
	}
}

func disabledPolicy(orgID uuid.UUID, policyType models.PolicyType) *models.Policy {
	p := enabledPolicy(orgID, policyType)
	p.Enabled = false
	return p
}

func newValidator(policyRepo *MockPolicyRepository, ssoRepo *MockSsoConfigRepository) *DependencyValidator {
	return NewDependencyValidator(policyRepo, ssoRepo, zap.NewNop())
}

func TestValidateTransition_PoliciesFeatureDisabled(t *testing.T) {
	validator := newValidator(new(MockPolicyRepository), new(MockSsoConfigRepository))

	org := testOrg()
	org.UsePolicies = false

	// The feature gate rejects every type and both transition directions
	for _, pt := range models.ValidPolicyTypes {
		for _, enabled := range []bool{true, false} {
			err := validator.ValidateTransition(context.Background(), org, pt, enabled)
			assert.ErrorIs(t, err, services.ErrCannotUsePolicies, "type %s enabled=%v", pt, enabled)
		}
	}
}

func TestValidateTransition_DisableSingleOrg(t *testing.T) {
	tests := []struct {
		name         string
		requireSso   *models.Policy
		vaultTimeout *models.Policy
		ssoConfig    *models.SsoConfig
		wantErr      error
	}{
		{
			name:    "all dependencies off succeeds",
			wantErr: nil,
		},
		{
			name:       "require sso enabled rejects",
			requireSso: enabledPolicy(uuid.Nil, models.PolicyTypeRequireSso),
			wantErr:    services.ErrRequireSsoEnabled,
		},
		{
			name:         "vault timeout enabled rejects",
			vaultTimeout: enabledPolicy(uuid.Nil, models.PolicyTypeMaximumVaultTimeout),
			wantErr:      services.ErrVaultTimeoutEnabled,
		},
		{
			name:      "key connector enabled rejects",
			ssoConfig: &models.SsoConfig{Data: json.RawMessage(`{"key_connector_enabled":true}`)},
			wantErr:   services.ErrKeyConnectorEnabled,
		},
		{
			name:       "disabled require sso row is ignored",
			requireSso: disabledPolicy(uuid.Nil, models.PolicyTypeRequireSso),
			wantErr:    nil,
		},
		{
			name:      "sso config without key connector is ignored",
			ssoConfig: &models.SsoConfig{Data: json.RawMessage(`{"key_connector_enabled":false}`)},
			wantErr:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			org := testOrg()
			policyRepo := new(MockPolicyRepository)
			ssoRepo := new(MockSsoConfigRepository)

			policyRepo.On("GetByOrganizationIDType", mock.Anything, org.ID, models.PolicyTypeRequireSso).
				Return(tt.requireSso, nil).Maybe()
			policyRepo.On("GetByOrganizationIDType", mock.Anything, org.ID, models.PolicyTypeMaximumVaultTimeout).
				Return(tt.vaultTimeout, nil).Maybe()
			ssoRepo.On("GetByOrganizationID", mock.Anything, org.ID).
				Return(tt.ssoConfig, nil).Maybe()

			validator := newValidator(policyRepo, ssoRepo)
			err := validator.ValidateTransition(context.Background(), org, models.PolicyTypeSingleOrg, false)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTransition_EnableRequireSso(t *testing.T) {
	org := testOrg()

	t.Run("without single org rejects", func(t *testing.T) {
		policyRepo := new(MockPolicyRepository)
		policyRepo.On("GetByOrganizationIDType", mock.Anything, org.ID, models.PolicyTypeSingleOrg).
			Return(nil, nil)

		validator := newValidator(policyRepo, new(MockSsoConfigRepository))
		err := validator.ValidateTransition(context.Background(), org, models.PolicyTypeRequireSso, true)
		assert.ErrorIs(t, err, services.ErrSingleOrgNotEnabled)
	})

	t.Run("with disabled single org rejects", func(t *testing.T) {
		policyRepo := new(MockPolicyRepository)
		policyRepo.On("GetByOrganizationIDType", mock.Anything, org.ID, models.PolicyTypeSingleOrg).
			Return(disabledPolicy(org.ID, models.PolicyTypeSingleOrg), nil)

		validator := newValidator(policyRepo, new(MockSsoConfigRepository))
		err := validator.ValidateTransition(context.Background(), org, models.PolicyTypeRequireSso, true)
		assert.ErrorIs(t, err, services.ErrSingleOrgNotEnabled)
	})

	t.Run("with enabled single org succeeds", func(t *testing.T) {
		policyRepo := new(MockPolicyRepository)
		policyRepo.On("GetByOrganizationIDType", mock.Anything, org.ID, models.PolicyTypeSingleOrg).
			Return(enabledPolicy(org.ID, models.PolicyTypeSingleOrg), nil)

		validator := newValidator(policyRepo, new(MockSsoConfigRepository))
		err := validator.ValidateTransition(context.Background(), org, models.PolicyTypeRequireSso, true)
		assert.NoError(t, err)
	})
}

func TestValidateTransition_DisableRequireSso(t *testing.T) {
	org := testOrg()

	t.Run("key connector enabled rejects", func(t *testing.T) {
		ssoRepo := new(MockSsoConfigRepository)
		ssoRepo.On("GetByOrganizationID", mock.Anything, org.ID).
			Return(&models.SsoConfig{Data: json.RawMessage(`{"key_connector_enabled":true}`)}, nil)

		validator := newValidator(new(MockPolicyRepository), ssoRepo)
		err := validator.ValidateTransition(context.Background(), org, models.PolicyTypeRequireSso, false)
		assert.ErrorIs(t, err, services.ErrKeyConnectorEnabled)
	})

	t.Run("no sso config succeeds", func(t *testing.T) {
		ssoRepo := new(MockSsoConfigRepository)
		ssoRepo.On("GetByOrganizationID", mock.Anything, org.ID).Return(nil, nil)

		validator := newValidator(new(MockPolicyRepository), ssoRepo)
		err := validator.ValidateTransition(context.Background(), org, models.PolicyTypeRequireSso, false)
		assert.NoError(t, err)
	})
}

func TestValidateTransition_EnableMaximumVaultTimeout(t *testing.T) {
	org := testOrg()

	policyRepo := new(MockPolicyRepository)
	policyRepo.On("GetByOrganizationIDType", mock.Anything, org.ID, models.PolicyTypeSingleOrg).
		Return(nil, nil)

	validator := newValidator(policyRepo, new(MockSsoConfigRepository))
	err := validator.ValidateTransition(context.Background(), org, models.PolicyTypeMaximumVaultTimeout, true)
	assert.ErrorIs(t, err, services.ErrSingleOrgNotEnabled)
}

func TestValidateTransition_EnableActivateAutofill(t *testing.T) {
	tests := []struct {
		plan    models.PlanType
		wantErr error
	}{
		{models.PlanTypeEnterpriseAnnually, nil},
		{models.PlanTypeEnterpriseMonthly, nil},
		{models.PlanTypeTeamsAnnually, services.ErrRequiresEnterprisePlan},
		{models.PlanTypeFree, services.ErrRequiresEnterprisePlan},
	}

	for _, tt := range tests {
		t.Run(string(tt.plan), func(t *testing.T) {
			org := testOrg()
			org.PlanType = tt.plan

			validator := newValidator(new(MockPolicyRepository), new(MockSsoConfigRepository))
			err := validator.ValidateTransition(context.Background(), org, models.PolicyTypeActivateAutofill, true)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTransition_UnconstrainedTypes(t *testing.T) {
	org := testOrg()
	validator := newValidator(new(MockPolicyRepository), new(MockSsoConfigRepository))

	for _, pt := range []models.PolicyType{
		models.PolicyTypeTwoFactorAuthentication,
		models.PolicyTypeMasterPassword,
		models.PolicyTypePasswordGenerator,
		models.PolicyTypeDisableSend,
	} {
		for _, enabled := range []bool{true, false} {
			err := validator.ValidateTransition(context.Background(), org, pt, enabled)
			require.NoError(t, err, "type %s enabled=%v", pt, enabled)
		}
	}
}

func TestValidateTransition_DisablingAutofillIsUnconstrained(t *testing.T) {
	org := testOrg()
	org.PlanType = models.PlanTypeFree

	validator := newValidator(new(MockPolicyRepository), new(MockSsoConfigRepository))
	assert.NoError(t, validator.ValidateTransition(context.Background(), org, models.PolicyTypeActivateAutofill, false))
}
