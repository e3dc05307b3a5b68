package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PolicyType represents the closed set of enforceable organization policies
type PolicyType string

const (
	PolicyTypeTwoFactorAuthentication    PolicyType = "two_factor_authentication"
	PolicyTypeMasterPassword             PolicyType = "master_password"
	PolicyTypePasswordGenerator          PolicyType = "password_generator"
	PolicyTypeSingleOrg                  PolicyType = "single_org"
	PolicyTypeRequireSso                 PolicyType = "require_sso"
	PolicyTypePersonalOwnership          PolicyType = "personal_ownership"
	PolicyTypeDisableSend                PolicyType = "disable_send"
	PolicyTypeSendOptions                PolicyType = "send_options"
	PolicyTypeResetPassword              PolicyType = "reset_password"
	PolicyTypeMaximumVaultTimeout        PolicyType = "maximum_vault_timeout"
	PolicyTypeDisablePersonalVaultExport PolicyType = "disable_personal_vault_export"
	PolicyTypeActivateAutofill           PolicyType = "activate_autofill"
)

// ValidPolicyTypes lists every recognized policy type
var ValidPolicyTypes = []PolicyType{
	PolicyTypeTwoFactorAuthentication,
	PolicyTypeMasterPassword,
	PolicyTypePasswordGenerator,
	PolicyTypeSingleOrg,
	PolicyTypeRequireSso,
	PolicyTypePersonalOwnership,
	PolicyTypeDisableSend,
	PolicyTypeSendOptions,
	PolicyTypeResetPassword,
	PolicyTypeMaximumVaultTimeout,
	PolicyTypeDisablePersonalVaultExport,
	PolicyTypeActivateAutofill,
}

// IsValid reports whether t is a recognized policy type
func (t PolicyType) IsValid() bool {
	for _, valid := range ValidPolicyTypes {
		if t == valid {
			return true
		}
	}
	return false
}

// Policy represents an organization policy. There is at most one row per
// (organization, type) pair; the enabled flag and the type-specific data
// payload are the only mutable parts after creation.
type Policy struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	OrganizationID uuid.UUID       `json:"organization_id" db:"organization_id"`
	Type           PolicyType      `json:"type" db:"type"`
	Data           json.RawMessage `json:"data,omitempty" db:"data"` // JSONB, type-specific configuration
	Enabled        bool            `json:"enabled" db:"enabled"`
	CreationDate   time.Time       `json:"creation_date" db:"creation_date"`
	RevisionDate   time.Time       `json:"revision_date" db:"revision_date"`
}

// TableName returns the table name for the Policy model
func (Policy) TableName() string {
	return "policies"
}

// NewPolicy creates a new Policy instance. The ID stays zero until the row
// is first persisted.
func NewPolicy(organizationID uuid.UUID, policyType PolicyType, data json.RawMessage, enabled bool) *Policy {
	return &Policy{
		OrganizationID: organizationID,
		Type:           policyType,
		Data:           data,
		Enabled:        enabled,
	}
}

// IsNew reports whether the policy has been persisted yet
func (p *Policy) IsNew() bool {
	return p.ID == uuid.Nil
}

// DataModel unmarshals the policy's data payload into out
func (p *Policy) DataModel(out interface{}) error {
	if len(p.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(p.Data, out); err != nil {
		return fmt.Errorf("failed to unmarshal policy data: %w", err)
	}
	return nil
}
