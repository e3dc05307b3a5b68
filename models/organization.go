package models

import (
	"time"

	"github.com/google/uuid"
)

// PlanType represents the subscription tier of an organization
type PlanType string

const (
	PlanTypeFree               PlanType = "free"
	PlanTypeFamiliesAnnually   PlanType = "families_annually"
	PlanTypeTeamsMonthly       PlanType = "teams_monthly"
	PlanTypeTeamsAnnually      PlanType = "teams_annually"
	PlanTypeEnterpriseMonthly  PlanType = "enterprise_monthly"
	PlanTypeEnterpriseAnnually PlanType = "enterprise_annually"
	PlanTypeCustom             PlanType = "custom"
)

// IsEnterprise reports whether the plan is one of the Enterprise tiers
func (p PlanType) IsEnterprise() bool {
	return p == PlanTypeEnterpriseMonthly || p == PlanTypeEnterpriseAnnually
}

// Organization represents a tenant. Policies can only be saved for
// organizations whose plan includes the policies feature.
type Organization struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"` // URL-friendly identifier
	PlanType    PlanType  `json:"plan_type" db:"plan_type"`
	UsePolicies bool      `json:"use_policies" db:"use_policies"`
	UseSso      bool      `json:"use_sso" db:"use_sso"`
	Seats       *int      `json:"seats,omitempty" db:"seats"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Organization model
func (Organization) TableName() string {
	return "organizations"
}

// NewOrganization creates a new Organization instance
func NewOrganization(name, slug string, planType PlanType) *Organization {
	now := time.Now()
	return &Organization{
		ID:          uuid.New(),
		Name:        name,
		Slug:        slug,
		PlanType:    planType,
		UsePolicies: planType != PlanTypeFree,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
