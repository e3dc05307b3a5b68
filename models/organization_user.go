package models

import (
	"time"

	"github.com/google/uuid"
)

// OrganizationUserStatus tracks onboarding progress of a membership.
// Values are ordered: Revoked < Invited < Accepted < Confirmed.
type OrganizationUserStatus int

const (
	OrganizationUserStatusRevoked   OrganizationUserStatus = -1
	OrganizationUserStatusInvited   OrganizationUserStatus = 0
	OrganizationUserStatusAccepted  OrganizationUserStatus = 1
	OrganizationUserStatusConfirmed OrganizationUserStatus = 2
)

// OrganizationUserType orders membership privilege, Owner highest.
type OrganizationUserType int

const (
	OrganizationUserTypeOwner   OrganizationUserType = 0
	OrganizationUserTypeAdmin   OrganizationUserType = 1
	OrganizationUserTypeUser    OrganizationUserType = 2
	OrganizationUserTypeManager OrganizationUserType = 3
)

// OrganizationUser represents a user's membership in an organization.
// UserID is nil until the invitation is accepted.
type OrganizationUser struct {
	ID             uuid.UUID              `json:"id" db:"id"`
	OrganizationID uuid.UUID              `json:"organization_id" db:"organization_id"`
	UserID         *uuid.UUID             `json:"user_id,omitempty" db:"user_id"`
	Email          string                 `json:"email" db:"email"`
	Status         OrganizationUserStatus `json:"status" db:"status"`
	Type           OrganizationUserType   `json:"type" db:"type"`
	CreatedAt      time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the OrganizationUser model
func (OrganizationUser) TableName() string {
	return "organization_users"
}

// NewOrganizationUser creates a membership in the Invited state
func NewOrganizationUser(organizationID uuid.UUID, email string, userType OrganizationUserType) *OrganizationUser {
	now := time.Now()
	return &OrganizationUser{
		ID:             uuid.New(),
		OrganizationID: organizationID,
		Email:          email,
		Status:         OrganizationUserStatusInvited,
		Type:           userType,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Removable reports whether this membership is eligible for policy-driven
// removal: active (not Invited, not Revoked), non-privileged (not Owner or
// Admin), and not the acting user performing the save.
func (ou *OrganizationUser) Removable(actingUserID *uuid.UUID) bool {
	if ou.Status == OrganizationUserStatusInvited || ou.Status == OrganizationUserStatusRevoked {
		return false
	}
	if ou.Type == OrganizationUserTypeOwner || ou.Type == OrganizationUserTypeAdmin {
		return false
	}
	if actingUserID != nil && ou.UserID != nil && *ou.UserID == *actingUserID {
		return false
	}
	return true
}
