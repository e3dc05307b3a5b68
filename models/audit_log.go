package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of action being audited
type AuditAction string

const (
	AuditActionPolicyUpdated           AuditAction = "policy_updated"
	AuditActionOrganizationUserRemoved AuditAction = "organization_user_removed"
	AuditActionOrganizationUserInvited AuditAction = "organization_user_invited"
)

// AuditLog represents an audit trail entry
type AuditLog struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	OrganizationID uuid.UUID       `json:"organization_id" db:"organization_id"`
	ActingUserID   *uuid.UUID      `json:"acting_user_id,omitempty" db:"acting_user_id"`
	Action         AuditAction     `json:"action" db:"action"`
	ResourceType   string          `json:"resource_type" db:"resource_type"` // policy, organization_user, ...
	ResourceID     *uuid.UUID      `json:"resource_id,omitempty" db:"resource_id"`
	Details        json.RawMessage `json:"details,omitempty" db:"details"` // JSONB for flexible metadata
	IPAddress      string          `json:"ip_address,omitempty" db:"ip_address"`
	RequestID      string          `json:"request_id,omitempty" db:"request_id"`
	Timestamp      time.Time       `json:"timestamp" db:"timestamp"`
}

// TableName returns the table name for the AuditLog model
func (AuditLog) TableName() string {
	return "audit_logs"
}

// NewAuditLog creates a new AuditLog instance
func NewAuditLog(organizationID uuid.UUID, action AuditAction, resourceType string) *AuditLog {
	return &AuditLog{
		ID:             uuid.New(),
		OrganizationID: organizationID,
		Action:         action,
		ResourceType:   resourceType,
		Timestamp:      time.Now(),
	}
}

// WithActingUser sets the user that performed the action
func (a *AuditLog) WithActingUser(userID *uuid.UUID) *AuditLog {
	a.ActingUserID = userID
	return a
}

// WithResource sets the resource ID
func (a *AuditLog) WithResource(resourceID uuid.UUID) *AuditLog {
	a.ResourceID = &resourceID
	return a
}

// WithDetails sets the details
func (a *AuditLog) WithDetails(details interface{}) *AuditLog {
	if data, err := json.Marshal(details); err == nil {
		a.Details = data
	}
	return a
}

// WithRequest sets request metadata
func (a *AuditLog) WithRequest(requestID, ipAddress string) *AuditLog {
	a.RequestID = requestID
	a.IPAddress = ipAddress
	return a
}
