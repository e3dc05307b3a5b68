package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/calvinballing/server/internal/observability"
	"github.com/calvinballing/server/middleware"
	"github.com/calvinballing/server/models"
	"github.com/calvinballing/server/repositories"
	"github.com/calvinballing/server/services"
	"github.com/calvinballing/server/services/policy"
	"github.com/calvinballing/server/utils"
)

// SavePolicyRequest represents a request to create or update a policy.
// The policy type comes from the URL, so the body carries only the
// enabled flag and the type-specific configuration.
type SavePolicyRequest struct {
	Enabled bool            `json:"enabled"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// PolicyResponse represents a policy in API responses
type PolicyResponse struct {
	ID             uuid.UUID         `json:"id"`
	OrganizationID uuid.UUID         `json:"organization_id"`
	Type           models.PolicyType `json:"type"`
	Data           json.RawMessage   `json:"data,omitempty"`
	Enabled        bool              `json:"enabled"`
	CreationDate   string            `json:"creation_date"`
	RevisionDate   string            `json:"revision_date"`
}

// PolicyService defines the policy operations the handler depends on
type PolicyService interface {
	Save(ctx context.Context, p *models.Policy, remover policy.MemberRemover, twoFactor policy.TwoFactorChecker, actingUserID *uuid.UUID) (*models.Policy, error)
	EffectiveMasterPasswordPolicy(ctx context.Context, userID uuid.UUID) (*models.MasterPasswordPolicyData, error)
}

// MembershipService bundles the membership capabilities policy saves need
// to cascade removals.
type MembershipService interface {
	policy.MemberRemover
	policy.TwoFactorChecker
}

// PolicyHandler handles policy-related HTTP requests
type PolicyHandler struct {
	policies   PolicyService
	members    MembershipService
	policyRepo repositories.PolicyRepository
	logger     *zap.Logger
}

// NewPolicyHandler creates a new PolicyHandler
func NewPolicyHandler(policies PolicyService, members MembershipService, policyRepo repositories.PolicyRepository, logger *zap.Logger) *PolicyHandler {
	return &PolicyHandler{
		policies:   policies,
		members:    members,
		policyRepo: policyRepo,
		logger:     logger,
	}
}

// HandleSavePolicy handles PUT /v1/organizations/{orgID}/policies/{type}
func (h *PolicyHandler) HandleSavePolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	orgID, ok := h.resolveOrgID(w, r)
	if !ok {
		return
	}

	policyType := models.PolicyType(chi.URLParam(r, "type"))
	if !policyType.IsValid() {
		_ = utils.WriteBadRequest(w, "Invalid policy type", nil)
		return
	}

	var req SavePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to parse request body",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	// A save addresses the (organization, type) pair, not a row ID. Carry
	// the existing row's identity so transition detection compares against
	// the persisted state instead of treating every save as a creation.
	p := models.NewPolicy(orgID, policyType, req.Data, req.Enabled)
	existing, err := h.policyRepo.GetByOrganizationIDType(ctx, orgID, policyType)
	if err != nil {
		h.logger.Error("failed to look up existing policy",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "Failed to save policy")
		return
	}
	if existing != nil {
		p.ID = existing.ID
		p.CreationDate = existing.CreationDate
	}

	actingUserID := middleware.GetUserIDFromContext(ctx)

	h.logger.Debug("saving policy",
		zap.String("request_id", requestID),
		zap.String("org_id", orgID.String()),
		zap.String("policy_type", string(policyType)),
		zap.Bool("enabled", req.Enabled))

	saved, err := h.policies.Save(ctx, p, h.members, h.members, actingUserID)
	if err != nil {
		observability.RecordPolicySave(string(policyType), saveOutcome(err))
		HandleServiceError(w, err, h.logger)
		return
	}
	observability.RecordPolicySave(string(policyType), "saved")

	h.logger.Info("policy saved",
		zap.String("request_id", requestID),
		zap.String("policy_id", saved.ID.String()),
		zap.String("policy_type", string(saved.Type)),
		zap.Bool("enabled", saved.Enabled))

	_ = utils.WriteOK(w, policyToResponse(saved))
}

// HandleListPolicies handles GET /v1/organizations/{orgID}/policies
func (h *PolicyHandler) HandleListPolicies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	orgID, ok := h.resolveOrgID(w, r)
	if !ok {
		return
	}

	policies, err := h.policyRepo.GetManyByOrganizationID(ctx, orgID)
	if err != nil {
		h.logger.Error("failed to list policies",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "Failed to retrieve policies")
		return
	}

	responses := make([]PolicyResponse, len(policies))
	for i, p := range policies {
		responses[i] = policyToResponse(p)
	}

	_ = utils.WriteOK(w, responses)
}

// HandleGetPolicy handles GET /v1/organizations/{orgID}/policies/{type}
func (h *PolicyHandler) HandleGetPolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orgID, ok := h.resolveOrgID(w, r)
	if !ok {
		return
	}

	policyType := models.PolicyType(chi.URLParam(r, "type"))
	if !policyType.IsValid() {
		_ = utils.WriteBadRequest(w, "Invalid policy type", nil)
		return
	}

	p, err := h.policyRepo.GetByOrganizationIDType(ctx, orgID, policyType)
	if err != nil {
		h.logger.Error("failed to fetch policy",
			zap.String("org_id", orgID.String()),
			zap.String("policy_type", string(policyType)),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "Failed to retrieve policy")
		return
	}
	if p == nil {
		_ = utils.WriteNotFound(w, "Policy not found")
		return
	}

	_ = utils.WriteOK(w, policyToResponse(p))
}

// HandleEffectiveMasterPasswordPolicy handles GET /v1/users/me/master-password-policy.
// It aggregates the enabled master-password policies of every organization
// the caller belongs to; the response data is null when none apply.
func (h *PolicyHandler) HandleEffectiveMasterPasswordPolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := middleware.GetUserIDFromContext(ctx)
	if userID == nil {
		_ = utils.WriteUnauthorized(w, "Missing user information")
		return
	}

	data, err := h.policies.EffectiveMasterPasswordPolicy(ctx, *userID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, data)
}

// resolveOrgID parses the organization ID from the URL and checks it
// against the tenant established by the auth middleware. A token for one
// organization cannot act on another.
func (h *PolicyHandler) resolveOrgID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	orgID, err := uuid.Parse(chi.URLParam(r, "orgID"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid organization ID format", nil)
		return uuid.Nil, false
	}

	ctxOrgID := middleware.GetOrgIDFromContext(r.Context())
	if ctxOrgID == uuid.Nil {
		_ = utils.WriteUnauthorized(w, "Missing organization information")
		return uuid.Nil, false
	}
	if ctxOrgID != orgID {
		_ = utils.WriteForbidden(w, "Access to this organization is not permitted")
		return uuid.Nil, false
	}

	return orgID, true
}

func saveOutcome(err error) string {
	if services.IsValidationError(err) {
		return "rejected"
	}
	return "error"
}

func policyToResponse(p *models.Policy) PolicyResponse {
	return PolicyResponse{
		ID:             p.ID,
		OrganizationID: p.OrganizationID,
		Type:           p.Type,
		Data:           p.Data,
		Enabled:        p.Enabled,
		CreationDate:   p.CreationDate.UTC().Format(time.RFC3339),
		RevisionDate:   p.RevisionDate.UTC().Format(time.RFC3339),
	}
}
