package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/calvinballing/server/middleware"
	"github.com/calvinballing/server/models"
	"github.com/calvinballing/server/repositories"
	"github.com/calvinballing/server/utils"
)

// InviteOrganizationUserRequest represents a request to invite a member
type InviteOrganizationUserRequest struct {
	Email string                      `json:"email" validate:"required,email"`
	Type  models.OrganizationUserType `json:"type" validate:"gte=0,lte=3"`
}

// OrganizationUserResponse represents a membership in API responses
type OrganizationUserResponse struct {
	ID             uuid.UUID                     `json:"id"`
	OrganizationID uuid.UUID                     `json:"organization_id"`
	UserID         *uuid.UUID                    `json:"user_id,omitempty"`
	Email          string                        `json:"email"`
	Status         models.OrganizationUserStatus `json:"status"`
	Type           models.OrganizationUserType   `json:"type"`
	CreatedAt      string                        `json:"created_at"`
}

// OrganizationUserService defines the membership operations the handler
// depends on
type OrganizationUserService interface {
	Invite(ctx context.Context, organizationID uuid.UUID, email string, userType models.OrganizationUserType, actingUserID *uuid.UUID) (*models.OrganizationUser, error)
	Remove(ctx context.Context, organizationID, organizationUserID uuid.UUID, actingUserID *uuid.UUID) error
}

// OrganizationUserHandler handles membership HTTP requests
type OrganizationUserHandler struct {
	orgUsers    OrganizationUserService
	orgUserRepo repositories.OrganizationUserRepository
	logger      *zap.Logger
}

// NewOrganizationUserHandler creates a new OrganizationUserHandler
func NewOrganizationUserHandler(orgUsers OrganizationUserService, orgUserRepo repositories.OrganizationUserRepository, logger *zap.Logger) *OrganizationUserHandler {
	return &OrganizationUserHandler{
		orgUsers:    orgUsers,
		orgUserRepo: orgUserRepo,
		logger:      logger,
	}
}

// HandleListOrganizationUsers handles GET /v1/organizations/{orgID}/users
func (h *OrganizationUserHandler) HandleListOrganizationUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	orgID, ok := h.resolveOrgID(w, r)
	if !ok {
		return
	}

	members, err := h.orgUserRepo.GetManyDetailsByOrganizationID(ctx, orgID)
	if err != nil {
		h.logger.Error("failed to list organization users",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "Failed to retrieve organization users")
		return
	}

	responses := make([]OrganizationUserResponse, len(members))
	for i, m := range members {
		responses[i] = orgUserToResponse(m)
	}

	_ = utils.WriteOK(w, responses)
}

// HandleInviteOrganizationUser handles POST /v1/organizations/{orgID}/users
func (h *OrganizationUserHandler) HandleInviteOrganizationUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	orgID, ok := h.resolveOrgID(w, r)
	if !ok {
		return
	}

	var req InviteOrganizationUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to parse request body",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	actingUserID := middleware.GetUserIDFromContext(ctx)
	invited, err := h.orgUsers.Invite(ctx, orgID, req.Email, req.Type, actingUserID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("organization user invited",
		zap.String("request_id", requestID),
		zap.String("org_id", orgID.String()),
		zap.String("organization_user_id", invited.ID.String()))

	_ = utils.WriteCreated(w, orgUserToResponse(invited))
}

// HandleRemoveOrganizationUser handles DELETE /v1/organizations/{orgID}/users/{id}
func (h *OrganizationUserHandler) HandleRemoveOrganizationUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	orgID, ok := h.resolveOrgID(w, r)
	if !ok {
		return
	}

	orgUserID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid organization user ID format", nil)
		return
	}

	actingUserID := middleware.GetUserIDFromContext(ctx)
	if err := h.orgUsers.Remove(ctx, orgID, orgUserID, actingUserID); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("organization user removed",
		zap.String("request_id", requestID),
		zap.String("org_id", orgID.String()),
		zap.String("organization_user_id", orgUserID.String()))

	utils.WriteNoContent(w)
}

func (h *OrganizationUserHandler) resolveOrgID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
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

func orgUserToResponse(m *models.OrganizationUser) OrganizationUserResponse {
	return OrganizationUserResponse{
		ID:             m.ID,
		OrganizationID: m.OrganizationID,
		UserID:         m.UserID,
		Email:          m.Email,
		Status:         m.Status,
		Type:           m.Type,
		CreatedAt:      m.CreatedAt.UTC().Format(time.RFC3339),
	}
}
