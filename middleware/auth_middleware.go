package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/calvinballing/server/config"
	"github.com/calvinballing/server/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenValidator defines the interface for validating JWT tokens
type TokenValidator interface {
	// ValidateToken validates a JWT token and returns claims
	ValidateToken(ctx context.Context, token string) (*Claims, error)
}

// JWTValidator validates HMAC-signed tokens issued by this server
type JWTValidator struct {
	secret []byte
	issuer string
}

// NewJWTValidator creates a new JWTValidator
func NewJWTValidator(cfg config.AuthConfig) *JWTValidator {
	return &JWTValidator{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
	}
}

// ValidateToken parses and verifies the token signature, expiry and issuer
func (v *JWTValidator) ValidateToken(_ context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithIssuer(v.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// AuthMiddleware provides authentication middleware functionality
type AuthMiddleware struct {
	validator TokenValidator
	logger    *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(validator TokenValidator, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		validator: validator,
		logger:    logger,
	}
}

// RequireAuth is a middleware that requires a valid JWT token
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		token := extractToken(r)
		if token == "" {
			m.logger.Warn("missing token",
				zap.String("request_id", requestID))
			_ = utils.WriteUnauthorized(w, "Missing or invalid authorization")
			return
		}

		// Validate token
		claims, err := m.validator.ValidateToken(ctx, token)
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("request_id", requestID),
				zap.Error(err))
			_ = utils.WriteUnauthorized(w, "Invalid or expired token")
			return
		}

		// Add claims to context
		ctx = WithClaims(ctx, claims)

		m.logger.Debug("authentication successful",
			zap.String("request_id", requestID),
			zap.String("sub", claims.Subject),
			zap.String("email", claims.Email))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ExtractTenant is a middleware that extracts tenant information from claims.
// This should be called after RequireAuth.
func (m *AuthMiddleware) ExtractTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		claims := GetClaimsFromContext(ctx)
		if claims == nil {
			m.logger.Error("claims not found in context",
				zap.String("request_id", requestID))
			_ = utils.WriteUnauthorized(w, "Authentication required")
			return
		}

		orgID, err := uuid.Parse(claims.OrganizationID)
		if err != nil {
			m.logger.Error("invalid org_id in claims",
				zap.String("request_id", requestID),
				zap.String("org_id", claims.OrganizationID),
				zap.Error(err))
			_ = utils.WriteForbidden(w, "Invalid organization ID")
			return
		}
		ctx = WithOrgID(ctx, orgID)

		// Parse user ID if present
		if claims.UserID != "" {
			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				m.logger.Warn("invalid user_id in claims",
					zap.String("request_id", requestID),
					zap.String("user_id", claims.UserID),
					zap.Error(err))
			} else {
				ctx = WithUserID(ctx, &userID)
			}
		}

		m.logger.Debug("tenant information extracted",
			zap.String("request_id", requestID),
			zap.String("org_id", orgID.String()))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken pulls the bearer token from the Authorization header
func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
