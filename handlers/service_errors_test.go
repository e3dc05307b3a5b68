package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/calvinballing/server/services"
	"github.com/calvinballing/server/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandleServiceError(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "not found error",
			err:            services.ErrPolicyNotFound,
			expectedStatus: http.StatusNotFound,
			expectedError:  "not_found",
		},
		{
			name:           "validation error",
			err:            services.ErrInvalidInput,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "bad_request",
		},
		{
			name:           "dependency rejection surfaces its reason",
			err:            services.ErrSingleOrgNotEnabled,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "bad_request",
		},
		{
			name:           "feature gate rejection",
			err:            services.ErrCannotUsePolicies,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "bad_request",
		},
		{
			name:           "unauthorized error",
			err:            services.ErrUnauthorized,
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "unauthorized",
		},
		{
			name:           "forbidden error",
			err:            services.ErrForbidden,
			expectedStatus: http.StatusForbidden,
			expectedError:  "forbidden",
		},
		{
			name:           "conflict error",
			err:            services.ErrConcurrentUpdate,
			expectedStatus: http.StatusConflict,
			expectedError:  "conflict",
		},
		{
			name:           "external collaborator error",
			err:            services.ErrMailDeliveryFailed,
			expectedStatus: http.StatusBadGateway,
			expectedError:  "bad_gateway",
		},
		{
			name:           "internal error",
			err:            services.ErrInternal,
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "internal_error",
		},
		{
			name:           "unknown error",
			err:            errors.New("some unknown error"),
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleServiceError(w, tt.err, logger)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response utils.ErrorResponse
			err := json.NewDecoder(w.Body).Decode(&response)
			require.NoError(t, err)

			assert.Equal(t, tt.expectedError, response.Error)
			assert.NotEmpty(t, response.Message)
		})
	}
}

func TestHandleServiceError_RejectionReasonVerbatim(t *testing.T) {
	logger := zap.NewNop()

	w := httptest.NewRecorder()
	HandleServiceError(w, services.ErrKeyConnectorEnabled, logger)

	var response utils.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "Key Connector is enabled.", response.Message)
}

func TestHandleServiceErrorWithDetails(t *testing.T) {
	logger := zap.NewNop()

	// Create error with details
	err := services.NewDomainError(services.ErrorTypeValidation, "invalid policy data", nil).
		WithDetail("field", "min_length").
		WithDetail("reason", "must be an integer")

	w := httptest.NewRecorder()
	HandleServiceError(w, err, logger)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response utils.ErrorResponse
	err2 := json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err2)

	assert.Equal(t, "bad_request", response.Error)
	assert.NotNil(t, response.Details)
	assert.Equal(t, "min_length", response.Details["field"])
	assert.Equal(t, "must be an integer", response.Details["reason"])
}

func TestHandleServiceErrorNil(t *testing.T) {
	logger := zap.NewNop()
	w := httptest.NewRecorder()

	HandleServiceError(w, nil, logger)

	// Should not write anything
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestHandleValidationError(t *testing.T) {
	logger := zap.NewNop()

	t.Run("custom validation error", func(t *testing.T) {
		fields := map[string]string{
			"email": "email is required",
			"name":  "name must be at least 3 characters",
		}
		err := &utils.ValidationError{
			Message: "Validation failed",
			Fields:  fields,
		}

		w := httptest.NewRecorder()
		HandleValidationError(w, err, logger)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response utils.ErrorResponse
		err2 := json.NewDecoder(w.Body).Decode(&response)
		require.NoError(t, err2)

		assert.Equal(t, "bad_request", response.Error)
		assert.Equal(t, "Validation failed", response.Message)
		assert.NotNil(t, response.Details)
		assert.Equal(t, "email is required", response.Details["email"])
		assert.Equal(t, "name must be at least 3 characters", response.Details["name"])
	})

	t.Run("generic error", func(t *testing.T) {
		err := errors.New("generic validation error")

		w := httptest.NewRecorder()
		HandleValidationError(w, err, logger)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response utils.ErrorResponse
		err2 := json.NewDecoder(w.Body).Decode(&response)
		require.NoError(t, err2)

		assert.Equal(t, "bad_request", response.Error)
		assert.Equal(t, "generic validation error", response.Message)
	})
}
