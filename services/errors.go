package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeForbidden    ErrorType = "forbidden"
	ErrorTypeConflict     ErrorType = "conflict"
	ErrorTypeInternal     ErrorType = "internal"
	ErrorTypeExternal     ErrorType = "external"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// Domain error variables. The validation messages below are surfaced
// verbatim to callers, so each one names the rule that fired.

var (
	// Not Found Errors
	ErrOrganizationNotFound     = NewDomainError(ErrorTypeNotFound, "Organization not found", nil)
	ErrPolicyNotFound           = NewDomainError(ErrorTypeNotFound, "Policy not found", nil)
	ErrOrganizationUserNotFound = NewDomainError(ErrorTypeNotFound, "Organization user not found", nil)
	ErrUserNotFound             = NewDomainError(ErrorTypeNotFound, "User not found", nil)

	// Validation Errors
	ErrInvalidInput      = NewDomainError(ErrorTypeValidation, "invalid input", nil)
	ErrInvalidPolicyType = NewDomainError(ErrorTypeValidation, "Invalid policy type", nil)

	// Policy feature gate and dependency rejections
	ErrCannotUsePolicies      = NewDomainError(ErrorTypeValidation, "This organization cannot use policies.", nil)
	ErrSingleOrgNotEnabled    = NewDomainError(ErrorTypeValidation, "Single Organization policy not enabled.", nil)
	ErrRequireSsoEnabled      = NewDomainError(ErrorTypeValidation, "Single Sign-On Authentication policy is enabled.", nil)
	ErrKeyConnectorEnabled    = NewDomainError(ErrorTypeValidation, "Key Connector is enabled.", nil)
	ErrVaultTimeoutEnabled    = NewDomainError(ErrorTypeValidation, "Maximum Vault Timeout policy is enabled.", nil)
	ErrRequiresEnterprisePlan = NewDomainError(ErrorTypeValidation, "This policy is only available to Enterprise plans.", nil)

	// Authorization Errors
	ErrUnauthorized = NewDomainError(ErrorTypeUnauthorized, "unauthorized", nil)
	ErrInvalidToken = NewDomainError(ErrorTypeUnauthorized, "invalid authentication token", nil)
	ErrForbidden    = NewDomainError(ErrorTypeForbidden, "access forbidden", nil)

	// Conflict Errors
	ErrConcurrentUpdate              = NewDomainError(ErrorTypeConflict, "concurrent update detected", nil)
	ErrOrganizationUserAlreadyExists = NewDomainError(ErrorTypeConflict, "User is already a member of this organization.", nil)

	// Internal Errors
	ErrInternal          = NewDomainError(ErrorTypeInternal, "internal server error", nil)
	ErrDatabaseError     = NewDomainError(ErrorTypeInternal, "database error", nil)
	ErrTransactionFailed = NewDomainError(ErrorTypeInternal, "transaction failed", nil)

	// External Collaborator Errors
	ErrMailDeliveryFailed = NewDomainError(ErrorTypeExternal, "mail delivery failed", nil)
)

// Error type checking helper functions

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return GetErrorType(err) == ErrorTypeNotFound
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return GetErrorType(err) == ErrorTypeValidation
}

// IsUnauthorizedError checks if an error is an unauthorized error
func IsUnauthorizedError(err error) bool {
	return GetErrorType(err) == ErrorTypeUnauthorized
}

// IsForbiddenError checks if an error is a forbidden error
func IsForbiddenError(err error) bool {
	return GetErrorType(err) == ErrorTypeForbidden
}

// IsConflictError checks if an error is a conflict error
func IsConflictError(err error) bool {
	return GetErrorType(err) == ErrorTypeConflict
}

// IsInternalError checks if an error is an internal error
func IsInternalError(err error) bool {
	return GetErrorType(err) == ErrorTypeInternal
}

// IsExternalError checks if an error is an external collaborator error
func IsExternalError(err error) bool {
	return GetErrorType(err) == ErrorTypeExternal
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapError wraps an error with additional context
func WrapError(errType ErrorType, message string, err error) error {
	return NewDomainError(errType, message, err)
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}
