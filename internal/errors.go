package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrorTypeTransport    ErrorType = "TRANSPORT_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidPosition  ErrorCode = "INVALID_POSITION"
	ErrCodeInvalidStatus    ErrorCode = "INVALID_STATUS"
	ErrCodeInvalidDocument  ErrorCode = "INVALID_JOURNEY_DOCUMENT"
	ErrCodeInvalidBalance   ErrorCode = "INVALID_CREDIT_BALANCE"
	ErrCodeInvalidDetails   ErrorCode = "INVALID_PAYMENT_DETAILS"

	ErrCodeCarrierNotFound       ErrorCode = "CARRIER_NOT_FOUND"
	ErrCodeGatewayNotFound       ErrorCode = "GATEWAY_NOT_FOUND"
	ErrCodeMenuNotFound          ErrorCode = "MENU_NOT_FOUND"
	ErrCodeCategoryNotFound      ErrorCode = "CATEGORY_NOT_FOUND"
	ErrCodeJourneyNotFound       ErrorCode = "JOURNEY_NOT_FOUND"
	ErrCodeVersionNotFound       ErrorCode = "JOURNEY_VERSION_NOT_FOUND"
	ErrCodeRegistrationNotFound  ErrorCode = "REGISTRATION_NOT_FOUND"
	ErrCodePaymentMethodNotFound ErrorCode = "PAYMENT_METHOD_NOT_FOUND"
	ErrCodeTransactionNotFound   ErrorCode = "TRANSACTION_NOT_FOUND"

	ErrCodeAlreadyPublished    ErrorCode = "JOURNEY_ALREADY_PUBLISHED"
	ErrCodeVersionPending      ErrorCode = "VERSION_ALREADY_PENDING"
	ErrCodeReorderFailed       ErrorCode = "REORDER_FAILED"
	ErrCodeDefaultMethodInUse  ErrorCode = "DEFAULT_METHOD_IN_USE"
	ErrCodeTransactionSettled  ErrorCode = "TRANSACTION_SETTLED"
	ErrCodeMutationInFlight    ErrorCode = "MUTATION_IN_FLIGHT"
	ErrCodeCarrierCountryScope ErrorCode = "CARRIER_OUTSIDE_COUNTRY"
	ErrCodeJourneyNotPublished ErrorCode = "JOURNEY_NOT_PUBLISHED"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeOperatorInactive   ErrorCode = "OPERATOR_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"

	ErrCodeUpstreamFailure ErrorCode = "UPSTREAM_FAILURE"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

// NewValidationFieldErrors bundles several field violations into one error so
// a form can surface all of them at once.
func NewValidationFieldErrors(errs []ValidationError) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details:    ValidationErrors{Errors: errs},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewTransportError wraps a failed or timed-out call to the storage/network
// layer. Transient by convention; this layer performs no automatic retry.
func NewTransportError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeTransport,
		Code:       ErrCodeUpstreamFailure,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

var (
	ErrCarrierNotFound       = NewNotFoundError("Carrier not found", ErrCodeCarrierNotFound)
	ErrGatewayNotFound       = NewNotFoundError("Gateway not found", ErrCodeGatewayNotFound)
	ErrMenuNotFound          = NewNotFoundError("Gateway menu not found", ErrCodeMenuNotFound)
	ErrCategoryNotFound      = NewNotFoundError("Journey category not found", ErrCodeCategoryNotFound)
	ErrJourneyNotFound       = NewNotFoundError("Journey not found", ErrCodeJourneyNotFound)
	ErrVersionNotFound       = NewNotFoundError("Journey version not found", ErrCodeVersionNotFound)
	ErrRegistrationNotFound  = NewNotFoundError("Registration not found", ErrCodeRegistrationNotFound)
	ErrPaymentMethodNotFound = NewNotFoundError("Payment method not found", ErrCodePaymentMethodNotFound)
	ErrTransactionNotFound   = NewNotFoundError("Payment transaction not found", ErrCodeTransactionNotFound)

	ErrAlreadyPublished    = NewConflictError("Journey is already published", ErrCodeAlreadyPublished)
	ErrVersionPending      = NewConflictError("Journey already has an unpublished version pending", ErrCodeVersionPending)
	ErrTransactionSettled  = NewConflictError("Transaction is already settled", ErrCodeTransactionSettled)
	ErrMutationInFlight    = NewConflictError("Another mutation for this record is still pending", ErrCodeMutationInFlight)
	ErrJourneyNotPublished = NewConflictError("Journey must be published before it can be registered", ErrCodeJourneyNotPublished)

	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrOperatorInactive   = NewForbiddenError("Operator account is inactive", ErrCodeOperatorInactive)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
