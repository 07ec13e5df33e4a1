package directory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"
)

// ErrorCategory represents different categories of directory errors.
type ErrorCategory string

const (
	ErrorCategoryConnection     ErrorCategory = "connection"
	ErrorCategoryAuthentication ErrorCategory = "authentication"
	ErrorCategoryPermission     ErrorCategory = "permission"
	ErrorCategoryNotFound       ErrorCategory = "not_found"
	ErrorCategoryValidation     ErrorCategory = "validation"
	ErrorCategoryServer         ErrorCategory = "server"
	ErrorCategoryUnknown        ErrorCategory = "unknown"
)

// RetryableError indicates an error that can be retried.
type RetryableError interface {
	error
	IsRetryable() bool
}

// DirectoryError provides structured error information for directory operations.
type DirectoryError struct {
	Operation  string        // The operation that failed
	Category   ErrorCategory // Error category
	ResultCode uint16        // LDAP result code, if the server reported one
	Message    string        // Human-readable message
	Retryable  bool          // Whether the error is retryable
	Cause      error         // Underlying error
}

func (e *DirectoryError) Error() string {
	var parts []string

	if e.ResultCode > 0 {
		parts = append(parts, fmt.Sprintf("directory %s failed (code %d)", e.Operation, e.ResultCode))
	} else {
		parts = append(parts, fmt.Sprintf("directory %s failed", e.Operation))
	}

	if e.Message != "" {
		parts = append(parts, e.Message)
	}

	return strings.Join(parts, ": ")
}

func (e *DirectoryError) IsRetryable() bool {
	return e.Retryable
}

func (e *DirectoryError) Unwrap() error {
	return e.Cause
}

// NewDirectoryError wraps err with operation context and classification.
func NewDirectoryError(operation string, err error) *DirectoryError {
	if err == nil {
		return nil
	}

	derr := &DirectoryError{
		Operation: operation,
		Cause:     err,
	}

	var lerr *ldap.Error
	if errors.As(err, &lerr) {
		derr.ResultCode = lerr.ResultCode
		derr.Category = categorizeResultCode(lerr.ResultCode)
		derr.Retryable = isResultCodeRetryable(lerr.ResultCode)
		derr.Message = ldap.LDAPResultCodeMap[lerr.ResultCode]
	} else {
		derr.Category = categorizeGenericError(err)
		derr.Retryable = isGenericErrorRetryable(err)
		derr.Message = err.Error()
	}

	return derr
}

// WrapError wraps an error with operation context, leaving already-wrapped
// errors alone.
func WrapError(operation string, err error) error {
	if err == nil {
		return nil
	}

	var derr *DirectoryError
	if errors.As(err, &derr) {
		if derr.Operation == "" {
			derr.Operation = operation
		}
		return derr
	}

	return NewDirectoryError(operation, err)
}

// categorizeResultCode categorizes an error based on LDAP result code.
func categorizeResultCode(code uint16) ErrorCategory {
	switch code {
	case ldap.LDAPResultInvalidCredentials,
		ldap.LDAPResultInappropriateAuthentication,
		ldap.LDAPResultStrongAuthRequired:
		return ErrorCategoryAuthentication

	case ldap.LDAPResultInsufficientAccessRights,
		ldap.LDAPResultUnwillingToPerform:
		return ErrorCategoryPermission

	case ldap.LDAPResultNoSuchObject,
		ldap.LDAPResultNoSuchAttribute,
		ldap.LDAPResultUndefinedAttributeType:
		return ErrorCategoryNotFound

	case ldap.LDAPResultInvalidAttributeSyntax,
		ldap.LDAPResultConstraintViolation,
		ldap.LDAPResultInvalidDNSyntax,
		ldap.LDAPResultFilterError,
		ldap.LDAPResultParamError:
		return ErrorCategoryValidation

	case ldap.LDAPResultBusy,
		ldap.LDAPResultUnavailable,
		ldap.LDAPResultTimeLimitExceeded,
		ldap.LDAPResultAdminLimitExceeded:
		return ErrorCategoryServer

	case ldap.LDAPResultServerDown,
		ldap.LDAPResultConnectError,
		ldap.LDAPResultProtocolError,
		ldap.ErrorNetwork:
		return ErrorCategoryConnection

	default:
		return ErrorCategoryUnknown
	}
}

// categorizeGenericError categorizes non-LDAP errors.
func categorizeGenericError(err error) ErrorCategory {
	errStr := strings.ToLower(err.Error())

	if strings.Contains(errStr, "connection") ||
		strings.Contains(errStr, "network") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "connection reset") {
		return ErrorCategoryConnection
	}

	if strings.Contains(errStr, "credentials") ||
		strings.Contains(errStr, "authentication") {
		return ErrorCategoryAuthentication
	}

	return ErrorCategoryUnknown
}

// isResultCodeRetryable determines if an LDAP result code indicates a
// retryable condition.
func isResultCodeRetryable(code uint16) bool {
	switch code {
	case ldap.LDAPResultBusy,
		ldap.LDAPResultUnavailable,
		ldap.LDAPResultServerDown,
		ldap.LDAPResultTimeLimitExceeded,
		ldap.LDAPResultConnectError,
		ldap.ErrorNetwork:
		return true
	default:
		return false
	}
}

// isGenericErrorRetryable determines if a generic error is retryable.
func isGenericErrorRetryable(err error) bool {
	errStr := strings.ToLower(err.Error())

	retryablePatterns := []string{
		"connection",
		"timeout",
		"network",
		"broken pipe",
		"connection reset",
		"temporary failure",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

// GetErrorCategory returns the category of an error.
func GetErrorCategory(err error) ErrorCategory {
	if err == nil {
		return ErrorCategoryUnknown
	}

	var derr *DirectoryError
	if errors.As(err, &derr) {
		return derr.Category
	}

	var lerr *ldap.Error
	if errors.As(err, &lerr) {
		return categorizeResultCode(lerr.ResultCode)
	}

	return categorizeGenericError(err)
}

// IsRetryableError checks if an error is retryable.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var retryable RetryableError
	if errors.As(err, &retryable) {
		return retryable.IsRetryable()
	}

	return isGenericErrorRetryable(err)
}

// IsTransportError reports whether err is a hard connection/protocol fault
// rather than a result code reported by the directory. Transport faults mean
// the directory is unreachable or misbehaving; callers that otherwise fail
// open on unsuccessful searches must surface these.
//
// go-ldap reserves result codes >= 200 for client-side failures (network
// errors, unexpected messages); those and server-down/connect/protocol codes
// count as transport faults, as does any non-LDAP error.
func IsTransportError(err error) bool {
	if err == nil {
		return false
	}

	var lerr *ldap.Error
	if errors.As(err, &lerr) {
		if lerr.ResultCode >= ldap.ErrorNetwork {
			return true
		}
		switch lerr.ResultCode {
		case ldap.LDAPResultServerDown,
			ldap.LDAPResultConnectError,
			ldap.LDAPResultProtocolError:
			return true
		}
		return false
	}

	var derr *DirectoryError
	if errors.As(err, &derr) {
		if derr.ResultCode > 0 {
			return derr.Category == ErrorCategoryConnection
		}
		// No result code means the failure happened before the directory
		// could answer.
		return true
	}

	// Anything that is not an LDAP error never carried a server verdict.
	return true
}

// IsNotFoundError checks if an error indicates a "not found" condition.
func IsNotFoundError(err error) bool {
	return GetErrorCategory(err) == ErrorCategoryNotFound
}

// IsAuthenticationError checks if an error indicates an authentication problem.
func IsAuthenticationError(err error) bool {
	return GetErrorCategory(err) == ErrorCategoryAuthentication
}

// ConnectionError represents connection-related errors raised by the pool.
type ConnectionError struct {
	message   string
	retryable bool
	cause     error
}

func (e *ConnectionError) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *ConnectionError) IsRetryable() bool {
	return e.retryable
}

func (e *ConnectionError) Unwrap() error {
	return e.cause
}

// NewConnectionError creates a new connection error.
func NewConnectionError(message string, retryable bool, cause error) *ConnectionError {
	return &ConnectionError{
		message:   message,
		retryable: retryable,
		cause:     cause,
	}
}
