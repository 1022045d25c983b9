package apperrors

// ErrorCode - machine-readable error code returned to clients
type ErrorCode string

// System and generic codes
const (
	CodeInternalError    ErrorCode = "INTERNAL_ERROR"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeRateLimited      ErrorCode = "RATE_LIMITED"
)

// Authentication and authorization
const (
	CodeUnauthenticated    ErrorCode = "UNAUTHENTICATED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	CodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	CodeInvalidResetToken  ErrorCode = "INVALID_OR_EXPIRED_RESET_TOKEN"
	CodeDuplicateEmail     ErrorCode = "DUPLICATE_EMAIL"
	CodePasswordMismatch   ErrorCode = "PASSWORD_MISMATCH"
)
