package apperrors

import "net/http"

// Predefined auth errors. Messages are deliberately generic where a more specific one
// would reveal whether an account or token exists.
var (
	ErrDuplicateEmail = New(CodeDuplicateEmail, "auth", "Email already registered", http.StatusConflict)

	ErrInvalidCredentials = New(CodeInvalidCredentials, "auth", "Invalid credentials", http.StatusUnauthorized)

	ErrPasswordMismatch = New(CodePasswordMismatch, "auth", "Passwords do not match", http.StatusBadRequest)

	ErrInvalidToken = New(CodeInvalidToken, "auth", "Invalid token", http.StatusUnauthorized)

	ErrExpiredToken = New(CodeTokenExpired, "auth", "Token expired", http.StatusUnauthorized)

	ErrInvalidOrExpiredResetToken = New(CodeInvalidResetToken, "auth", "Invalid or expired reset token", http.StatusBadRequest)

	ErrUnauthenticated = NewUnauthenticatedError("Authentication required")

	ErrForbidden = NewForbiddenError("Insufficient permissions")

	ErrUserNotFound = New(CodeNotFound, "user", "User not found", http.StatusNotFound)

	ErrRateLimited = New(CodeRateLimited, "request", "Too many requests", http.StatusTooManyRequests)
)
