package apperrors

import (
	"github.com/gin-gonic/gin"
)

// ErrorResponse - JSON body of every failed request
type ErrorResponse struct {
	Code    ErrorCode    `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// AsAppError - tries to convert err into *AppError
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// ToResponse maps err to a status code and body. Anything that is not an AppError,
// and every 5xx, is reduced to the generic internal message.
func ToResponse(err error) (int, ErrorResponse) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = InternalError(err)
	}
	if appErr.HTTPCode >= 500 {
		return appErr.HTTPCode, ErrorResponse{Code: CodeInternalError, Message: "Internal server error"}
	}
	return appErr.HTTPCode, ErrorResponse{Code: appErr.Code, Message: appErr.Message, Errors: appErr.Details}
}

// HandleError writes err to the client and aborts the gin chain.
// Callers log server-side failures; nothing about the cause reaches the body.
func HandleError(c *gin.Context, err error) {
	status, body := ToResponse(err)
	c.AbortWithStatusJSON(status, body)
}
