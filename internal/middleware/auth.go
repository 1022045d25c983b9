package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"studyzone_backend/internal/auth"
	"studyzone_backend/internal/logger"
	"studyzone_backend/internal/models"
	"studyzone_backend/pkg/apperrors"
	"studyzone_backend/pkg/contextkeys"
)

// TokenVerifier checks an access token. Errors are *apperrors.AppError.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

// AuthMiddleware requires a valid bearer access token and stores the caller's
// identity in the gin context.
func AuthMiddleware(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			apperrors.HandleError(c, apperrors.ErrUnauthenticated)
			return
		}

		claims, err := tokens.VerifyAccessToken(token)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		c.Set(contextkeys.UserIDKey, claims.Subject)
		c.Set(contextkeys.EmailKey, claims.Email)
		c.Set(contextkeys.RolesKey, auth.RolesFromClaims(claims))
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.Subject))
		logger.CtxDebug(c.Request.Context(), "request authenticated", "path", c.FullPath())
		c.Next()
	}
}

// RequireRoles lets the request through when the caller holds any of roles.
// It must run after AuthMiddleware.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserID(c) == "" {
			apperrors.HandleError(c, apperrors.ErrUnauthenticated)
			return
		}
		if !models.HasAnyRole(GetRoles(c), roles...) {
			logger.CtxWarn(c.Request.Context(), "access denied",
				"path", c.FullPath(),
				"required", roles,
			)
			apperrors.HandleError(c, apperrors.ErrForbidden)
			return
		}
		c.Next()
	}
}

// GetUserID returns the authenticated user's id, or "" outside AuthMiddleware.
func GetUserID(c *gin.Context) string {
	return c.GetString(contextkeys.UserIDKey)
}

// GetRoles returns the authenticated user's roles as carried by the token.
func GetRoles(c *gin.Context) []models.Role {
	v, ok := c.Get(contextkeys.RolesKey)
	if !ok {
		return nil
	}
	roles, _ := v.([]models.Role)
	return roles
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
