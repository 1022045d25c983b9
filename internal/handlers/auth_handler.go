package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studyzone_backend/internal/services"
	"studyzone_backend/internal/services/dto"
)

type AuthHandler struct {
	*BaseHandler
	authService services.AuthService
	// exposeResetToken puts the raw reset token in the forgot-password response.
	// Never set in production.
	exposeResetToken bool
}

func NewAuthHandler(base *BaseHandler, authService services.AuthService, exposeResetToken bool) *AuthHandler {
	return &AuthHandler{
		BaseHandler:      base,
		authService:      authService,
		exposeResetToken: exposeResetToken,
	}
}

func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, guards RouteGuards) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", guards.RateLimit, h.Login)
		auth.POST("/forgot-password", guards.RateLimit, h.ForgotPassword)
		auth.POST("/reset-password", guards.RateLimit, h.ResetPassword)
		auth.POST("/refresh-token", h.RefreshToken)

		auth.POST("/change-password", guards.Auth, h.ChangePassword)
		auth.POST("/logout", guards.Auth, h.Logout)
		auth.GET("/profile", guards.Auth, h.Profile)
		auth.GET("/validate", guards.Auth, h.Validate)
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.ChangePasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Password changed successfully"})
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	result, err := h.authService.RequestPasswordReset(c.Request.Context(), req.Email)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	body := gin.H{"message": result.Message}
	if h.exposeResetToken && result.ResetToken != "" {
		body["resetToken"] = result.ResetToken
	}
	c.JSON(http.StatusOK, body)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Password has been reset"})
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	if err := h.authService.Logout(c.Request.Context(), userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logged out"})
}

func (h *AuthHandler) Profile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	view, err := h.authService.Profile(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Validate backs the client session guard: the token passed AuthMiddleware and
// the account still exists.
func (h *AuthHandler) Validate(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	session, err := h.authService.ValidateSession(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}
