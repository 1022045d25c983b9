package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studyzone_backend/internal/middleware"
	"studyzone_backend/internal/models"
	"studyzone_backend/internal/services"
	"studyzone_backend/internal/services/dto"
	"studyzone_backend/pkg/apperrors"
)

type UserHandler struct {
	*BaseHandler
	userService services.UserService
}

func NewUserHandler(base *BaseHandler, userService services.UserService) *UserHandler {
	return &UserHandler{
		BaseHandler: base,
		userService: userService,
	}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup, guards RouteGuards) {
	admin := rg.Group("/admin")
	admin.Use(guards.Auth, middleware.RequireRoles(models.RoleAdmin))
	{
		admin.POST("/users/:id/roles", h.GrantRole)
	}

	mentor := rg.Group("/mentor")
	mentor.Use(guards.Auth, middleware.RequireRoles(models.RoleMentor, models.RoleAdmin))
	{
		mentor.GET("/overview", h.MentorOverview)
	}
}

func (h *UserHandler) GrantRole(c *gin.Context) {
	actorID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.GrantRoleRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	role, valid := models.ParseRole(req.Role)
	if !valid {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Unknown role"))
		return
	}

	view, err := h.userService.GrantRole(c.Request.Context(), actorID, c.Param("id"), role)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *UserHandler) MentorOverview(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	overview, err := h.userService.MentorOverview(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}
