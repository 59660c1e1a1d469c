package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/naykakashima/timetable-api/pkg/errors"
	"github.com/naykakashima/timetable-api/pkg/response"
)

// UserHandler exposes user profile endpoints.
type UserHandler struct {
	service userService
}

// NewUserHandler creates a new handler.
func NewUserHandler(svc userService) *UserHandler {
	return &UserHandler{service: svc}
}

// Get godoc
// @Summary Get user profile
// @Description Return a user's public profile. Users may only read their own profile.
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	id := c.Param("id")
	if id != claims.UserID {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	info, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, info)
}
