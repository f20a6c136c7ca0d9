package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/gin-gonic/gin"
)

// userHandler handles HTTP requests related to console users.
type userHandler struct {
	userService portssvc.UserSvcFacade
}

// newUserHandler creates a new userHandler.
func newUserHandler(us portssvc.UserSvcFacade) *userHandler {
	return &userHandler{
		userService: us,
	}
}

// registerUserRoutes registers the read-only user routes. Users are created through /auth/register.
func registerUserRoutes(rg *gin.RouterGroup, userService portssvc.UserSvcFacade, auth *AuthHandler) {
	h := newUserHandler(userService)

	rg.GET("/auth/user", auth.CurrentUser)

	users := rg.Group("/users")
	{
		users.GET("/me", auth.CurrentUser)
		users.GET("/:id", h.getUser)
	}
}

// getUser godoc
// @Summary Get a user by ID
// @Description Used by the console to resolve audit fields such as createdBy
// @Tags users
// @Produce  json
// @Param   id path string true "User ID"
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "User not found"
// @Failure 500 {object} ErrorResponse "Failed to retrieve user"
// @Security BearerAuth
// @Router /users/{id} [get]
func (h *userHandler) getUser(c *gin.Context) {
	user, err := h.userService.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err, "Failed to retrieve user")
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}
