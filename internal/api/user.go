package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/cuistot/backend/internal/middleware"
	"github.com/pageza/cuistot/backend/internal/service"
	"github.com/pageza/cuistot/backend/internal/types"
)

type UserHandler struct {
	users   service.IUserService
	recipes service.IRecipeService
}

func NewUserHandler(users service.IUserService, recipes service.IRecipeService) *UserHandler {
	return &UserHandler{users: users, recipes: recipes}
}

// Favorites handles GET /api/user/favorites
func (h *UserHandler) Favorites(c *gin.Context) {
	user := middleware.CurrentUser(c)
	recipes, err := h.recipes.Favorites(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": recipes})
}

// Settings handles GET /api/user/settings
func (h *UserHandler) Settings(c *gin.Context) {
	c.JSON(http.StatusOK, service.Settings(middleware.CurrentUser(c)))
}

// UpdateSettings handles POST /api/user/settings. The three lists are
// replaced together or not at all.
func (h *UserHandler) UpdateSettings(c *gin.Context) {
	var req types.SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	if _, err := h.users.UpdateSettings(c.Request.Context(), user.ID, &req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
