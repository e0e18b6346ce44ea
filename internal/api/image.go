package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/cuistot/backend/internal/middleware"
	"github.com/pageza/cuistot/backend/internal/service"
	"github.com/pageza/cuistot/backend/internal/types"
)

type ImageHandler struct {
	recipes service.IRecipeService
	images  service.IImageService
}

func NewImageHandler(recipes service.IRecipeService, images service.IImageService) *ImageHandler {
	return &ImageHandler{recipes: recipes, images: images}
}

// Download handles GET /api/recipes/:name/image
func (h *ImageHandler) Download(c *gin.Context) {
	recipe, ok := storedRecipe(c, h.recipes)
	if !ok {
		return
	}
	url, err := h.images.DownloadURL(c.Request.Context(), recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "expiresIn": int(service.ImageURLTTL.Seconds())})
}

// Upload handles PUT /api/recipes/:name/image and returns where to PUT the file
func (h *ImageHandler) Upload(c *gin.Context) {
	recipe, ok := storedRecipe(c, h.recipes)
	if !ok {
		return
	}
	var req types.ImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	url, err := h.images.UploadURL(c.Request.Context(), recipe, user.ID, req.ContentType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "expiresIn": int(service.ImageURLTTL.Seconds())})
}
