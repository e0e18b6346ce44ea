package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/cuistot/backend/internal/middleware"
	"github.com/pageza/cuistot/backend/internal/schema"
	"github.com/pageza/cuistot/backend/internal/service"
	"github.com/pageza/cuistot/backend/internal/types"
)

const maxBodyBytes = 64 << 10

type CommentHandler struct {
	recipes service.IRecipeService
	ratings service.IRatingService
}

func NewCommentHandler(recipes service.IRecipeService, ratings service.IRatingService) *CommentHandler {
	return &CommentHandler{recipes: recipes, ratings: ratings}
}

func commentID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		validationFailed(c, map[string]string{"id": "must be a positive integer"})
		return 0, false
	}
	return uint(id), true
}

// List handles GET /api/recipes/:name/comments
func (h *CommentHandler) List(c *gin.Context) {
	recipe, ok := storedRecipe(c, h.recipes)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	ratings, err := h.ratings.ListRatings(ctx, recipe.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	hasVoted := false
	if user := middleware.CurrentUser(c); user != nil {
		if hasVoted, err = h.ratings.HasVoted(ctx, recipe.ID, user.ID); err != nil {
			respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"ratings": ratings, "hasVoted": hasVoted})
}

// Create handles POST /api/recipes/:name/comments: one vote per user and
// recipe, with an optional comment.
func (h *CommentHandler) Create(c *gin.Context) {
	recipe, ok := storedRecipe(c, h.recipes)
	if !ok {
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		respondBindError(c, err)
		return
	}
	req, err := schema.Decode[types.RatingRequest](schema.Rating, string(body))
	if err != nil {
		var invalid *schema.ValidationError
		if errors.As(err, &invalid) {
			fields := make(map[string]string, len(invalid.Fields))
			for _, f := range invalid.Fields {
				fields[f.Path] = f.Message
			}
			validationFailed(c, fields)
			return
		}
		respondBindError(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	rating, err := h.ratings.Rate(c.Request.Context(), recipe.ID, user.ID, req.Rating, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rating)
}

// Replies handles GET /api/recipes/:name/comments/:id
func (h *CommentHandler) Replies(c *gin.Context) {
	recipe, ok := storedRecipe(c, h.recipes)
	if !ok {
		return
	}
	id, ok := commentID(c)
	if !ok {
		return
	}
	replies, err := h.ratings.Replies(c.Request.Context(), recipe.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, replies)
}

// Reply handles POST /api/recipes/:name/comments/:id
func (h *CommentHandler) Reply(c *gin.Context) {
	recipe, ok := storedRecipe(c, h.recipes)
	if !ok {
		return
	}
	id, ok := commentID(c)
	if !ok {
		return
	}
	var req types.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	reply, err := h.ratings.Reply(c.Request.Context(), recipe.ID, user.ID, id, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reply)
}
