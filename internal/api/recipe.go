package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/cuistot/backend/internal/middleware"
	"github.com/pageza/cuistot/backend/internal/models"
	"github.com/pageza/cuistot/backend/internal/service"
	"github.com/pageza/cuistot/backend/internal/types"
)

const maxNameLength = 200

// SearchQuery is the query string of GET /api/recipes
type SearchQuery struct {
	Search   string `form:"search" binding:"max=200"`
	Calories string `form:"calories"`
}

type recipeResponse struct {
	*models.Recipe
	IsFavorite bool `json:"isFavorite"`
}

type RecipeHandler struct {
	recipes    service.IRecipeService
	resolver   service.IRecipeResolver
	generators service.IGenerators
	log        *zap.Logger
}

func NewRecipeHandler(recipes service.IRecipeService, resolver service.IRecipeResolver, generators service.IGenerators, log *zap.Logger) *RecipeHandler {
	return &RecipeHandler{
		recipes:    recipes,
		resolver:   resolver,
		generators: generators,
		log:        log.Named("recipes"),
	}
}

func userContext(c *gin.Context) *types.UserContext {
	return service.UserContextFor(middleware.CurrentUser(c))
}

// recipeName reads and checks the :name path segment
func recipeName(c *gin.Context) (string, bool) {
	name := strings.TrimSpace(c.Param("name"))
	switch {
	case name == "":
		validationFailed(c, map[string]string{"name": "is required"})
		return "", false
	case len(name) > maxNameLength:
		validationFailed(c, map[string]string{"name": "must be at most 200 characters"})
		return "", false
	}
	return name, true
}

// storedRecipe loads the named recipe without generating it
func storedRecipe(c *gin.Context, recipes service.IRecipeService) (*models.Recipe, bool) {
	name, ok := recipeName(c)
	if !ok {
		return nil, false
	}
	recipe, err := recipes.FindByName(c.Request.Context(), name)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return recipe, true
}

// resolvedRecipe loads the named recipe, generating it on a miss
func (h *RecipeHandler) resolvedRecipe(c *gin.Context) (*models.Recipe, bool) {
	name, ok := recipeName(c)
	if !ok {
		return nil, false
	}
	recipe, err := h.resolver.ResolveRecipe(c.Request.Context(), name, userContext(c))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return recipe, true
}

func parseCalories(s string) (int, int, bool) {
	lo, hi, found := strings.Cut(s, "-")
	if !found {
		return 0, 0, false
	}
	minCal, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return 0, 0, false
	}
	maxCal, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return 0, 0, false
	}
	if minCal < 0 || maxCal < minCal {
		return 0, 0, false
	}
	return minCal, maxCal, true
}

// Search handles GET /api/recipes. The generated ranking comes first,
// followed by stored recipes whose title matches and that it did not list.
func (h *RecipeHandler) Search(c *gin.Context) {
	var q SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	ctx := c.Request.Context()

	if q.Calories != "" {
		minCal, maxCal, ok := parseCalories(q.Calories)
		if !ok {
			validationFailed(c, map[string]string{"calories": "must be a range such as 200-500"})
			return
		}
		items, err := h.resolver.SearchByCalories(ctx, minCal, maxCal, userContext(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
		return
	}

	query := strings.TrimSpace(q.Search)
	if query == "" {
		validationFailed(c, map[string]string{"search": "is required"})
		return
	}

	items, err := h.resolver.SearchRecipes(ctx, query, nil, userContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	stored, err := h.recipes.SearchByTitle(ctx, query, service.SearchResultCount)
	if err != nil {
		respondError(c, err)
		return
	}
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		seen[item.Title] = true
	}
	for _, r := range stored {
		if !seen[r.Title] {
			items = append(items, types.RankedCandidate{Title: r.Title, Description: r.Description})
		}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Ranked handles GET /api/recipes/ranked: stored candidates filtered and
// ordered by the provider.
func (h *RecipeHandler) Ranked(c *gin.Context) {
	var q SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	query := strings.TrimSpace(q.Search)
	if query == "" {
		validationFailed(c, map[string]string{"search": "is required"})
		return
	}
	ctx := c.Request.Context()

	candidates, err := h.recipes.NearestCandidates(ctx, query, service.SearchResultCount*2)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(candidates) == 0 {
		c.JSON(http.StatusOK, gin.H{"items": []types.RankedCandidate{}})
		return
	}

	items, err := h.resolver.SearchRecipes(ctx, query, candidates, userContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Last handles GET /api/recipes/last
func (h *RecipeHandler) Last(c *gin.Context) {
	recipe, err := h.recipes.Last(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// Seasons handles GET /api/recipes/seasons
func (h *RecipeHandler) Seasons(c *gin.Context) {
	names, err := h.generators.Seasonal(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": names})
}

// Get handles GET /api/recipes/:name
func (h *RecipeHandler) Get(c *gin.Context) {
	recipe, ok := h.resolvedRecipe(c)
	if !ok {
		return
	}

	resp := recipeResponse{Recipe: recipe}
	if user := middleware.CurrentUser(c); user != nil {
		fav, err := h.recipes.IsFavorite(c.Request.Context(), user.ID, recipe.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		resp.IsFavorite = fav
	}
	c.JSON(http.StatusOK, resp)
}

// Rating handles GET /api/recipes/:name/rating
func (h *RecipeHandler) Rating(c *gin.Context) {
	recipe, ok := storedRecipe(c, h.recipes)
	if !ok {
		return
	}
	avg, err := h.recipes.AverageRating(c.Request.Context(), recipe.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rating": avg})
}

// Ingredients handles GET /api/recipes/:name/ingredients
func (h *RecipeHandler) Ingredients(c *gin.Context) {
	recipe, ok := storedRecipe(c, h.recipes)
	if !ok {
		return
	}
	ingredients, err := h.recipes.Ingredients(c.Request.Context(), recipe.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

// Similar handles GET /api/recipes/:name/similar
func (h *RecipeHandler) Similar(c *gin.Context) {
	recipe, ok := h.resolvedRecipe(c)
	if !ok {
		return
	}
	names, err := h.generators.Similar(c.Request.Context(), recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": names})
}

// SideDish handles GET /api/recipes/:name/sideDish. It only needs the name,
// so nothing is generated or stored for the recipe itself.
func (h *RecipeHandler) SideDish(c *gin.Context) {
	name, ok := recipeName(c)
	if !ok {
		return
	}
	dishes, err := h.generators.SideDishes(c.Request.Context(), name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sideDishes": dishes})
}

// ListCourse handles GET /api/recipes/:name/listCourse
func (h *RecipeHandler) ListCourse(c *gin.Context) {
	recipe, ok := h.resolvedRecipe(c)
	if !ok {
		return
	}
	list, err := h.generators.ShoppingList(c.Request.Context(), recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listCourse": list})
}

// ToggleFavorite handles PUT /api/recipes/:name/favorite
func (h *RecipeHandler) ToggleFavorite(c *gin.Context) {
	recipe, ok := storedRecipe(c, h.recipes)
	if !ok {
		return
	}
	user := middleware.CurrentUser(c)
	favorited, err := h.recipes.ToggleFavorite(c.Request.Context(), user.ID, recipe.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.log.Debug("favorite toggled",
		zap.String("user_id", user.ID.String()),
		zap.String("recipe", recipe.Title),
		zap.Bool("favorited", favorited),
	)
	c.Status(http.StatusNoContent)
}
