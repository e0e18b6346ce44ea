package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/cuistot/backend/internal/models"
	"github.com/pageza/cuistot/backend/internal/service"
	"github.com/pageza/cuistot/backend/internal/testhelpers"
)

func TestRecipeService_FindByName(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := service.NewRecipeService(db, zap.NewNop())
	ctx := context.Background()
	stored := testhelpers.CreateRecipe(t, db, "Gratin dauphinois")
	require.NoError(t, db.Create(&models.RecipeAlias{Name: "gratin", RecipeID: stored.ID}).Error)

	byTitle, err := svc.FindByName(ctx, "Gratin dauphinois")
	require.NoError(t, err)
	assert.Equal(t, stored.ID, byTitle.ID)
	assert.Len(t, byTitle.Ingredients, 3)

	byAlias, err := svc.FindByName(ctx, "gratin")
	require.NoError(t, err)
	assert.Equal(t, stored.ID, byAlias.ID)

	_, err = svc.FindByName(ctx, "gratin dauphinois")
	assert.True(t, service.IsNotFound(err), "title match is exact")
}

func TestRecipeService_CreateGeneratedConflict(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := service.NewRecipeService(db, zap.NewNop())
	ctx := context.Background()
	existing := testhelpers.CreateRecipe(t, db, "Quiche lorraine")

	draft := &service.GeneratedRecipe{
		Title:        "Quiche lorraine",
		Description:  "Une autre version",
		CookingTime:  40,
		Servings:     6,
		Ingredients:  []string{"lardons"},
		Instructions: []string{"cuire"},
	}
	recipe, created, err := svc.CreateGenerated(ctx, "quiche", draft, nil)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing.ID, recipe.ID)
	assert.Equal(t, existing.Description, recipe.Description)

	aliased, err := svc.FindByName(ctx, "quiche")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, aliased.ID)

	var ingredients int64
	require.NoError(t, db.Model(&models.RecipeIngredient{}).Where("recipe_id = ?", existing.ID).Count(&ingredients).Error)
	assert.EqualValues(t, 3, ingredients)
}

func TestRecipeService_SearchByTitle(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := service.NewRecipeService(db, zap.NewNop())
	for _, title := range []string{"Tarte aux pommes", "Compote de pommes", "Boeuf bourguignon", "Crêpe 100% sarrasin"} {
		testhelpers.CreateRecipe(t, db, title)
	}

	recipes, err := svc.SearchByTitle(context.Background(), "POMMES", 10)
	require.NoError(t, err)
	var titles []string
	for _, r := range recipes {
		titles = append(titles, r.Title)
	}
	assert.Equal(t, []string{"Compote de pommes", "Tarte aux pommes"}, titles)

	percent, err := svc.SearchByTitle(context.Background(), "100%", 10)
	require.NoError(t, err)
	require.Len(t, percent, 1)

	none, err := svc.SearchByTitle(context.Background(), "%", 10)
	require.NoError(t, err)
	assert.Len(t, none, 1, "wildcards in the query are literal")
}

func TestRecipeService_NearestCandidatesFallback(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := service.NewRecipeService(db, zap.NewNop())
	testhelpers.CreateRecipe(t, db, "Tarte aux pommes")
	testhelpers.CreateRecipe(t, db, "Boeuf bourguignon")

	matches, err := svc.NearestCandidates(context.Background(), "tarte", 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Tarte aux pommes", matches[0].Title)

	fallback, err := svc.NearestCandidates(context.Background(), "poisson", 10)
	require.NoError(t, err)
	assert.Len(t, fallback, 2)
}

func TestRecipeService_Last(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := service.NewRecipeService(db, zap.NewNop())
	ctx := context.Background()

	none, err := svc.Last(ctx)
	require.NoError(t, err)
	assert.Nil(t, none)

	testhelpers.CreateRecipe(t, db, "Ancienne", func(r *models.Recipe) { r.CreatedAt = time.Now().Add(-time.Hour) })
	newest := testhelpers.CreateRecipe(t, db, "Récente")

	last, err := svc.Last(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, newest.ID, last.ID)
}

func TestRecipeService_AverageRating(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := service.NewRecipeService(db, zap.NewNop())
	ratings := service.NewRatingService(db)
	ctx := context.Background()
	recipe := testhelpers.CreateRecipe(t, db, "Moules frites")

	avg, err := svc.AverageRating(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, avg)

	for _, v := range []float64{4, 5, 3} {
		user := testhelpers.CreateUser(t, db)
		_, err := ratings.Rate(ctx, recipe.ID, user.ID, v, "")
		require.NoError(t, err)
	}
	avg, err = svc.AverageRating(ctx, recipe.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, avg, 1e-9)
}

func TestRecipeService_Favorites(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := service.NewRecipeService(db, zap.NewNop())
	ctx := context.Background()
	user := testhelpers.CreateUser(t, db)
	recipe := testhelpers.CreateRecipe(t, db, "Cassoulet")

	on, err := svc.ToggleFavorite(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.True(t, on)

	fav, err := svc.IsFavorite(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.True(t, fav)

	list, err := svc.Favorites(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Cassoulet", list[0].Title)

	off, err := svc.ToggleFavorite(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.False(t, off)

	list, err = svc.Favorites(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRecipeService_Ingredients(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := service.NewRecipeService(db, zap.NewNop())
	recipe := testhelpers.CreateRecipe(t, db, "Pot-au-feu")

	ingredients, err := svc.Ingredients(context.Background(), recipe.ID)
	require.NoError(t, err)
	require.Len(t, ingredients, 3)
	assert.Equal(t, recipe.Ingredients[0].Name, ingredients[0].Name)
}
