package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/cuistot/backend/internal/models"
	"github.com/pageza/cuistot/backend/internal/schema"
	"github.com/pageza/cuistot/backend/internal/service"
	"github.com/pageza/cuistot/backend/internal/testhelpers"
	"github.com/pageza/cuistot/backend/internal/types"
)

type memLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func (l *memLocker) Acquire(ctx context.Context, key string) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		l.held = map[string]bool{}
	}
	if l.held[key] {
		return func() {}, false, nil
	}
	l.held[key] = true
	return func() {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
	}, true, nil
}

func setupResolver(t *testing.T, locker service.TitleLocker) (*gorm.DB, *testhelpers.FakeProvider, *service.RecipeResolver) {
	t.Helper()
	db := testhelpers.SetupSQLite(t)
	provider := testhelpers.NewFakeProvider()
	store := service.NewRecipeService(db, zap.NewNop())
	prompts := service.NewPrompter("", nil)
	return db, provider, service.NewRecipeResolver(store, provider, prompts, locker, zap.NewNop())
}

func countRecipes(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Recipe{}).Count(&n).Error)
	return n
}

func TestResolveRecipe_GeneratesOnceThenServesStored(t *testing.T) {
	db, provider, resolver := setupResolver(t, nil)
	provider.Reply(testhelpers.RecipeJSON("Tarte aux pommes"))
	ctx := context.Background()

	first, err := resolver.ResolveRecipe(ctx, "Tarte aux pommes", nil)
	require.NoError(t, err)
	assert.Equal(t, "Tarte aux pommes", first.Title)
	assert.Equal(t, 45, first.CookingTime)
	assert.Equal(t, 4, first.Servings)
	assert.Nil(t, first.AuthorID)
	require.Len(t, first.Ingredients, 3)
	require.Len(t, first.Instructions, 3)
	for i, step := range first.Instructions {
		assert.Equal(t, i+1, step.Position)
	}
	assert.Contains(t, provider.LastPrompt(), "$$Tarte aux pommes$$")
	assert.True(t, provider.AllStrict())

	second, err := resolver.ResolveRecipe(ctx, "Tarte aux pommes", nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, provider.Calls())
	assert.EqualValues(t, 1, countRecipes(t, db))
}

func TestResolveRecipe_RecordsAuthor(t *testing.T) {
	db, provider, resolver := setupResolver(t, nil)
	user := testhelpers.CreateUser(t, db)
	provider.Reply(testhelpers.RecipeJSON("Ratatouille"))

	recipe, err := resolver.ResolveRecipe(context.Background(), "Ratatouille", &types.UserContext{UserID: user.ID})
	require.NoError(t, err)
	require.NotNil(t, recipe.AuthorID)
	assert.Equal(t, user.ID, *recipe.AuthorID)
	require.NotNil(t, recipe.Author)
	assert.Equal(t, user.Username, recipe.Author.Username)
}

func TestResolveRecipe_AliasWhenProviderRenames(t *testing.T) {
	db, provider, resolver := setupResolver(t, nil)
	provider.Reply(testhelpers.RecipeJSON("Tarte Tatin"))
	ctx := context.Background()

	first, err := resolver.ResolveRecipe(ctx, "tatin", nil)
	require.NoError(t, err)
	assert.Equal(t, "Tarte Tatin", first.Title)

	again, err := resolver.ResolveRecipe(ctx, "tatin", nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	byTitle, err := resolver.ResolveRecipe(ctx, "Tarte Tatin", nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, byTitle.ID)

	assert.Equal(t, 1, provider.Calls())
	assert.EqualValues(t, 1, countRecipes(t, db))
}

func TestResolveRecipe_ProviderFailuresStoreNothing(t *testing.T) {
	tests := []struct {
		name  string
		reply func(p *testhelpers.FakeProvider)
		check func(t *testing.T, err error)
	}{
		{
			name:  "malformed json",
			reply: func(p *testhelpers.FakeProvider) { p.Reply("Voici la recette : tarte") },
			check: func(t *testing.T, err error) {
				var malformed *schema.MalformedError
				assert.ErrorAs(t, err, &malformed)
			},
		},
		{
			name:  "schema violation",
			reply: func(p *testhelpers.FakeProvider) { p.Reply(`{"title":"Tarte","description":"d","cookingTime":10,"servings":0,"ingredients":[],"instructions":["x"]}`) },
			check: func(t *testing.T, err error) {
				var invalid *schema.ValidationError
				require.ErrorAs(t, err, &invalid)
				var paths []string
				for _, f := range invalid.Fields {
					paths = append(paths, f.Path)
				}
				assert.ElementsMatch(t, []string{"servings", "ingredients"}, paths)
			},
		},
		{
			name:  "provider unavailable",
			reply: func(p *testhelpers.FakeProvider) { p.Fail(service.ErrProviderUnavailable) },
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, service.ErrProviderUnavailable))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, provider, resolver := setupResolver(t, nil)
			tt.reply(provider)

			recipe, err := resolver.ResolveRecipe(context.Background(), "Tarte", nil)
			assert.Nil(t, recipe)
			tt.check(t, err)
			assert.EqualValues(t, 0, countRecipes(t, db))
		})
	}
}

func resolveConcurrently(t *testing.T, resolver *service.RecipeResolver, name string, n int) []*models.Recipe {
	t.Helper()
	var wg sync.WaitGroup
	results := make([]*models.Recipe, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = resolver.ResolveRecipe(context.Background(), name, nil)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
	return results
}

func TestResolveRecipe_ConcurrentRequestsStoreOneRecipe(t *testing.T) {
	db, provider, resolver := setupResolver(t, nil)
	provider.WithDelay(50 * time.Millisecond).Otherwise(func(string) (string, error) {
		return testhelpers.RecipeJSON("Soupe à l'oignon"), nil
	})

	results := resolveConcurrently(t, resolver, "Soupe à l'oignon", 2)
	assert.Equal(t, results[0].ID, results[1].ID)
	assert.EqualValues(t, 1, countRecipes(t, db))
}

func TestResolveRecipe_LockerAvoidsDuplicateGeneration(t *testing.T) {
	db, provider, resolver := setupResolver(t, &memLocker{})
	provider.WithDelay(100 * time.Millisecond).Otherwise(func(string) (string, error) {
		return testhelpers.RecipeJSON("Blanquette de veau"), nil
	})

	results := resolveConcurrently(t, resolver, "Blanquette de veau", 3)
	for _, r := range results[1:] {
		assert.Equal(t, results[0].ID, r.ID)
	}
	assert.Equal(t, 1, provider.Calls())
	assert.EqualValues(t, 1, countRecipes(t, db))
}

// scriptedStore answers FindByName from a fixed list of errors, one per call
type scriptedStore struct {
	mu      sync.Mutex
	lookups []error
	created int
}

func (s *scriptedStore) FindByName(ctx context.Context, name string) (*models.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.lookups[0]
	if len(s.lookups) > 1 {
		s.lookups = s.lookups[1:]
	}
	return nil, err
}

func (s *scriptedStore) CreateGenerated(ctx context.Context, requested string, draft *service.GeneratedRecipe, authorID *uuid.UUID) (*models.Recipe, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created++
	return &models.Recipe{Title: draft.Title}, true, nil
}

func TestResolveRecipe_RecheckFailureAfterLockStopsGeneration(t *testing.T) {
	dbDown := errors.New("connection reset")
	store := &scriptedStore{lookups: []error{
		&service.NotFoundError{Resource: "recipe", Key: "Gratin"},
		dbDown,
	}}
	provider := testhelpers.NewFakeProvider().Reply(testhelpers.RecipeJSON("Gratin"))
	resolver := service.NewRecipeResolver(store, provider, service.NewPrompter("", nil), &memLocker{}, zap.NewNop())

	_, err := resolver.ResolveRecipe(context.Background(), "Gratin", nil)
	require.ErrorIs(t, err, dbDown)
	assert.Zero(t, provider.Calls())
	assert.Zero(t, store.created)
}

func TestResolveRecipe_RecheckMissAfterLockGenerates(t *testing.T) {
	store := &scriptedStore{lookups: []error{&service.NotFoundError{Resource: "recipe", Key: "Gratin"}}}
	provider := testhelpers.NewFakeProvider().Reply(testhelpers.RecipeJSON("Gratin"))
	resolver := service.NewRecipeResolver(store, provider, service.NewPrompter("", nil), &memLocker{}, zap.NewNop())

	recipe, err := resolver.ResolveRecipe(context.Background(), "Gratin", nil)
	require.NoError(t, err)
	assert.Equal(t, "Gratin", recipe.Title)
	assert.Equal(t, 1, provider.Calls())
	assert.Equal(t, 1, store.created)
}

func TestSearchRecipes_FreeMode(t *testing.T) {
	_, provider, resolver := setupResolver(t, nil)
	provider.Reply(testhelpers.ResultsJSON("Tarte aux pommes", "Crumble aux pommes"))

	results, err := resolver.SearchRecipes(context.Background(), "pomme", nil, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Tarte aux pommes", results[0].Title)
	assert.Equal(t, "Crumble aux pommes", results[1].Title)
	assert.Contains(t, provider.LastPrompt(), "$$pomme$$")
	assert.NotContains(t, provider.LastPrompt(), "Voici les recettes disponibles")
}

func TestSearchRecipes_FilterModeDropsUnknownTitles(t *testing.T) {
	_, provider, resolver := setupResolver(t, nil)
	candidates := []types.RankedCandidate{
		{Title: "Tarte aux pommes", Description: "La classique"},
		{Title: "Compote", Description: "Pour les enfants"},
	}
	provider.Reply(testhelpers.ResultsJSON("Compote", "Pomme d'amour", "Tarte aux pommes", "Compote"))

	results, err := resolver.SearchRecipes(context.Background(), "pomme", candidates, nil)
	require.NoError(t, err)
	assert.Equal(t, []types.RankedCandidate{candidates[1], candidates[0]}, results)
	assert.Contains(t, provider.LastPrompt(), "Voici les recettes disponibles")
}

func TestSearchRecipes_EmptyResults(t *testing.T) {
	_, provider, resolver := setupResolver(t, nil)
	provider.Reply(`{"results":[]}`)

	results, err := resolver.SearchRecipes(context.Background(), "introuvable", nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestSearchRecipes_InvalidResults(t *testing.T) {
	_, provider, resolver := setupResolver(t, nil)
	provider.Reply(`{"results":[{"title":""}]}`)

	_, err := resolver.SearchRecipes(context.Background(), "pomme", nil, nil)
	var invalid *schema.ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Len(t, invalid.Fields, 2)
}

func TestSearchByCalories(t *testing.T) {
	_, provider, resolver := setupResolver(t, nil)
	provider.Reply(`{"results":[{"title":"Salade niçoise","description":"Fraîche","calories":320}]}`)

	uc := &types.UserContext{Allergies: []string{"gluten"}}
	results, err := resolver.SearchByCalories(context.Background(), 200, 400, uc)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NotNil(t, results[0].Calories)
	assert.Equal(t, 320.0, *results[0].Calories)
	assert.Contains(t, provider.LastPrompt(), "$$$gluten$$$")
}
