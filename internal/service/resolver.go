package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/cuistot/backend/internal/metrics"
	"github.com/pageza/cuistot/backend/internal/models"
	"github.com/pageza/cuistot/backend/internal/schema"
	"github.com/pageza/cuistot/backend/internal/types"
)

// generate sends prompt in strict JSON mode and decodes the answer against shape.
func generate[T any](ctx context.Context, provider TextProvider, operation string, shape schema.Shape, prompt string) (T, error) {
	var zero T
	text, err := provider.Complete(ctx, prompt, true)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(operation, "error").Inc()
		return zero, err
	}
	out, err := schema.Decode[T](shape, text)
	if err != nil {
		var malformed *schema.MalformedError
		if errors.As(err, &malformed) {
			metrics.ProviderRequests.WithLabelValues(operation, "malformed").Inc()
		} else {
			metrics.ProviderRequests.WithLabelValues(operation, "invalid").Inc()
		}
		return zero, err
	}
	metrics.ProviderRequests.WithLabelValues(operation, "ok").Inc()
	return out, nil
}

type rankedResults struct {
	Results []types.RankedCandidate `json:"results"`
}

// RecipeResolver returns stored recipes and generates the missing ones.
type RecipeResolver struct {
	store    RecipeStore
	provider TextProvider
	prompts  *Prompter
	locker   TitleLocker
	log      *zap.Logger

	lockWait     time.Duration
	pollInterval time.Duration
}

// NewRecipeResolver creates a new RecipeResolver. locker may be nil, in which
// case concurrent first requests for a title rely on the unique title index.
func NewRecipeResolver(store RecipeStore, provider TextProvider, prompts *Prompter, locker TitleLocker, log *zap.Logger) *RecipeResolver {
	return &RecipeResolver{
		store:        store,
		provider:     provider,
		prompts:      prompts,
		locker:       locker,
		log:          log.Named("resolver"),
		lockWait:     90 * time.Second,
		pollInterval: 500 * time.Millisecond,
	}
}

// ResolveRecipe returns the recipe stored under name. When there is none the
// provider generates it, the result is stored with the requesting user as
// author and returned. A name never produces two stored recipes.
func (r *RecipeResolver) ResolveRecipe(ctx context.Context, name string, uc *types.UserContext) (*models.Recipe, error) {
	recipe, err := r.store.FindByName(ctx, name)
	if err == nil {
		metrics.RecipeLookups.WithLabelValues("store").Inc()
		return recipe, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}

	if r.locker != nil {
		release, acquired, err := r.locker.Acquire(ctx, types.NormalizeTitle(name))
		switch {
		case err != nil:
			r.log.Warn("generation lock unavailable, generating without it", zap.String("name", name), zap.Error(err))
		case acquired:
			defer release()
			// the previous holder may have finished between our lookup and the lock
			recipe, err := r.store.FindByName(ctx, name)
			if err == nil {
				metrics.RecipeLookups.WithLabelValues("store").Inc()
				return recipe, nil
			}
			if !IsNotFound(err) {
				return nil, err
			}
		default:
			recipe, err := r.waitForRecipe(ctx, name)
			if err != nil {
				return nil, err
			}
			if recipe != nil {
				metrics.RecipeLookups.WithLabelValues("store").Inc()
				return recipe, nil
			}
			r.log.Warn("generation lock held too long, generating anyway", zap.String("name", name))
		}
	}

	r.log.Info("generating recipe", zap.String("name", name))
	draft, err := generate[GeneratedRecipe](ctx, r.provider, "recipe", schema.RecipeDraft, r.prompts.Recipe(name))
	if err != nil {
		r.log.Warn("recipe generation failed", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	recipe, created, err := r.store.CreateGenerated(ctx, name, &draft, uc.AuthorID())
	if err != nil {
		return nil, err
	}
	if created {
		metrics.RecipeLookups.WithLabelValues("generated").Inc()
		r.log.Info("recipe generated", zap.String("name", name), zap.String("title", recipe.Title), zap.String("id", recipe.ID.String()))
	} else {
		metrics.RecipeLookups.WithLabelValues("conflict").Inc()
	}
	return recipe, nil
}

// waitForRecipe polls the store while another holder generates name. It
// returns nil without error when the wait ran out.
func (r *RecipeResolver) waitForRecipe(ctx context.Context, name string) (*models.Recipe, error) {
	deadline := time.NewTimer(r.lockWait)
	defer deadline.Stop()
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, nil
		case <-ticker.C:
			recipe, err := r.store.FindByName(ctx, name)
			if err == nil {
				return recipe, nil
			}
			if !IsNotFound(err) {
				return nil, err
			}
		}
	}
}

// SearchRecipes ranks recipes for query. Without candidates the provider
// proposes results freely; with candidates it may only filter and order them,
// and anything it returns outside the candidate set is dropped.
func (r *RecipeResolver) SearchRecipes(ctx context.Context, query string, candidates []types.RankedCandidate, uc *types.UserContext) ([]types.RankedCandidate, error) {
	if len(candidates) == 0 {
		out, err := generate[rankedResults](ctx, r.provider, "search", schema.RankedResults, r.prompts.Search(query, uc))
		if err != nil {
			return nil, err
		}
		return nonNil(out.Results), nil
	}

	out, err := generate[rankedResults](ctx, r.provider, "rank", schema.RankedResults, r.prompts.Rank(query, candidates, uc))
	if err != nil {
		return nil, err
	}
	known := make(map[string]types.RankedCandidate, len(candidates))
	for _, c := range candidates {
		known[c.Title] = c
	}
	results := make([]types.RankedCandidate, 0, len(out.Results))
	seen := make(map[string]bool, len(out.Results))
	for _, res := range out.Results {
		c, ok := known[res.Title]
		if !ok || seen[res.Title] {
			r.log.Debug("dropping ranked result outside candidates", zap.String("title", res.Title))
			continue
		}
		seen[res.Title] = true
		results = append(results, c)
	}
	return results, nil
}

// SearchByCalories asks for recipes whose calories per serving lie in [minCal, maxCal].
func (r *RecipeResolver) SearchByCalories(ctx context.Context, minCal, maxCal int, uc *types.UserContext) ([]types.RankedCandidate, error) {
	out, err := generate[rankedResults](ctx, r.provider, "calories", schema.RankedResults, r.prompts.Calories(minCal, maxCal, uc))
	if err != nil {
		return nil, err
	}
	return nonNil(out.Results), nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
