package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/pageza/cuistot/backend/internal/models"
	"github.com/pageza/cuistot/backend/internal/schema"
)

// Generators produces the provider-backed lists shown next to a recipe.
// Nothing they return is stored.
type Generators struct {
	provider TextProvider
	prompts  *Prompter
	log      *zap.Logger
}

// NewGenerators creates a new Generators instance
func NewGenerators(provider TextProvider, prompts *Prompter, log *zap.Logger) *Generators {
	return &Generators{provider: provider, prompts: prompts, log: log.Named("generators")}
}

// SideDishes suggests wines, desserts, cheeses and the like for name
func (g *Generators) SideDishes(ctx context.Context, name string) ([]string, error) {
	out, err := generate[struct {
		SideDishes []string `json:"sideDishes"`
	}](ctx, g.provider, "side_dishes", schema.SideDishes, g.prompts.SideDishes(name))
	if err != nil {
		return nil, err
	}
	return nonNil(out.SideDishes), nil
}

// ShoppingList turns the stored ingredients of recipe into a list of things to buy
func (g *Generators) ShoppingList(ctx context.Context, recipe *models.Recipe) ([]string, error) {
	names := make([]string, 0, len(recipe.Ingredients))
	for _, ing := range recipe.Ingredients {
		names = append(names, ing.Name)
	}
	out, err := generate[struct {
		ListCourse []string `json:"listCourse"`
	}](ctx, g.provider, "shopping_list", schema.ShoppingList, g.prompts.ShoppingList(recipe.Title, names))
	if err != nil {
		return nil, err
	}
	return nonNil(out.ListCourse), nil
}

func (g *Generators) Seasonal(ctx context.Context) ([]string, error) {
	return g.names(ctx, "seasonal", g.prompts.Seasonal())
}

func (g *Generators) Similar(ctx context.Context, recipe *models.Recipe) ([]string, error) {
	return g.names(ctx, "similar", g.prompts.Similar(recipe.Title))
}

func (g *Generators) names(ctx context.Context, operation, prompt string) ([]string, error) {
	out, err := generate[struct {
		Recipes []string `json:"recipes"`
	}](ctx, g.provider, operation, schema.RecipeNames, prompt)
	if err != nil {
		g.log.Debug("suggestion generation failed", zap.String("operation", operation), zap.Error(err))
		return nil, err
	}
	return nonNil(out.Recipes), nil
}
