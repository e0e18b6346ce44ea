package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/cuistot/backend/internal/models"
	"github.com/pageza/cuistot/backend/internal/types"
)

// GeneratedRecipe is a provider answer that passed schema.RecipeDraft.
type GeneratedRecipe struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	CookingTime  int      `json:"cookingTime"`
	Servings     int      `json:"servings"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
}

// RecipeService handles stored recipe operations
type RecipeService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, log *zap.Logger) *RecipeService {
	return &RecipeService{db: db, log: log.Named("recipes")}
}

func withDetails(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Instructions", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Author")
}

// FindByTitle returns the recipe whose title is exactly title
func (s *RecipeService) FindByTitle(ctx context.Context, title string) (*models.Recipe, error) {
	var recipe models.Recipe
	err := withDetails(s.db.WithContext(ctx)).Where("title = ?", title).First(&recipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "recipe", Key: title}
	}
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// FindByName looks the name up as a title first, then as an alias left by
// an earlier generation that came back under another title.
func (s *RecipeService) FindByName(ctx context.Context, name string) (*models.Recipe, error) {
	recipe, err := s.FindByTitle(ctx, name)
	if err == nil || !IsNotFound(err) {
		return recipe, err
	}

	var alias models.RecipeAlias
	err = s.db.WithContext(ctx).Where("name = ?", name).First(&alias).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "recipe", Key: name}
	}
	if err != nil {
		return nil, err
	}

	var aliased models.Recipe
	if err := withDetails(s.db.WithContext(ctx)).First(&aliased, "id = ?", alias.RecipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "recipe", Key: name}
		}
		return nil, err
	}
	return &aliased, nil
}

// CreateGenerated stores draft together with its ingredients and steps. When
// another writer stored the same title first, the existing row is returned
// with created set to false.
func (s *RecipeService) CreateGenerated(ctx context.Context, requested string, draft *GeneratedRecipe, authorID *uuid.UUID) (*models.Recipe, bool, error) {
	recipe := models.Recipe{
		Title:       draft.Title,
		Description: draft.Description,
		CookingTime: draft.CookingTime,
		Servings:    draft.Servings,
		AuthorID:    authorID,
		Embedding:   GenerateEmbedding(draft.Title + " " + draft.Description),
	}
	for _, name := range draft.Ingredients {
		recipe.Ingredients = append(recipe.Ingredients, models.RecipeIngredient{Name: name})
	}
	for i, step := range draft.Instructions {
		recipe.Instructions = append(recipe.Instructions, models.RecipeInstruction{Position: i + 1, Instruction: step})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		return s.addAlias(tx, requested, recipe.ID, recipe.Title)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		s.log.Info("recipe title stored concurrently", zap.String("title", draft.Title))
		existing, findErr := s.FindByTitle(ctx, draft.Title)
		if findErr != nil {
			return nil, false, fmt.Errorf("loading concurrently stored recipe: %w", findErr)
		}
		if err := s.addAlias(s.db.WithContext(ctx), requested, existing.ID, existing.Title); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("storing generated recipe: %w", err)
	}

	stored, err := s.FindByTitle(ctx, recipe.Title)
	if err != nil {
		return nil, false, err
	}
	return stored, true, nil
}

func (s *RecipeService) addAlias(tx *gorm.DB, requested string, recipeID uuid.UUID, title string) error {
	if requested == "" || requested == title {
		return nil
	}
	alias := models.RecipeAlias{Name: requested, RecipeID: recipeID}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&alias).Error; err != nil {
		return fmt.Errorf("storing alias %q: %w", requested, err)
	}
	return nil
}

func likePattern(query string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(query)) + "%"
}

// SearchByTitle returns recipes whose title contains query, ignoring case
func (s *RecipeService) SearchByTitle(ctx context.Context, query string, limit int) ([]models.Recipe, error) {
	recipes := []models.Recipe{}
	err := s.db.WithContext(ctx).
		Where(`LOWER(title) LIKE ? ESCAPE '\'`, likePattern(query)).
		Order("title").
		Limit(limit).
		Find(&recipes).Error
	return recipes, err
}

// NearestCandidates proposes stored recipes for a query. On postgres they are
// ordered by embedding distance; other databases fall back to a title match
// and then to the most recent recipes.
func (s *RecipeService) NearestCandidates(ctx context.Context, query string, limit int) ([]types.RankedCandidate, error) {
	candidates := []types.RankedCandidate{}
	db := s.db.WithContext(ctx)

	if db.Dialector.Name() == "postgres" {
		err := db.Model(&models.Recipe{}).
			Select("title, description").
			Order(clause.Expr{SQL: "embedding <-> ?", Vars: []any{GenerateEmbedding(query)}}).
			Limit(limit).
			Scan(&candidates).Error
		return candidates, err
	}

	recipes, err := s.SearchByTitle(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if len(recipes) == 0 {
		if err := db.Order("created_at DESC").Limit(limit).Find(&recipes).Error; err != nil {
			return nil, err
		}
	}
	for _, r := range recipes {
		candidates = append(candidates, types.RankedCandidate{Title: r.Title, Description: r.Description})
	}
	return candidates, nil
}

// Last returns the most recently stored recipe, or nil when there is none
func (s *RecipeService) Last(ctx context.Context) (*models.Recipe, error) {
	var recipe models.Recipe
	err := withDetails(s.db.WithContext(ctx)).Order("created_at DESC").First(&recipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (s *RecipeService) Ingredients(ctx context.Context, recipeID uuid.UUID) ([]models.RecipeIngredient, error) {
	ingredients := []models.RecipeIngredient{}
	err := s.db.WithContext(ctx).Where("recipe_id = ?", recipeID).Order("id").Find(&ingredients).Error
	return ingredients, err
}

// AverageRating is 0 for a recipe nobody voted on
func (s *RecipeService) AverageRating(ctx context.Context, recipeID uuid.UUID) (float64, error) {
	var avg float64
	err := s.db.WithContext(ctx).
		Model(&models.Rating{}).
		Select("COALESCE(AVG(rating), 0)").
		Where("recipe_id = ?", recipeID).
		Row().
		Scan(&avg)
	return avg, err
}

// ToggleFavorite stars or unstars a recipe and returns the new state
func (s *RecipeService) ToggleFavorite(ctx context.Context, userID, recipeID uuid.UUID) (bool, error) {
	favorited := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(&models.FavoriteRecipe{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		favorited = true
		return tx.Create(&models.FavoriteRecipe{UserID: userID, RecipeID: recipeID}).Error
	})
	return favorited, err
}

func (s *RecipeService) IsFavorite(ctx context.Context, userID, recipeID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.FavoriteRecipe{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	return count > 0, err
}

// Favorites lists the starred recipes of a user, latest first
func (s *RecipeService) Favorites(ctx context.Context, userID uuid.UUID) ([]models.Recipe, error) {
	recipes := []models.Recipe{}
	err := s.db.WithContext(ctx).
		Joins("JOIN favorite_recipes ON favorite_recipes.recipe_id = recipes.id").
		Where("favorite_recipes.user_id = ?", userID).
		Order("favorite_recipes.created_at DESC").
		Find(&recipes).Error
	return recipes, err
}
