package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/cuistot/backend/internal/models"
	"github.com/pageza/cuistot/backend/internal/types"
)

// TextProvider is the generative text backend. strictJSON asks the provider
// for a single JSON object; callers must still validate what comes back.
type TextProvider interface {
	Complete(ctx context.Context, prompt string, strictJSON bool) (string, error)
}

// TitleLocker serializes generation of the same recipe title across
// instances. When acquired is false another holder is generating.
type TitleLocker interface {
	Acquire(ctx context.Context, key string) (release func(), acquired bool, err error)
}

// ObjectPresigner hands out time-limited URLs for recipe images.
type ObjectPresigner interface {
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
	PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, error)
}

// RecipeStore is the persistence surface the resolver needs.
type RecipeStore interface {
	FindByName(ctx context.Context, name string) (*models.Recipe, error)
	CreateGenerated(ctx context.Context, requested string, draft *GeneratedRecipe, authorID *uuid.UUID) (*models.Recipe, bool, error)
}

// IRecipeService defines the interface for stored recipe operations
type IRecipeService interface {
	RecipeStore
	SearchByTitle(ctx context.Context, query string, limit int) ([]models.Recipe, error)
	NearestCandidates(ctx context.Context, query string, limit int) ([]types.RankedCandidate, error)
	Last(ctx context.Context) (*models.Recipe, error)
	Ingredients(ctx context.Context, recipeID uuid.UUID) ([]models.RecipeIngredient, error)
	AverageRating(ctx context.Context, recipeID uuid.UUID) (float64, error)
	ToggleFavorite(ctx context.Context, userID, recipeID uuid.UUID) (bool, error)
	IsFavorite(ctx context.Context, userID, recipeID uuid.UUID) (bool, error)
	Favorites(ctx context.Context, userID uuid.UUID) ([]models.Recipe, error)
}

// IRecipeResolver defines the generating lookups
type IRecipeResolver interface {
	ResolveRecipe(ctx context.Context, name string, uc *types.UserContext) (*models.Recipe, error)
	SearchRecipes(ctx context.Context, query string, candidates []types.RankedCandidate, uc *types.UserContext) ([]types.RankedCandidate, error)
	SearchByCalories(ctx context.Context, minCal, maxCal int, uc *types.UserContext) ([]types.RankedCandidate, error)
}

// IGenerators defines the auxiliary provider-backed lists
type IGenerators interface {
	SideDishes(ctx context.Context, name string) ([]string, error)
	ShoppingList(ctx context.Context, recipe *models.Recipe) ([]string, error)
	Seasonal(ctx context.Context) ([]string, error)
	Similar(ctx context.Context, recipe *models.Recipe) ([]string, error)
}

// IRatingService defines votes and the comment threads attached to them
type IRatingService interface {
	ListRatings(ctx context.Context, recipeID uuid.UUID) ([]models.Rating, error)
	HasVoted(ctx context.Context, recipeID, userID uuid.UUID) (bool, error)
	Rate(ctx context.Context, recipeID, userID uuid.UUID, value float64, comment string) (*models.Rating, error)
	Replies(ctx context.Context, recipeID uuid.UUID, parentID uint) ([]models.Comment, error)
	Reply(ctx context.Context, recipeID, userID uuid.UUID, parentID uint, content string) (*models.Comment, error)
}

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	GenerateToken(user *models.User) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}

// IUserService defines the interface for user and settings operations
type IUserService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateSettings(ctx context.Context, userID uuid.UUID, req *types.SettingsRequest) (*models.User, error)
}

// IImageService defines presigned image access
type IImageService interface {
	DownloadURL(ctx context.Context, recipe *models.Recipe) (string, error)
	UploadURL(ctx context.Context, recipe *models.Recipe, userID uuid.UUID, contentType string) (string, error)
}
