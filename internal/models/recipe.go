package models

import (
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// EmbeddingDimensions is the width of the recipes.embedding vector column.
const EmbeddingDimensions = 64

// Recipe is identified by its title. Rows are never updated once created.
type Recipe struct {
	ID           uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string              `gorm:"size:255;not null;uniqueIndex" json:"title"`
	Description  string              `gorm:"type:text;not null" json:"description"`
	CookingTime  int                 `gorm:"not null" json:"cookingTime"`
	Servings     int                 `gorm:"not null" json:"servings"`
	AuthorID     *uuid.UUID          `gorm:"type:uuid;index" json:"authorId,omitempty"`
	Author       *User               `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Ingredients  []RecipeIngredient  `gorm:"constraint:OnDelete:CASCADE" json:"ingredients,omitempty"`
	Instructions []RecipeInstruction `gorm:"constraint:OnDelete:CASCADE" json:"instructions,omitempty"`
	Embedding    pgvector.Vector     `gorm:"type:vector(64)" json:"-"`
	CreatedAt    time.Time           `json:"createdAt"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RecipeIngredient is one ingredient line. Quantity and unit are optional.
type RecipeIngredient struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	RecipeID uuid.UUID `gorm:"type:uuid;not null;index" json:"recipeId"`
	Name     string    `gorm:"size:255;not null" json:"name"`
	Quantity string    `gorm:"size:50" json:"quantity,omitempty"`
	Unit     string    `gorm:"size:50" json:"unit,omitempty"`
}

// RecipeInstruction is one step; steps are ordered by Position starting at 1.
type RecipeInstruction struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RecipeID    uuid.UUID `gorm:"type:uuid;not null;index" json:"recipeId"`
	Position    int       `gorm:"not null" json:"position"`
	Instruction string    `gorm:"type:text;not null" json:"instruction"`
}

// RecipeAlias maps a requested name to the recipe generated for it when the
// provider answered with a different title.
type RecipeAlias struct {
	Name     string    `gorm:"size:255;primaryKey" json:"name"`
	RecipeID uuid.UUID `gorm:"type:uuid;not null;index" json:"recipeId"`
}

// FavoriteRecipe links a user to a recipe they starred.
type FavoriteRecipe struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"userId"`
	RecipeID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"recipeId"`
	Recipe    *Recipe   `gorm:"foreignKey:RecipeID" json:"recipe,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
