package testhelpers

import (
	"encoding/json"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/cuistot/backend/internal/models"
)

// DefaultPassword is the clear text password of every user made by CreateUser.
const DefaultPassword = "password123"

// CreateUser stores a user with random identity and DefaultPassword.
func CreateUser(t *testing.T, db *gorm.DB, mutate ...func(*models.User)) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	suffix := uuid.NewString()[:8]
	user := &models.User{
		Username:     gofakeit.Username() + suffix,
		Email:        suffix + gofakeit.Email(),
		PasswordHash: string(hash),
	}
	for _, m := range mutate {
		m(user)
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// CreateRecipe stores a recipe titled title with a few ingredients and steps.
func CreateRecipe(t *testing.T, db *gorm.DB, title string, mutate ...func(*models.Recipe)) *models.Recipe {
	t.Helper()
	emb := make([]float32, models.EmbeddingDimensions)
	emb[0] = 1
	recipe := &models.Recipe{
		Title:       title,
		Description: gofakeit.Sentence(10),
		CookingTime: gofakeit.Number(5, 180),
		Servings:    gofakeit.Number(1, 8),
		Embedding:   pgvector.NewVector(emb),
		Ingredients: []models.RecipeIngredient{
			{Name: gofakeit.Noun()},
			{Name: gofakeit.Noun()},
			{Name: gofakeit.Noun()},
		},
		Instructions: []models.RecipeInstruction{
			{Position: 1, Instruction: gofakeit.Sentence(6)},
			{Position: 2, Instruction: gofakeit.Sentence(6)},
		},
	}
	for _, m := range mutate {
		m(recipe)
	}
	if err := db.Create(recipe).Error; err != nil {
		t.Fatalf("failed to create recipe: %v", err)
	}
	return recipe
}

// RecipeJSON is a provider answer that satisfies the recipe shape.
func RecipeJSON(title string) string {
	b, _ := json.Marshal(map[string]any{
		"title":        title,
		"description":  gofakeit.Sentence(12),
		"cookingTime":  45,
		"servings":     4,
		"ingredients":  []string{"200 g de farine", "3 pommes", "100 g de beurre"},
		"instructions": []string{"Préparer la pâte.", "Disposer les pommes.", "Cuire 30 minutes."},
	})
	return string(b)
}

// ResultsJSON is a ranked results answer listing titles in order.
func ResultsJSON(titles ...string) string {
	results := make([]map[string]any, 0, len(titles))
	for _, title := range titles {
		results = append(results, map[string]any{"title": title, "description": "Une recette de " + title})
	}
	b, _ := json.Marshal(map[string]any{"results": results})
	return string(b)
}
