package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/cuistot/backend/internal/models"
)

// RatingService handles votes and the comment threads hanging off them
type RatingService struct {
	db *gorm.DB
}

// NewRatingService creates a new RatingService instance
func NewRatingService(db *gorm.DB) *RatingService {
	return &RatingService{db: db}
}

// ListRatings returns the votes on a recipe with their author and top level comment
func (s *RatingService) ListRatings(ctx context.Context, recipeID uuid.UUID) ([]models.Rating, error) {
	ratings := []models.Rating{}
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Comment").
		Where("recipe_id = ?", recipeID).
		Order("created_at DESC").
		Find(&ratings).Error
	return ratings, err
}

func (s *RatingService) HasVoted(ctx context.Context, recipeID, userID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Rating{}).
		Where("recipe_id = ? AND user_id = ?", recipeID, userID).
		Count(&count).Error
	return count > 0, err
}

// Rate records the single vote of userID on recipeID along with its comment.
// A second vote fails with ErrDuplicateVote, including when two votes race.
func (s *RatingService) Rate(ctx context.Context, recipeID, userID uuid.UUID, value float64, comment string) (*models.Rating, error) {
	voted, err := s.HasVoted(ctx, recipeID, userID)
	if err != nil {
		return nil, err
	}
	if voted {
		return nil, ErrDuplicateVote
	}

	rating := models.Rating{
		RecipeID: recipeID,
		UserID:   userID,
		Value:    value,
		Comment: &models.Comment{
			RecipeID: recipeID,
			UserID:   userID,
			Content:  comment,
		},
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rating).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrDuplicateVote
	}
	if err != nil {
		return nil, fmt.Errorf("storing rating: %w", err)
	}
	return &rating, nil
}

// Replies lists the answers to comment parentID, newest first
func (s *RatingService) Replies(ctx context.Context, recipeID uuid.UUID, parentID uint) ([]models.Comment, error) {
	if _, err := s.comment(ctx, recipeID, parentID); err != nil {
		return nil, err
	}
	replies := []models.Comment{}
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("recipe_id = ? AND parent_id = ?", recipeID, parentID).
		Order("created_at DESC, id DESC").
		Find(&replies).Error
	return replies, err
}

// Reply answers comment parentID, which must belong to recipeID
func (s *RatingService) Reply(ctx context.Context, recipeID, userID uuid.UUID, parentID uint, content string) (*models.Comment, error) {
	if _, err := s.comment(ctx, recipeID, parentID); err != nil {
		return nil, err
	}
	reply := models.Comment{
		RecipeID: recipeID,
		UserID:   userID,
		ParentID: &parentID,
		Content:  content,
	}
	if err := s.db.WithContext(ctx).Create(&reply).Error; err != nil {
		return nil, fmt.Errorf("storing reply: %w", err)
	}
	return &reply, nil
}

func (s *RatingService) comment(ctx context.Context, recipeID uuid.UUID, id uint) (*models.Comment, error) {
	var c models.Comment
	err := s.db.WithContext(ctx).Where("id = ? AND recipe_id = ?", id, recipeID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "comment", Key: fmt.Sprint(id)}
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
