package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/cuistot/backend/internal/models"
	"github.com/pageza/cuistot/backend/internal/types"
)

// UserService handles user lookups and settings
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a new UserService instance
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func withSettings(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Diets", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Allergies", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Preferences", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
}

// GetByID returns the user with their diets, allergies and preferences
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := withSettings(s.db.WithContext(ctx)).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "user", Key: id.String()}
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateSettings replaces the three settings lists of a user in one
// transaction. Either every list is replaced or none is.
func (s *UserService) UpdateSettings(ctx context.Context, userID uuid.UUID, req *types.SettingsRequest) (*models.User, error) {
	diets := make([]models.UserDiet, 0, len(req.Diets))
	for _, d := range req.Diets {
		diets = append(diets, models.UserDiet{UserID: userID, Diet: d})
	}
	allergies := make([]models.UserAllergy, 0, len(req.Allergies))
	for _, a := range req.Allergies {
		allergies = append(allergies, models.UserAllergy{UserID: userID, Allergy: a})
	}
	preferences := make([]models.UserPreference, 0, len(req.Preferences))
	for _, p := range req.Preferences {
		preferences = append(preferences, models.UserPreference{UserID: userID, Preference: p})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return &NotFoundError{Resource: "user", Key: userID.String()}
		}

		for _, model := range []any{&models.UserDiet{}, &models.UserAllergy{}, &models.UserPreference{}} {
			if err := tx.Where("user_id = ?", userID).Delete(model).Error; err != nil {
				return fmt.Errorf("clearing settings: %w", err)
			}
		}
		if len(diets) > 0 {
			if err := tx.Create(&diets).Error; err != nil {
				return fmt.Errorf("storing diets: %w", err)
			}
		}
		if len(allergies) > 0 {
			if err := tx.Create(&allergies).Error; err != nil {
				return fmt.Errorf("storing allergies: %w", err)
			}
		}
		if len(preferences) > 0 {
			if err := tx.Create(&preferences).Error; err != nil {
				return fmt.Errorf("storing preferences: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, userID)
}

// Settings flattens the settings of a loaded user
func Settings(user *models.User) types.SettingsResponse {
	resp := types.SettingsResponse{
		Diets:       make([]string, 0, len(user.Diets)),
		Allergies:   make([]string, 0, len(user.Allergies)),
		Preferences: make([]string, 0, len(user.Preferences)),
	}
	for _, d := range user.Diets {
		resp.Diets = append(resp.Diets, d.Diet)
	}
	for _, a := range user.Allergies {
		resp.Allergies = append(resp.Allergies, a.Allergy)
	}
	for _, p := range user.Preferences {
		resp.Preferences = append(resp.Preferences, p.Preference)
	}
	return resp
}

// UserContextFor is the advisory context sent to the provider on behalf of
// user. A nil user yields a nil context.
func UserContextFor(user *models.User) *types.UserContext {
	if user == nil {
		return nil
	}
	s := Settings(user)
	return &types.UserContext{
		UserID:      user.ID,
		Allergies:   s.Allergies,
		Diets:       s.Diets,
		Preferences: s.Preferences,
	}
}
