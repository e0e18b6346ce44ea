package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/cuistot/backend/internal/models"
	"github.com/pageza/cuistot/backend/internal/service"
	"github.com/pageza/cuistot/backend/internal/testhelpers"
	"github.com/pageza/cuistot/backend/internal/types"
)

func TestUserService_UpdateSettings(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := service.NewUserService(db)
	ctx := context.Background()
	user := testhelpers.CreateUser(t, db)

	updated, err := svc.UpdateSettings(ctx, user.ID, &types.SettingsRequest{
		Diets:       []string{"végétarien"},
		Allergies:   []string{"arachides", "lactose"},
		Preferences: []string{"épicé"},
	})
	require.NoError(t, err)
	assert.Equal(t, types.SettingsResponse{
		Diets:       []string{"végétarien"},
		Allergies:   []string{"arachides", "lactose"},
		Preferences: []string{"épicé"},
	}, service.Settings(updated))

	replaced, err := svc.UpdateSettings(ctx, user.ID, &types.SettingsRequest{
		Diets:       []string{"vegan"},
		Allergies:   []string{},
		Preferences: []string{},
	})
	require.NoError(t, err)
	settings := service.Settings(replaced)
	assert.Equal(t, []string{"vegan"}, settings.Diets)
	assert.Empty(t, settings.Allergies)
	assert.Empty(t, settings.Preferences)

	uc := service.UserContextFor(replaced)
	assert.Equal(t, user.ID, uc.UserID)
	assert.True(t, uc.HasConstraints())
	assert.Nil(t, service.UserContextFor(nil))
}

func TestUserService_UpdateSettingsIsAtomic(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := service.NewUserService(db)
	ctx := context.Background()
	user := testhelpers.CreateUser(t, db)

	_, err := svc.UpdateSettings(ctx, user.ID, &types.SettingsRequest{
		Diets:       []string{"sans gluten"},
		Allergies:   []string{"noix"},
		Preferences: []string{"sucré"},
	})
	require.NoError(t, err)

	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:fail_preferences", func(tx *gorm.DB) {
		if tx.Statement.Table == "user_preferences" {
			tx.AddError(errors.New("disk full"))
		}
	}))

	_, err = svc.UpdateSettings(ctx, user.ID, &types.SettingsRequest{
		Diets:       []string{"vegan"},
		Allergies:   []string{"soja"},
		Preferences: []string{"salé"},
	})
	require.Error(t, err)

	after, err := svc.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SettingsResponse{
		Diets:       []string{"sans gluten"},
		Allergies:   []string{"noix"},
		Preferences: []string{"sucré"},
	}, service.Settings(after))
}

func TestUserService_UnknownUser(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := service.NewUserService(db)

	_, err := svc.GetByID(context.Background(), uuid.New())
	assert.True(t, service.IsNotFound(err))

	_, err = svc.UpdateSettings(context.Background(), uuid.New(), &types.SettingsRequest{})
	assert.True(t, service.IsNotFound(err))

	var diets int64
	require.NoError(t, db.Model(&models.UserDiet{}).Count(&diets).Error)
	assert.Zero(t, diets)
}
