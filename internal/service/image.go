package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/cuistot/backend/internal/models"
)

// ImageURLTTL is how long a presigned image URL stays valid
const ImageURLTTL = 15 * time.Minute

// ImageService hands out presigned URLs for recipe pictures. Images are keyed
// by recipe id and never touch the database.
type ImageService struct {
	presigner ObjectPresigner
}

// NewImageService creates a new ImageService. A nil presigner disables images.
func NewImageService(presigner ObjectPresigner) *ImageService {
	return &ImageService{presigner: presigner}
}

func imageKey(recipe *models.Recipe) string {
	return "recipes/" + recipe.ID.String()
}

func (s *ImageService) DownloadURL(ctx context.Context, recipe *models.Recipe) (string, error) {
	if s.presigner == nil {
		return "", ErrImagesDisabled
	}
	return s.presigner.PresignGet(ctx, imageKey(recipe), ImageURLTTL)
}

// UploadURL lets the author of a recipe, or anyone for an authorless one,
// upload its picture.
func (s *ImageService) UploadURL(ctx context.Context, recipe *models.Recipe, userID uuid.UUID, contentType string) (string, error) {
	if s.presigner == nil {
		return "", ErrImagesDisabled
	}
	if recipe.AuthorID != nil && *recipe.AuthorID != userID {
		return "", ErrForbidden
	}
	return s.presigner.PresignPut(ctx, imageKey(recipe), contentType, ImageURLTTL)
}
