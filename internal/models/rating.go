package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Rating is a user's single vote on a recipe, between 0 and 5.
type Rating struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RecipeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ratings_recipe_user" json:"recipeId"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ratings_recipe_user" json:"userId"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Value     float64   `gorm:"column:rating;not null" json:"rating"`
	Comment   *Comment  `gorm:"foreignKey:RatingID" json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r *Rating) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Comment is either attached to a rating (top level) or a reply to another comment.
type Comment struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	RecipeID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"recipeId"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null" json:"userId"`
	User      *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	RatingID  *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"ratingId,omitempty"`
	ParentID  *uint      `gorm:"index" json:"parentId,omitempty"`
	Content   string     `gorm:"type:text" json:"content"`
	CreatedAt time.Time  `json:"createdAt"`
}
