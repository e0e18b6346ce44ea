package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string           `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email        string           `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string           `gorm:"not null" json:"-"`
	Diets        []UserDiet       `gorm:"constraint:OnDelete:CASCADE" json:"diets"`
	Allergies    []UserAllergy    `gorm:"constraint:OnDelete:CASCADE" json:"allergies"`
	Preferences  []UserPreference `gorm:"constraint:OnDelete:CASCADE" json:"preferences"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type UserDiet struct {
	ID     uint      `gorm:"primaryKey" json:"-"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Diet   string    `gorm:"size:100;not null" json:"diet"`
}

type UserAllergy struct {
	ID      uint      `gorm:"primaryKey" json:"-"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Allergy string    `gorm:"size:100;not null" json:"allergy"`
}

func (UserAllergy) TableName() string {
	return "user_allergies"
}

type UserPreference struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Preference string    `gorm:"size:100;not null" json:"preference"`
}
