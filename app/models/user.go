package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultAvatarURL = "/static/default-avatar.png"

type User struct {
	ID           string    `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	Username     string    `gorm:"size:50;not null;uniqueIndex"`
	FullName     string    `gorm:"size:100;not null"`
	Email        string    `gorm:"size:100;not null;uniqueIndex"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	AvatarURL    string    `gorm:"size:255;default:'/static/default-avatar.png'"`
	Posts        []Post    `gorm:"foreignKey:UserID"`
	Comments     []Comment `gorm:"foreignKey:UserID"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.AvatarURL == "" {
		u.AvatarURL = DefaultAvatarURL
	}
	return
}
