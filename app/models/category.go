package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category struct {
	ID        string    `gorm:"size:36;not null;uniqueIndex;primary_key"`
	Name      string    `gorm:"size:50;not null;uniqueIndex"`
	Slug      string    `gorm:"size:60;not null;uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Category) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}
