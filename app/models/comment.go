package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is a node of a post's reply forest. ParentID is nil for top-level
// comments; a reply's parent always belongs to the same post.
type Comment struct {
	ID        string    `gorm:"size:36;not null;uniqueIndex;primary_key"`
	Text      string    `gorm:"type:text;not null"`
	UserID    string    `gorm:"size:36;not null;index"`
	User      User      `gorm:"foreignKey:UserID"`
	PostID    string    `gorm:"size:36;not null;index"`
	ParentID  *string   `gorm:"size:36;index"`
	CreatedAt time.Time `gorm:"index"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

func (c *Comment) IsTopLevel() bool {
	return c.ParentID == nil
}
