package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Post struct {
	ID         string     `gorm:"size:36;not null;uniqueIndex;primary_key"`
	Title      string     `gorm:"size:100;not null"`
	Content    string     `gorm:"type:text;not null"`
	Image      string     `gorm:"type:text"`
	UserID     string     `gorm:"size:36;not null;index"`
	User       User       `gorm:"foreignKey:UserID"`
	Categories []Category `gorm:"many2many:post_categories;"`
	Comments   []Comment  `gorm:"foreignKey:PostID"`
	CreatedAt  time.Time  `gorm:"index"`
	UpdatedAt  time.Time
}

// PostCategory is the join row of the post/category many-to-many.
type PostCategory struct {
	PostID     string `gorm:"size:36;primaryKey"`
	CategoryID string `gorm:"size:36;primaryKey"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}

// CategoryIDs returns the ids of the categories currently loaded on the post.
func (p *Post) CategoryIDs() []string {
	ids := make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}

func (p *Post) HasCategory(id string) bool {
	for _, c := range p.Categories {
		if c.ID == id {
			return true
		}
	}
	return false
}
