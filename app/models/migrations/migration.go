package migrations

import (
	"github.com/Rakhulsr/go-blog/app/models"
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Post{}, "Categories", &models.PostCategory{}); err != nil {
		return err
	}
	return db.AutoMigrate(&models.User{}, &models.Category{}, &models.Post{}, &models.PostCategory{}, &models.Comment{})
}
