package bootstrap

import (
	"anoa.com/indieplatform/internal/entity"
	"anoa.com/indieplatform/pkg/slug"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Role{},
		&entity.User{},
		&entity.DeveloperProfile{},
		&entity.Follow{},
		&entity.Genre{},
		&entity.Game{},
		&entity.GameFile{},
		&entity.GameImage{},
		&entity.Download{},
		&entity.Wishlist{},
		&entity.Review{},
		&entity.GameRating{},
		&entity.Comment{},
		&entity.Like{},
		&entity.Post{},
		&entity.Notification{},
		&entity.Report{},
	)
}

func SeedRoles(db *gorm.DB) error {
	defaultRoles := []entity.Role{
		{Name: entity.RoleAdmin, Description: "Super administrator"},
		{Name: entity.RoleModerator, Description: "Handles content reports"},
		{Name: entity.RoleUser, Description: "Player or developer"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&entity.Role{}).
			Where("name = ?", role.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func SeedGenres(db *gorm.DB) error {
	names := []string{"Action", "Adventure", "Puzzle", "Platformer", "RPG", "Strategy", "Simulation", "Horror", "Roguelike", "Visual Novel"}

	for _, name := range names {
		var count int64
		if err := db.Model(&entity.Genre{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&entity.Genre{Name: name, Slug: slug.Make(name)}).Error; err != nil {
			return err
		}
	}

	return nil
}

func SeedAdminUser(db *gorm.DB) error {
	var adminRole entity.Role
	if err := db.Where("name = ?", entity.RoleAdmin).First(&adminRole).Error; err != nil {
		return err
	}

	var count int64
	if err := db.Model(&entity.User{}).
		Where("email = ?", "admin@indie.local").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logrus.Debug("admin user already exists, skipping seed")
		return nil
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := entity.User{
		Username:           "admin",
		Email:              "admin@indie.local",
		PasswordHash:       string(hashedPasswordBytes),
		RoleID:             &adminRole.ID,
		Bio:                "Platform administrator",
		PublicProfile:      true,
		EmailNotifications: true,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	logrus.WithField("email", adminUser.Email).Info("admin user seeded")
	return nil
}
