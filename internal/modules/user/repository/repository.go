package repository

import (
	"context"
	"strings"

	"anoa.com/indieplatform/internal/entity"
	"anoa.com/indieplatform/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User, profile *entity.DeveloperProfile) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	FindRoleByName(ctx context.Context, name string) (*entity.Role, error)
	Update(ctx context.Context, user *entity.User) error
	Search(ctx context.Context, query string, limit int) ([]entity.User, error)
	CountDevelopers(ctx context.Context) (int64, error)

	FindDeveloperProfile(ctx context.Context, userID uuid.UUID) (*entity.DeveloperProfile, error)
	EnsureDeveloperProfile(ctx context.Context, profile *entity.DeveloperProfile) (bool, error)
	UpdateDeveloperProfile(ctx context.Context, profile *entity.DeveloperProfile) error
	ListDevelopers(ctx context.Context, filter DeveloperFilter, limit, offset int) ([]entity.User, int64, error)
}

type DeveloperFilter struct {
	Query        string
	VerifiedOnly bool
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User, profile *entity.DeveloperProfile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Role", "DeveloperProfile").Create(user).Error; err != nil {
			return apperror.FromDB(err)
		}

		if profile != nil {
			profile.UserID = user.ID
			if err := tx.Create(profile).Error; err != nil {
				return err
			}
			user.DeveloperProfile = profile
		}

		return nil
	})
}

func (r *userRepository) findOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).
		Preload("Role").
		Preload("DeveloperProfile").
		Where(query, arg).
		First(&user).Error; err != nil {
		return nil, apperror.FromDB(err)
	}

	return &user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, "email = ?", strings.ToLower(email))
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

func (r *userRepository) FindRoleByName(ctx context.Context, name string) (*entity.Role, error) {
	var role entity.Role
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		return nil, apperror.FromDB(err)
	}

	return &role, nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	return apperror.FromDB(r.db.WithContext(ctx).Omit("Role", "DeveloperProfile").Save(user).Error)
}

// Search matches public profiles by username prefix or substring.
func (r *userRepository) Search(ctx context.Context, query string, limit int) ([]entity.User, error) {
	var users []entity.User
	like := "%" + strings.ToLower(query) + "%"
	err := r.db.WithContext(ctx).
		Where("public_profile = ?", true).
		Where("LOWER(username) LIKE ?", like).
		Order("username asc").
		Limit(limit).
		Find(&users).Error
	return users, err
}

func (r *userRepository) CountDevelopers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.User{}).Where("is_developer = ?", true).Count(&count).Error
	return count, err
}

func (r *userRepository) FindDeveloperProfile(ctx context.Context, userID uuid.UUID) (*entity.DeveloperProfile, error) {
	var profile entity.DeveloperProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	return &profile, nil
}

// EnsureDeveloperProfile inserts profile unless one already exists for its user and
// reports whether it did. profile is reloaded with the stored row either way.
func (r *userRepository) EnsureDeveloperProfile(ctx context.Context, profile *entity.DeveloperProfile) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(profile)
	if res.Error != nil {
		return false, res.Error
	}
	if err := r.db.WithContext(ctx).Where("user_id = ?", profile.UserID).First(profile).Error; err != nil {
		return false, apperror.FromDB(err)
	}
	return res.RowsAffected > 0, nil
}

func (r *userRepository) UpdateDeveloperProfile(ctx context.Context, profile *entity.DeveloperProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

// ListDevelopers returns public developer accounts, most downloaded first.
func (r *userRepository) ListDevelopers(ctx context.Context, filter DeveloperFilter, limit, offset int) ([]entity.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.User{}).
		Joins("JOIN developer_profiles ON developer_profiles.user_id = users.id").
		Where("users.is_developer = ? AND users.public_profile = ?", true, true)

	if filter.VerifiedOnly {
		q = q.Where("developer_profiles.verified = ?", true)
	}
	if filter.Query != "" {
		like := "%" + strings.ToLower(filter.Query) + "%"
		q = q.Where("LOWER(users.username) LIKE ? OR LOWER(developer_profiles.display_name) LIKE ? OR LOWER(developer_profiles.company) LIKE ?", like, like, like)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []entity.User
	err := q.Select("users.*").
		Preload("DeveloperProfile").
		Order("developer_profiles.total_downloads desc").
		Order("users.username asc").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	return users, total, err
}
