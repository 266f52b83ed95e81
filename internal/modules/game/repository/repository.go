package repository

import (
	"context"
	"strings"

	"anoa.com/indieplatform/internal/entity"
	"anoa.com/indieplatform/internal/modules/reference"
	"anoa.com/indieplatform/pkg/apperror"
	"anoa.com/indieplatform/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GameFilter is a validated catalog query.
type GameFilter struct {
	Query     string
	GenreIDs  []uuid.UUID
	Platforms []string
	Order     string
}

type GameRepository interface {
	Create(ctx context.Context, game *entity.Game) error
	FindBySlug(ctx context.Context, slug string) (*entity.Game, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Game, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, game *entity.Game, genres []entity.Genre) error
	Delete(ctx context.Context, game *entity.Game) error

	List(ctx context.Context, filter GameFilter, limit, offset int) ([]entity.Game, int64, error)
	Similar(ctx context.Context, game *entity.Game, limit int) ([]entity.Game, error)
	ByDeveloper(ctx context.Context, developerID uuid.UUID) ([]entity.Game, error)
	LatestPublicReviews(ctx context.Context, gameID uuid.UUID, limit int) ([]entity.Review, error)
	RatingSummary(ctx context.Context, gameID uuid.UUID) (average float64, count int64, err error)
	IncrementView(ctx context.Context, gameID uuid.UUID) error

	AddFile(ctx context.Context, file *entity.GameFile) error
	AddImage(ctx context.Context, image *entity.GameImage) error
	FindFile(ctx context.Context, gameID, fileID uuid.UUID) (*entity.GameFile, error)
	FirstFile(ctx context.Context, gameID uuid.UUID) (*entity.GameFile, error)
	CountFiles(ctx context.Context, gameID uuid.UUID) (int64, error)
	RecordDownload(ctx context.Context, download *entity.Download) error
	LibraryGameIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	FindPublishedByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Game, error)

	ToggleWishlist(ctx context.Context, userID, gameID uuid.UUID) (bool, error)
	CountWishlisted(ctx context.Context, gameID uuid.UUID) (int64, error)
	InWishlist(ctx context.Context, userID, gameID uuid.UUID) (bool, error)
	Wishlist(ctx context.Context, userID uuid.UUID) ([]entity.Wishlist, error)

	Featured(ctx context.Context, limit int) ([]entity.Game, error)
	Newest(ctx context.Context, limit int) ([]entity.Game, error)
	MostDownloaded(ctx context.Context, limit int) ([]entity.Game, error)
	AllPublished(ctx context.Context) ([]entity.Game, error)
	CountPublished(ctx context.Context) (int64, error)
	SumDownloads(ctx context.Context) (int64, error)
}

type gameRepository struct {
	db *gorm.DB
}

func NewGameRepository(db *gorm.DB) GameRepository {
	return &gameRepository{db: db}
}

func (r *gameRepository) Create(ctx context.Context, game *entity.Game) error {
	return apperror.FromDB(r.db.WithContext(ctx).Omit("Developer", "Genres.*", "Files", "Images").Create(game).Error)
}

func (r *gameRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Developer").
		Preload("Genres").
		Preload("Files", func(db *gorm.DB) *gorm.DB { return db.Order("platform asc").Order("created_at asc") }).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order asc").Order("created_at asc") })
}

func (r *gameRepository) FindBySlug(ctx context.Context, slug string) (*entity.Game, error) {
	var game entity.Game
	if err := r.preloaded(ctx).Where("slug = ?", slug).First(&game).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	return &game, nil
}

func (r *gameRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Game, error) {
	var game entity.Game
	if err := r.preloaded(ctx).Where("id = ?", id).First(&game).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	return &game, nil
}

func (r *gameRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Game{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// Update saves the scalar columns and, when genres is non-nil, replaces the genre set.
func (r *gameRepository) Update(ctx context.Context, game *entity.Game, genres []entity.Genre) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Developer", "Genres", "Files", "Images").Save(game).Error; err != nil {
			return apperror.FromDB(err)
		}
		if genres == nil {
			return nil
		}
		if err := tx.Model(game).Association("Genres").Replace(genres); err != nil {
			return err
		}
		game.Genres = genres
		return nil
	})
}

// Delete removes game with everything hanging off it in one transaction: its reviews and
// posts, their comments, likes, notifications and reports, wishlist entries, ratings,
// files and images. Download rows are kept.
func (r *gameRepository) Delete(ctx context.Context, game *entity.Game) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		refs := []entity.Ref{game.Reference()}

		var reviewIDs, postIDs []uuid.UUID
		if err := tx.Model(&entity.Review{}).Where("game_id = ?", game.ID).Pluck("id", &reviewIDs).Error; err != nil {
			return err
		}
		if err := tx.Model(&entity.Post{}).Where("game_id = ?", game.ID).Pluck("id", &postIDs).Error; err != nil {
			return err
		}
		for _, id := range reviewIDs {
			refs = append(refs, entity.Ref{Kind: entity.KindReview, ID: id})
		}
		for _, id := range postIDs {
			refs = append(refs, entity.Ref{Kind: entity.KindPost, ID: id})
		}

		if err := reference.Cascade(tx, refs...); err != nil {
			return err
		}

		for _, model := range []any{&entity.Review{}, &entity.Post{}, &entity.GameRating{}, &entity.Wishlist{}, &entity.GameFile{}, &entity.GameImage{}} {
			if err := tx.Where("game_id = ?", game.ID).Delete(model).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(game).Association("Genres").Clear(); err != nil {
			return err
		}
		return tx.Delete(&entity.Game{}, "id = ?", game.ID).Error
	})
}

func (r *gameRepository) List(ctx context.Context, filter GameFilter, limit, offset int) ([]entity.Game, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.Game{}).Where("is_published = ?", true)

	if filter.Query != "" {
		like := "%" + strings.ToLower(filter.Query) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(short_description) LIKE ? OR LOWER(CAST(tags AS TEXT)) LIKE ?", like, like, like, like)
	}
	if len(filter.GenreIDs) > 0 {
		q = q.Where("id IN (?)", r.db.Table("game_genres").Select("game_id").Where("genre_id IN ?", filter.GenreIDs))
	}
	for _, p := range filter.Platforms {
		q = q.Where(platformColumn(p)+" = ?", true)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := filter.Order
	if order == "" {
		order = "created_at desc"
	}

	var games []entity.Game
	err := q.Preload("Developer").
		Preload("Genres").
		Order(order).
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&games).Error
	return games, total, err
}

func platformColumn(p string) string {
	switch p {
	case entity.PlatformMac:
		return "mac_support"
	case entity.PlatformLinux:
		return "linux_support"
	case entity.PlatformAndroid:
		return "android_support"
	case entity.PlatformIOS:
		return "ios_support"
	}
	return "windows_support"
}

func (r *gameRepository) Similar(ctx context.Context, game *entity.Game, limit int) ([]entity.Game, error) {
	games := []entity.Game{}
	if len(game.Genres) == 0 {
		return games, nil
	}

	genreIDs := make([]uuid.UUID, 0, len(game.Genres))
	for _, g := range game.Genres {
		genreIDs = append(genreIDs, g.ID)
	}

	err := r.db.WithContext(ctx).
		Preload("Developer").
		Where("is_published = ? AND id <> ?", true, game.ID).
		Where("id IN (?)", r.db.Table("game_genres").Select("game_id").Where("genre_id IN ?", genreIDs)).
		Order("download_count desc").
		Order("created_at desc").
		Limit(limit).
		Find(&games).Error
	return games, err
}

func (r *gameRepository) ByDeveloper(ctx context.Context, developerID uuid.UUID) ([]entity.Game, error) {
	var games []entity.Game
	err := r.db.WithContext(ctx).
		Preload("Genres").
		Where("developer_id = ?", developerID).
		Order("created_at desc").
		Find(&games).Error
	return games, err
}

func (r *gameRepository) LatestPublicReviews(ctx context.Context, gameID uuid.UUID, limit int) ([]entity.Review, error) {
	reviews := []entity.Review{}
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("game_id = ? AND is_public = ?", gameID, true).
		Order("created_at desc").
		Limit(limit).
		Find(&reviews).Error
	return reviews, err
}

func (r *gameRepository) RatingSummary(ctx context.Context, gameID uuid.UUID) (float64, int64, error) {
	var row struct {
		Average float64
		Count   int64
	}
	err := r.db.WithContext(ctx).
		Model(&entity.GameRating{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("game_id = ?", gameID).
		Scan(&row).Error
	return row.Average, row.Count, err
}

func (r *gameRepository) IncrementView(ctx context.Context, gameID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&entity.Game{}).
		Where("id = ?", gameID).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
}

func (r *gameRepository) AddFile(ctx context.Context, file *entity.GameFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *gameRepository) AddImage(ctx context.Context, image *entity.GameImage) error {
	return r.db.WithContext(ctx).Create(image).Error
}

func (r *gameRepository) FindFile(ctx context.Context, gameID, fileID uuid.UUID) (*entity.GameFile, error) {
	var file entity.GameFile
	if err := r.db.WithContext(ctx).Where("id = ? AND game_id = ?", fileID, gameID).First(&file).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	return &file, nil
}

// FirstFile is the file served when a download names no file: the newest upload.
func (r *gameRepository) FirstFile(ctx context.Context, gameID uuid.UUID) (*entity.GameFile, error) {
	var file entity.GameFile
	err := r.db.WithContext(ctx).
		Where("game_id = ?", gameID).
		Order("created_at desc").
		Order("id desc").
		First(&file).Error
	if err != nil {
		return nil, apperror.FromDB(err)
	}
	return &file, nil
}

func (r *gameRepository) CountFiles(ctx context.Context, gameID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.GameFile{}).Where("game_id = ?", gameID).Count(&count).Error
	return count, err
}

// RecordDownload appends the audit row and bumps the game, file and developer counters
// in one transaction.
func (r *gameRepository) RecordDownload(ctx context.Context, download *entity.Download) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(download).Error; err != nil {
			return err
		}

		res := tx.Model(&entity.Game{}).
			Where("id = ?", download.GameID).
			UpdateColumn("download_count", gorm.Expr("download_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.ErrNotFound
		}

		if download.GameFileID != nil {
			res = tx.Model(&entity.GameFile{}).
				Where("id = ? AND game_id = ?", *download.GameFileID, download.GameID).
				UpdateColumn("download_count", gorm.Expr("download_count + ?", 1))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return apperror.ErrNotFound
			}
		}

		return tx.Model(&entity.DeveloperProfile{}).
			Where("user_id = (?)", tx.Model(&entity.Game{}).Select("developer_id").Where("id = ?", download.GameID)).
			UpdateColumn("total_downloads", gorm.Expr("total_downloads + ?", 1)).Error
	})
}

// LibraryGameIDs lists the games userID downloaded, most recent download first.
func (r *gameRepository) LibraryGameIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&entity.Download{}).
		Select("game_id").
		Where("user_id = ?", userID).
		Group("game_id").
		Order("MAX(created_at) desc").
		Pluck("game_id", &ids).Error
	return ids, err
}

func (r *gameRepository) FindPublishedByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Game, error) {
	var games []entity.Game
	if len(ids) == 0 {
		return games, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Developer").
		Where("id IN ? AND is_published = ?", ids, true).
		Find(&games).Error
	return games, err
}

func (r *gameRepository) ToggleWishlist(ctx context.Context, userID, gameID uuid.UUID) (bool, error) {
	row := &entity.Wishlist{UserID: userID, GameID: gameID}
	return database.Toggle(ctx, r.db, row, "user_id = ? AND game_id = ?", userID, gameID)
}

func (r *gameRepository) CountWishlisted(ctx context.Context, gameID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Wishlist{}).Where("game_id = ?", gameID).Count(&count).Error
	return count, err
}

func (r *gameRepository) InWishlist(ctx context.Context, userID, gameID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Wishlist{}).
		Where("user_id = ? AND game_id = ?", userID, gameID).
		Count(&count).Error
	return count > 0, err
}

func (r *gameRepository) Wishlist(ctx context.Context, userID uuid.UUID) ([]entity.Wishlist, error) {
	entries := []entity.Wishlist{}
	err := r.db.WithContext(ctx).
		Preload("Game").
		Preload("Game.Developer").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&entries).Error
	return entries, err
}

func (r *gameRepository) published(ctx context.Context, limit int) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Developer").
		Preload("Genres").
		Where("is_published = ?", true).
		Limit(limit)
}

func (r *gameRepository) Featured(ctx context.Context, limit int) ([]entity.Game, error) {
	games := []entity.Game{}
	err := r.published(ctx, limit).Where("featured = ?", true).Order("created_at desc").Find(&games).Error
	return games, err
}

func (r *gameRepository) AllPublished(ctx context.Context) ([]entity.Game, error) {
	games := []entity.Game{}
	err := r.db.WithContext(ctx).
		Preload("Developer").
		Preload("Genres").
		Where("is_published = ?", true).
		Find(&games).Error
	return games, err
}

func (r *gameRepository) Newest(ctx context.Context, limit int) ([]entity.Game, error) {
	games := []entity.Game{}
	err := r.published(ctx, limit).Order("created_at desc").Find(&games).Error
	return games, err
}

func (r *gameRepository) MostDownloaded(ctx context.Context, limit int) ([]entity.Game, error) {
	games := []entity.Game{}
	err := r.published(ctx, limit).Order("download_count desc").Order("created_at desc").Find(&games).Error
	return games, err
}

func (r *gameRepository) CountPublished(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Game{}).Where("is_published = ?", true).Count(&count).Error
	return count, err
}

func (r *gameRepository) SumDownloads(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.Game{}).
		Where("is_published = ?", true).
		Select("COALESCE(SUM(download_count), 0)").
		Scan(&total).Error
	return total, err
}
