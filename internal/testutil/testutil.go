// Package testutil provides in-memory database and redis fixtures for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"anoa.com/indieplatform/internal/bootstrap"
	"anoa.com/indieplatform/internal/entity"
	"anoa.com/indieplatform/pkg/database"
	"github.com/alicebob/miniredis/v2"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDB returns a migrated, role-seeded in-memory SQLite database private to t.
// The pool is pinned to one connection so every goroutine shares the same memory db.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8])

	db, err := database.Open(sqlite.Open(dsn))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := bootstrap.Migrate(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	if err := bootstrap.SeedRoles(db); err != nil {
		t.Fatalf("seed roles: %v", err)
	}

	return db
}

// NewRedis starts a miniredis server bound to t's lifetime.
func NewRedis(t testing.TB) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

type UserOption func(*entity.User)

func Developer() UserOption {
	return func(u *entity.User) { u.IsDeveloper = true }
}

func Private() UserOption {
	return func(u *entity.User) { u.PublicProfile = false }
}

func WithRole(db *gorm.DB, name string) UserOption {
	return func(u *entity.User) {
		var role entity.Role
		if err := db.Where("name = ?", name).First(&role).Error; err == nil {
			u.RoleID = &role.ID
			u.Role = role
		}
	}
}

func CreateUser(t testing.TB, db *gorm.DB, opts ...UserOption) *entity.User {
	t.Helper()

	u := &entity.User{
		Username:           strings.ToLower(gofakeit.Username()) + uuid.NewString()[:6],
		Email:              uuid.NewString()[:8] + gofakeit.Email(),
		PasswordHash:       "x",
		PublicProfile:      true,
		EmailNotifications: true,
	}
	for _, opt := range opts {
		opt(u)
	}
	if err := db.Omit("Role", "DeveloperProfile").Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

type GameOption func(*entity.Game)

func Published() GameOption {
	return func(g *entity.Game) { g.IsPublished = true }
}

func CreateGame(t testing.TB, db *gorm.DB, developer *entity.User, opts ...GameOption) *entity.Game {
	t.Helper()

	title := gofakeit.AppName()
	g := &entity.Game{
		Title:            title,
		Slug:             strings.ToLower(strings.ReplaceAll(title, " ", "-")) + "-" + uuid.NewString()[:8],
		DeveloperID:      developer.ID,
		Description:      gofakeit.Paragraph(1, 3, 12, " "),
		ShortDescription: gofakeit.Sentence(8),
		CoverImage:       "/media/games/covers/cover.webp",
		WindowsSupport:   true,
	}
	for _, opt := range opts {
		opt(g)
	}
	if err := db.Omit("Developer", "Genres", "Files", "Images").Create(g).Error; err != nil {
		t.Fatalf("create game: %v", err)
	}
	return g
}

func CreateFile(t testing.TB, db *gorm.DB, game *entity.Game, platform string) *entity.GameFile {
	t.Helper()

	f := &entity.GameFile{
		GameID:   game.ID,
		Name:     game.Title + " " + platform,
		FileURL:  "/media/games/files/" + uuid.NewString() + ".zip",
		Platform: platform,
		Version:  "1.0",
		FileSize: 1024,
	}
	if err := db.Create(f).Error; err != nil {
		t.Fatalf("create file: %v", err)
	}
	return f
}
