package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is unique per (user, game).
type Review struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_pair,priority:1" json:"user_id"`
	User         User      `gorm:"constraint:OnDelete:CASCADE" json:"user"`
	GameID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_pair,priority:2;index" json:"game_id"`
	Game         *Game     `gorm:"constraint:OnDelete:CASCADE" json:"game,omitempty"`
	Title        string    `gorm:"size:200;not null" json:"title"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	Rating       int       `gorm:"not null;check:chk_reviews_rating,rating >= 1 AND rating <= 5" json:"rating"`
	Recommended  bool      `gorm:"not null" json:"recommended"`
	IsPublic     bool      `gorm:"not null" json:"is_public"`
	HelpfulCount int64     `gorm:"not null;default:0" json:"helpful_count"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}

func (r *Review) Reference() Ref {
	return Ref{Kind: KindReview, ID: r.ID}
}

// GameRating is a bare score, unique per (user, game) independently of Review.
type GameRating struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_game_ratings_pair,priority:1" json:"user_id"`
	GameID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_game_ratings_pair,priority:2;index" json:"game_id"`
	Rating    int       `gorm:"not null;check:chk_game_ratings_rating,rating >= 1 AND rating <= 5" json:"rating"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (r *GameRating) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}
