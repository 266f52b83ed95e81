package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PostTypeNews    = "news"
	PostTypeDevLog  = "dev_log"
	PostTypeRelease = "release"
	PostTypeUpdate  = "update"
	PostTypeGeneral = "general"
)

type Post struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"author_id"`
	Author        User       `gorm:"constraint:OnDelete:CASCADE" json:"author"`
	GameID        *uuid.UUID `gorm:"type:uuid;index" json:"game_id,omitempty"`
	Game          *Game      `gorm:"constraint:OnDelete:CASCADE" json:"game,omitempty"`
	Title         string     `gorm:"size:200;not null" json:"title"`
	Slug          string     `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	Content       string     `gorm:"type:text;not null" json:"content"`
	Excerpt       string     `gorm:"size:300" json:"excerpt"`
	PostType      string     `gorm:"size:20;not null;default:'general'" json:"post_type"`
	FeaturedImage *string    `gorm:"type:text" json:"featured_image,omitempty"`
	IsPublished   bool       `gorm:"not null;default:false" json:"is_published"`
	IsPinned      bool       `gorm:"not null;default:false" json:"is_pinned"`
	ViewCount     int64      `gorm:"not null;default:0" json:"view_count"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}

func (p *Post) Reference() Ref {
	return Ref{Kind: KindPost, ID: p.ID}
}

// SetPublished flips the flag; PublishedAt is stamped on the first transition only.
func (p *Post) SetPublished(published bool, now time.Time) {
	p.IsPublished = published
	if published && p.PublishedAt == nil {
		p.PublishedAt = &now
	}
}
