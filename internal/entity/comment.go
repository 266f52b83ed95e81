package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment attaches to any referable entity. Replies share their root's target and
// carry the root in ParentID; threading is one level deep.
type Comment struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User       User       `gorm:"constraint:OnDelete:CASCADE" json:"user"`
	TargetType Kind       `gorm:"size:20;not null;index:idx_comments_target,priority:1" json:"target_type"`
	TargetID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_comments_target,priority:2" json:"target_id"`
	ParentID   *uuid.UUID `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	Replies    []Comment  `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"replies,omitempty"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	IsPublic   bool       `gorm:"not null" json:"is_public"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

func (c *Comment) Reference() Ref {
	return Ref{Kind: KindComment, ID: c.ID}
}

func (c *Comment) Target() Ref {
	return Ref{Kind: c.TargetType, ID: c.TargetID}
}
