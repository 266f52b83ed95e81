package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationLike       = "like"
	NotificationComment    = "comment"
	NotificationFollow     = "follow"
	NotificationReview     = "review"
	NotificationGameUpdate = "game_update"
	NotificationSystem     = "system"
)

type Notification struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RecipientID uuid.UUID  `gorm:"type:uuid;not null;index:idx_notifications_inbox,priority:1" json:"recipient_id"`
	SenderID    *uuid.UUID `gorm:"type:uuid" json:"sender_id,omitempty"`
	Sender      *User      `gorm:"constraint:OnDelete:CASCADE" json:"sender,omitempty"`
	Type        string     `gorm:"size:20;not null" json:"type"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Message     string     `gorm:"type:text" json:"message"`
	TargetType  *Kind      `gorm:"size:20;index:idx_notifications_target,priority:1" json:"target_type,omitempty"`
	TargetID    *uuid.UUID `gorm:"type:uuid;index:idx_notifications_target,priority:2" json:"target_id,omitempty"`
	ActionURL   string     `gorm:"type:text" json:"action_url"`
	IsRead      bool       `gorm:"not null;default:false;index:idx_notifications_inbox,priority:2" json:"is_read"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID, err = uuid.NewV7()
	}
	return
}

func (n *Notification) SetTarget(ref Ref) {
	kind, id := ref.Kind, ref.ID
	n.TargetType = &kind
	n.TargetID = &id
}
