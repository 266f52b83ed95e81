package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleUser      = "user"
)

type User struct {
	ID                 uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Username           string            `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email              string            `gorm:"size:100;uniqueIndex;not null" json:"-"`
	PasswordHash       string            `gorm:"size:255;not null" json:"-"`
	RoleID             *uint             `json:"-"`
	Role               Role              `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	IsDeveloper        bool              `gorm:"not null;default:false" json:"is_developer"`
	AvatarURL          *string           `gorm:"type:text" json:"avatar_url,omitempty"`
	Bio                string            `gorm:"size:500" json:"bio"`
	DateOfBirth        *time.Time        `gorm:"type:date" json:"-"`
	Location           string            `gorm:"size:100" json:"location"`
	Website            string            `gorm:"size:200" json:"website"`
	Twitter            string            `gorm:"size:100" json:"twitter"`
	Github             string            `gorm:"size:100" json:"github"`
	EmailNotifications bool              `gorm:"not null" json:"-"`
	PublicProfile      bool              `gorm:"not null" json:"public_profile"`
	CreatedAt          time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"autoUpdateTime" json:"-"`
	DeveloperProfile   *DeveloperProfile `gorm:"constraint:OnDelete:CASCADE" json:"developer_profile,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) Reference() Ref {
	return Ref{Kind: KindUser, ID: u.ID}
}

// IsModerator reports whether the user may act on content reports.
func (u *User) IsModerator() bool {
	return u.Role.Name == RoleAdmin || u.Role.Name == RoleModerator
}

type DeveloperProfile struct {
	UserID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	DisplayName           string    `gorm:"size:100;not null" json:"display_name"`
	Company               string    `gorm:"size:100" json:"company"`
	Website               string    `gorm:"size:200" json:"website"`
	Bio                   string    `gorm:"size:1000" json:"bio"`
	Verified              bool      `gorm:"not null;default:false" json:"verified"`
	VerificationRequested bool      `gorm:"not null;default:false" json:"verification_requested"`
	StripeAccountID       string    `gorm:"size:100" json:"-"`
	PayoutEnabled         bool      `gorm:"not null;default:false" json:"-"`
	TotalEarningsCents    int64     `gorm:"not null;default:0" json:"total_earnings_cents"`
	TotalDownloads        int64     `gorm:"not null;default:0" json:"total_downloads"`
	CreatedAt             time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Follow is a directed edge; (follower, following) is unique.
type Follow struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FollowerID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follows_pair,priority:1" json:"follower_id"`
	Follower    User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	FollowingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follows_pair,priority:2;index" json:"following_id"`
	Following   User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (f *Follow) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID, err = uuid.NewV7()
	}
	return
}
