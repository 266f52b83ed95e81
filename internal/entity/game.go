package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Genre struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Slug        string    `gorm:"size:60;uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	Color       string    `gorm:"size:7;not null;default:'#007bff'" json:"color"`
}

func (g *Genre) BeforeCreate(tx *gorm.DB) (err error) {
	if g.ID == uuid.Nil {
		g.ID, err = uuid.NewV7()
	}
	return
}

const (
	PlatformWindows = "windows"
	PlatformMac     = "mac"
	PlatformLinux   = "linux"
	PlatformAndroid = "android"
	PlatformIOS     = "ios"
	PlatformWeb     = "web"
)

type Game struct {
	ID               uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Title            string                      `gorm:"size:200;not null" json:"title"`
	Slug             string                      `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	DeveloperID      uuid.UUID                   `gorm:"type:uuid;not null;index" json:"developer_id"`
	Developer        User                        `gorm:"constraint:OnDelete:CASCADE" json:"developer"`
	Description      string                      `gorm:"type:text;not null" json:"description"`
	ShortDescription string                      `gorm:"size:300;not null" json:"short_description"`
	CoverImage       string                      `gorm:"type:text" json:"cover_image"`
	BannerImage      *string                     `gorm:"type:text" json:"banner_image,omitempty"`
	Genres           []Genre                     `gorm:"many2many:game_genres" json:"genres"`
	Tags             datatypes.JSONSlice[string] `json:"tags"`
	IsPublished      bool                        `gorm:"not null;default:false;index" json:"is_published"`
	Featured         bool                        `gorm:"not null;default:false" json:"featured"`
	WindowsSupport   bool                        `gorm:"not null" json:"windows_support"`
	MacSupport       bool                        `gorm:"not null;default:false" json:"mac_support"`
	LinuxSupport     bool                        `gorm:"not null;default:false" json:"linux_support"`
	AndroidSupport   bool                        `gorm:"not null;default:false" json:"android_support"`
	IOSSupport       bool                        `gorm:"column:ios_support;not null;default:false" json:"ios_support"`
	DownloadCount    int64                       `gorm:"not null;default:0" json:"download_count"`
	ViewCount        int64                       `gorm:"not null;default:0" json:"view_count"`
	CreatedAt        time.Time                   `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt        time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`
	Files            []GameFile                  `json:"files,omitempty"`
	Images           []GameImage                 `json:"images,omitempty"`
}

func (g *Game) BeforeCreate(tx *gorm.DB) (err error) {
	if g.ID == uuid.Nil {
		g.ID, err = uuid.NewV7()
	}
	return
}

func (g *Game) Reference() Ref {
	return Ref{Kind: KindGame, ID: g.ID}
}

// Platforms lists the supported platforms in display order.
func (g *Game) Platforms() []string {
	var out []string
	if g.WindowsSupport {
		out = append(out, PlatformWindows)
	}
	if g.MacSupport {
		out = append(out, PlatformMac)
	}
	if g.LinuxSupport {
		out = append(out, PlatformLinux)
	}
	if g.AndroidSupport {
		out = append(out, PlatformAndroid)
	}
	if g.IOSSupport {
		out = append(out, PlatformIOS)
	}
	return out
}

type GameFile struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GameID        uuid.UUID `gorm:"type:uuid;not null;index" json:"game_id"`
	Name          string    `gorm:"size:200;not null" json:"name"`
	FileURL       string    `gorm:"type:text;not null" json:"-"`
	Platform      string    `gorm:"size:20;not null" json:"platform"`
	Version       string    `gorm:"size:50;not null;default:'1.0'" json:"version"`
	FileSize      int64     `gorm:"not null;default:0" json:"file_size"`
	DownloadCount int64     `gorm:"not null;default:0" json:"download_count"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (f *GameFile) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID, err = uuid.NewV7()
	}
	return
}

type GameImage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GameID    uuid.UUID `gorm:"type:uuid;not null;index" json:"game_id"`
	ImageURL  string    `gorm:"type:text;not null" json:"image_url"`
	Caption   string    `gorm:"size:200" json:"caption"`
	SortOrder int       `gorm:"not null;default:0" json:"order"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (i *GameImage) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID, err = uuid.NewV7()
	}
	return
}

// Download is an append-only audit row. It carries no foreign keys so the log
// outlives the game and file it names.
type Download struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	GameID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"game_id"`
	GameFileID *uuid.UUID `gorm:"type:uuid;index" json:"game_file_id,omitempty"`
	IPAddress  string     `gorm:"size:45;not null" json:"ip_address"`
	UserAgent  string     `gorm:"type:text" json:"user_agent"`
	CreatedAt  time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (d *Download) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID, err = uuid.NewV7()
	}
	return
}

type Wishlist struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_wishlists_pair,priority:1" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	GameID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_wishlists_pair,priority:2" json:"game_id"`
	Game      Game      `gorm:"constraint:OnDelete:CASCADE" json:"game"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (w *Wishlist) BeforeCreate(tx *gorm.DB) (err error) {
	if w.ID == uuid.Nil {
		w.ID, err = uuid.NewV7()
	}
	return
}
