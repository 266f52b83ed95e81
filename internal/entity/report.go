package entity

import (
	"fmt"
	"time"

	"anoa.com/indieplatform/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ReportPending   = "pending"
	ReportReviewed  = "reviewed"
	ReportResolved  = "resolved"
	ReportDismissed = "dismissed"
)

var ReportReasons = []string{"spam", "harassment", "hate_speech", "inappropriate", "copyright", "other"}

type Report struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ReporterID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"reporter_id"`
	Reporter      User       `gorm:"constraint:OnDelete:CASCADE" json:"reporter"`
	TargetType    Kind       `gorm:"size:20;not null;index:idx_reports_target,priority:1" json:"target_type"`
	TargetID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_reports_target,priority:2" json:"target_id"`
	Reason        string     `gorm:"size:20;not null" json:"reason"`
	Description   string     `gorm:"type:text" json:"description"`
	Status        string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	ModeratorID   *uuid.UUID `gorm:"type:uuid" json:"moderator_id,omitempty"`
	Moderator     *User      `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	ModeratorNote string     `gorm:"type:text" json:"moderator_note"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
}

func (Report) TableName() string {
	return "report_contents"
}

func (r *Report) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}

func (r *Report) Target() Ref {
	return Ref{Kind: r.TargetType, ID: r.TargetID}
}

// IsTerminal reports whether no further transition is allowed.
func (r *Report) IsTerminal() bool {
	return r.Status == ReportResolved || r.Status == ReportDismissed
}

// Transition moves the report to status on behalf of moderatorID. Pending and reviewed
// reports may move forward; resolved and dismissed are final. ResolvedAt is set once.
func (r *Report) Transition(status string, moderatorID uuid.UUID, note string, now time.Time) error {
	if r.IsTerminal() {
		return fmt.Errorf("%w: report is already %s", apperror.ErrInvalidOperation, r.Status)
	}

	switch status {
	case ReportReviewed:
		if r.Status != ReportPending {
			return fmt.Errorf("%w: cannot move %s report to reviewed", apperror.ErrInvalidOperation, r.Status)
		}
	case ReportResolved, ReportDismissed:
	default:
		return fmt.Errorf("%w: unknown target status %q", apperror.ErrInvalidOperation, status)
	}

	r.Status = status
	r.ModeratorID = &moderatorID
	if note != "" {
		r.ModeratorNote = note
	}
	if status == ReportResolved && r.ResolvedAt == nil {
		r.ResolvedAt = &now
	}
	return nil
}
