package repository

import (
	"context"
	"fmt"

	"anoa.com/indieplatform/internal/entity"
	"anoa.com/indieplatform/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportRepository interface {
	Create(ctx context.Context, report *entity.Report) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Report, error)
	HasOpen(ctx context.Context, reporterID uuid.UUID, target entity.Ref) (bool, error)
	List(ctx context.Context, status string, limit, offset int) ([]entity.Report, int64, error)
	// SaveTransition persists report only if its stored status is still from.
	SaveTransition(ctx context.Context, report *entity.Report, from string) error
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *entity.Report) error {
	return r.db.WithContext(ctx).Omit("Reporter", "Moderator").Create(report).Error
}

func (r *reportRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Report, error) {
	var report entity.Report
	if err := r.db.WithContext(ctx).Preload("Reporter").Where("id = ?", id).First(&report).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	return &report, nil
}

func (r *reportRepository) HasOpen(ctx context.Context, reporterID uuid.UUID, target entity.Ref) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Report{}).
		Where("reporter_id = ? AND target_type = ? AND target_id = ?", reporterID, target.Kind, target.ID).
		Where("status IN ?", []string{entity.ReportPending, entity.ReportReviewed}).
		Count(&count).Error
	return count > 0, err
}

func (r *reportRepository) List(ctx context.Context, status string, limit, offset int) ([]entity.Report, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.Report{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	reports := []entity.Report{}
	err := q.Preload("Reporter").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&reports).Error
	return reports, total, err
}

func (r *reportRepository) SaveTransition(ctx context.Context, report *entity.Report, from string) error {
	res := r.db.WithContext(ctx).Model(&entity.Report{}).
		Where("id = ? AND status = ?", report.ID, from).
		Updates(map[string]any{
			"status":         report.Status,
			"moderator_id":   report.ModeratorID,
			"moderator_note": report.ModeratorNote,
			"resolved_at":    report.ResolvedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: report changed concurrently", apperror.ErrInvalidOperation)
	}
	return nil
}
