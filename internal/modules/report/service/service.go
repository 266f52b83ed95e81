package report

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"anoa.com/indieplatform/internal/entity"
	notifService "anoa.com/indieplatform/internal/modules/notification/service"
	"anoa.com/indieplatform/internal/modules/reference"
	reportDto "anoa.com/indieplatform/internal/modules/report/dto"
	reportRepo "anoa.com/indieplatform/internal/modules/report/repository"
	userRepo "anoa.com/indieplatform/internal/modules/user/repository"
	"anoa.com/indieplatform/pkg/apperror"
	commonDto "anoa.com/indieplatform/pkg/dto"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ReportInput struct {
	Target      entity.Ref
	Reason      string
	Description string
}

type ReportService interface {
	CreateReport(ctx context.Context, reporterID uuid.UUID, input ReportInput) (*entity.Report, error)
	ListReports(ctx context.Context, query reportDto.ReportQuery) (*commonDto.Paginated[entity.Report], error)
	UpdateStatus(ctx context.Context, moderatorID, reportID uuid.UUID, status, note string) (*entity.Report, error)
}

type reportService struct {
	repo                reportRepo.ReportRepository
	resolver            *reference.Resolver
	users               userRepo.UserRepository
	notificationService notifService.NotificationService
	now                 func() time.Time
}

func NewReportService(repo reportRepo.ReportRepository, resolver *reference.Resolver, users userRepo.UserRepository, notificationService notifService.NotificationService) ReportService {
	return &reportService{
		repo:                repo,
		resolver:            resolver,
		users:               users,
		notificationService: notificationService,
		now:                 time.Now,
	}
}

// CreateReport files a pending report. A reporter may hold one open report per target.
func (s *reportService) CreateReport(ctx context.Context, reporterID uuid.UUID, input ReportInput) (*entity.Report, error) {
	if !slices.Contains(entity.ReportReasons, input.Reason) {
		return nil, fmt.Errorf("%w: unknown reason %q", apperror.ErrInvalidInput, input.Reason)
	}

	if _, err := s.resolver.ResolveVisible(ctx, input.Target, &reporterID); err != nil {
		return nil, err
	}

	open, err := s.repo.HasOpen(ctx, reporterID, input.Target)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, fmt.Errorf("%w: you already reported this", apperror.ErrConflict)
	}

	report := &entity.Report{
		ReporterID:  reporterID,
		TargetType:  input.Target.Kind,
		TargetID:    input.Target.ID,
		Reason:      input.Reason,
		Description: strings.TrimSpace(input.Description),
		Status:      entity.ReportPending,
	}
	if err := s.repo.Create(ctx, report); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"report_id": report.ID,
		"target":    input.Target.String(),
		"reason":    report.Reason,
	}).Info("content reported")
	return report, nil
}

func (s *reportService) ListReports(ctx context.Context, query reportDto.ReportQuery) (*commonDto.Paginated[entity.Report], error) {
	page, limit, offset := query.Normalize(20, 100)
	reports, total, err := s.repo.List(ctx, query.Status, limit, offset)
	if err != nil {
		return nil, err
	}
	return &commonDto.Paginated[entity.Report]{Data: reports, Meta: commonDto.NewMeta(page, limit, total)}, nil
}

// UpdateStatus moves a report along its lifecycle. Only moderators and admins may act.
func (s *reportService) UpdateStatus(ctx context.Context, moderatorID, reportID uuid.UUID, status, note string) (*entity.Report, error) {
	actor, err := s.users.FindByID(ctx, moderatorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsModerator() {
		return nil, fmt.Errorf("%w: only moderators can review reports", apperror.ErrInvalidOperation)
	}

	report, err := s.repo.FindByID(ctx, reportID)
	if err != nil {
		return nil, err
	}

	from := report.Status
	if err := report.Transition(status, moderatorID, strings.TrimSpace(note), s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.SaveTransition(ctx, report, from); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"report_id":    report.ID,
		"from":         from,
		"to":           report.Status,
		"moderator_id": moderatorID,
	}).Info("report transitioned")

	if report.IsTerminal() {
		s.notifyReporter(ctx, report)
	}
	return report, nil
}

func (s *reportService) notifyReporter(ctx context.Context, report *entity.Report) {
	if s.notificationService == nil || report.ModeratorID == nil || *report.ModeratorID == report.ReporterID {
		return
	}

	s.notificationService.Notify(ctx, &entity.Notification{
		RecipientID: report.ReporterID,
		SenderID:    report.ModeratorID,
		Type:        entity.NotificationSystem,
		Title:       "Report " + report.Status,
		Message:     fmt.Sprintf("Your report about a %s was %s.", report.TargetType, report.Status),
	})
}
