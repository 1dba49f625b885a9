package service

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/travellinq/backend/internal/domain"
	"github.com/travellinq/backend/internal/logger"
	"github.com/travellinq/backend/internal/metrics"
	"github.com/travellinq/backend/internal/realtime"
	"github.com/travellinq/backend/internal/repository"
	"go.uber.org/zap"
)

const MaxReportReasonLength = 1000

type ModerationService struct {
	reportRepo          *repository.ReportRepository
	commentRepo         *repository.CommentRepository
	postRepo            *repository.PostRepository
	userRepo            *repository.UserRepository
	notificationService *NotificationService
	publisher           Publisher
}

func NewModerationService(
	reportRepo *repository.ReportRepository,
	commentRepo *repository.CommentRepository,
	postRepo *repository.PostRepository,
	userRepo *repository.UserRepository,
	notificationService *NotificationService,
	publisher Publisher,
) *ModerationService {
	return &ModerationService{
		reportRepo:          reportRepo,
		commentRepo:         commentRepo,
		postRepo:            postRepo,
		userRepo:            userRepo,
		notificationService: notificationService,
		publisher:           publisher,
	}
}

// DashboardStats is the admin overview.
type DashboardStats struct {
	Users struct {
		Total         int64 `json:"total"`
		Admins        int64 `json:"admins"`
		Inactive      int64 `json:"inactive"`
		NewLast30Days int64 `json:"new_last_30_days"`
	} `json:"users"`
	Posts struct {
		Visible int64 `json:"visible"`
		Hidden  int64 `json:"hidden"`
	} `json:"posts"`
	HiddenComments int64 `json:"hidden_comments"`
	Reports        struct {
		Total    int64 `json:"total"`
		Pending  int64 `json:"pending"`
		Reviewed int64 `json:"reviewed"`
		Resolved int64 `json:"resolved"`
	} `json:"reports"`
}

// Report files a user's flag on a post or comment.
func (s *ModerationService) Report(ctx context.Context, reporterID uuid.UUID, target domain.ReportTarget, targetID uuid.UUID, reason string) (*domain.Report, error) {
	reason = cleanText(reason)
	if reason == "" {
		return nil, invalid("reason is required")
	}
	if utf8.RuneCountInString(reason) > MaxReportReasonLength {
		return nil, invalid("reason is longer than %d characters", MaxReportReasonLength)
	}

	switch target {
	case domain.ReportTargetComment:
		if _, err := s.commentRepo.FindByID(ctx, targetID); err != nil {
			return nil, notFound(err, "comment")
		}
	case domain.ReportTargetPost:
		if _, err := s.postRepo.FindByID(ctx, targetID); err != nil {
			return nil, notFound(err, "post")
		}
	default:
		return nil, invalid("unknown report target %q", target)
	}

	open, err := s.reportRepo.HasOpenReport(ctx, reporterID, target, targetID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, ErrConflict
	}

	report := &domain.Report{
		ReporterID: reporterID,
		TargetType: target,
		TargetID:   targetID,
		Reason:     reason,
		Status:     domain.ReportStatusPending,
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *ModerationService) ListReports(ctx context.Context, status, targetType string, page, limit int) ([]domain.Report, int64, error) {
	return s.reportRepo.List(ctx, status, targetType, page, limit)
}

// ResolveReport moves a report to reviewed or resolved, optionally hiding the
// reported content. The reporter hears back once it is resolved.
func (s *ModerationService) ResolveReport(ctx context.Context, adminID, reportID uuid.UUID, status domain.ReportStatus, notes *string, hide bool) (*domain.Report, error) {
	if status != domain.ReportStatusReviewed && status != domain.ReportStatusResolved {
		return nil, invalid("status must be reviewed or resolved")
	}

	report, err := s.reportRepo.FindByID(ctx, reportID)
	if err != nil {
		return nil, notFound(err, "report")
	}

	if hide {
		reason := report.Reason
		switch report.TargetType {
		case domain.ReportTargetComment:
			err = s.HideComment(ctx, adminID, report.TargetID, reason)
		case domain.ReportTargetPost:
			err = s.HidePost(ctx, adminID, report.TargetID, reason)
		}
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	report.Status = status
	report.AdminNotes = notes
	report.ResolvedBy = &adminID
	report.ResolvedAt = &now
	if err := s.reportRepo.Update(ctx, report); err != nil {
		return nil, err
	}

	if status == domain.ReportStatusResolved {
		_ = s.notificationService.NotifyReportResolved(ctx, report)
	}
	return report, nil
}

// HideComment hides a comment from non-admins. It stays in its thread.
func (s *ModerationService) HideComment(ctx context.Context, adminID, commentID uuid.UUID, reason string) error {
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		return notFound(err, "comment")
	}

	var reasonPtr *string
	if reason = cleanText(reason); reason != "" {
		reasonPtr = &reason
	}
	if err := s.commentRepo.SetHidden(ctx, commentID, true, reasonPtr, &adminID); err != nil {
		return notFound(err, "comment")
	}

	s.logAction("hide_comment", adminID, commentID)
	if s.publisher != nil {
		s.publisher.PublishToPost(comment.PostID, realtime.Event{
			Type:    realtime.EventCommentHidden,
			Payload: map[string]interface{}{"comment_id": commentID, "hidden": true},
		})
	}
	_ = s.notificationService.NotifyContentHidden(ctx, comment.UserID, domain.ReportTargetComment, commentID, reason)
	return nil
}

func (s *ModerationService) UnhideComment(ctx context.Context, adminID, commentID uuid.UUID) error {
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		return notFound(err, "comment")
	}
	if err := s.commentRepo.SetHidden(ctx, commentID, false, nil, nil); err != nil {
		return notFound(err, "comment")
	}

	s.logAction("unhide_comment", adminID, commentID)
	if s.publisher != nil {
		s.publisher.PublishToPost(comment.PostID, realtime.Event{
			Type:    realtime.EventCommentHidden,
			Payload: map[string]interface{}{"comment_id": commentID, "hidden": false},
		})
	}
	return nil
}

func (s *ModerationService) HidePost(ctx context.Context, adminID, postID uuid.UUID, reason string) error {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return notFound(err, "post")
	}
	if err := s.postRepo.SetStatus(ctx, postID, domain.PostHidden); err != nil {
		return notFound(err, "post")
	}

	s.logAction("hide_post", adminID, postID)
	_ = s.notificationService.NotifyContentHidden(ctx, post.UserID, domain.ReportTargetPost, postID, cleanText(reason))
	return nil
}

func (s *ModerationService) UnhidePost(ctx context.Context, adminID, postID uuid.UUID) error {
	if err := s.postRepo.SetStatus(ctx, postID, domain.PostVisible); err != nil {
		return notFound(err, "post")
	}
	s.logAction("unhide_post", adminID, postID)
	return nil
}

// SetUserActive switches an account on or off. Admins cannot lock themselves out.
func (s *ModerationService) SetUserActive(ctx context.Context, adminID, userID uuid.UUID, active bool) error {
	if adminID == userID && !active {
		return invalid("cannot deactivate your own account")
	}
	if err := s.userRepo.SetActive(ctx, userID, active); err != nil {
		return notFound(err, "user")
	}

	action := "activate_user"
	if !active {
		action = "deactivate_user"
	}
	s.logAction(action, adminID, userID)
	return nil
}

func (s *ModerationService) ListUsers(ctx context.Context, search string, isActive *bool, page, limit int) ([]domain.User, int64, error) {
	return s.userRepo.List(ctx, search, isActive, page, limit)
}

func (s *ModerationService) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	var err error

	since := time.Now().AddDate(0, 0, -30)
	stats.Users.Total, stats.Users.Admins, stats.Users.Inactive, stats.Users.NewLast30Days, err = s.userRepo.Stats(ctx, since)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	stats.Posts.Visible = posts[domain.PostVisible]
	stats.Posts.Hidden = posts[domain.PostHidden]

	stats.HiddenComments, err = s.commentRepo.CountHidden(ctx)
	if err != nil {
		return nil, err
	}

	stats.Reports.Total, stats.Reports.Pending, stats.Reports.Reviewed, stats.Reports.Resolved, err = s.reportRepo.GetStats(ctx)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *ModerationService) logAction(action string, adminID, targetID uuid.UUID) {
	metrics.Get().ModerationActions.WithLabelValues(action).Inc()
	logger.Log.Info("moderation action",
		zap.String("action", action),
		zap.String("admin_id", adminID.String()),
		zap.String("target_id", targetID.String()),
	)
}
