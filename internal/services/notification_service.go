package services

import (
	"context"
	"time"

	"authhub/internal/apperr"
	"authhub/internal/models"
	"authhub/internal/repository"
	"authhub/internal/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type NotificationService struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	tx            repository.Transactor
	dispatcher    Dispatcher
	log           *zap.Logger
	now           func() time.Time
}

func NewNotificationService(
	notifications repository.NotificationRepository,
	users repository.UserRepository,
	tx repository.Transactor,
	dispatcher Dispatcher,
	log *zap.Logger,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		users:         users,
		tx:            tx,
		dispatcher:    dispatcher,
		log:           log.Named("notifications"),
		now:           time.Now,
	}
}

func (s *NotificationService) Create(ctx context.Context, userID uuid.UUID, message string, kind models.NotificationType) (*models.Notification, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	n := &models.Notification{
		UserID:  user.ID,
		Message: message,
		Type:    kind,
		Status:  models.NotificationUnread,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Notify queues a notification for user. A nil user is skipped.
func (s *NotificationService) Notify(user *models.User, kind models.NotificationType, message string) {
	if user == nil {
		return
	}
	userID := user.ID
	s.dispatcher.Dispatch("notify", func(ctx context.Context) error {
		return s.notifications.Create(ctx, &models.Notification{
			UserID:  userID,
			Message: message,
			Type:    kind,
			Status:  models.NotificationUnread,
		})
	})
}

// NotifyBulk queues one independent notification per user.
func (s *NotificationService) NotifyBulk(users []models.User, kind models.NotificationType, message string) {
	for i := range users {
		s.Notify(&users[i], kind, message)
	}
}

func (s *NotificationService) FindAllByLoggedInUser(ctx context.Context, p repository.Pageable) (repository.Page[models.Notification], error) {
	principal, err := session.MustFromContext(ctx)
	if err != nil {
		return repository.Page[models.Notification]{}, err
	}
	return s.notifications.FindByUserID(ctx, principal.UserID, p)
}

func (s *NotificationService) FindAllOfToday(ctx context.Context, p repository.Pageable) (repository.Page[models.Notification], error) {
	return s.findAllOfDay(ctx, 0, p)
}

func (s *NotificationService) FindAllOfYesterday(ctx context.Context, p repository.Pageable) (repository.Page[models.Notification], error) {
	return s.findAllOfDay(ctx, -1, p)
}

// findAllOfDay loads the caller's notifications for the local calendar day
// offset days from today, as [midnight, next midnight).
func (s *NotificationService) findAllOfDay(ctx context.Context, offset int, p repository.Pageable) (repository.Page[models.Notification], error) {
	principal, err := session.MustFromContext(ctx)
	if err != nil {
		return repository.Page[models.Notification]{}, err
	}
	from, to := dayWindow(s.now(), offset)
	return s.notifications.FindByUserIDBetween(ctx, principal.UserID, from, to, p)
}

func dayWindow(now time.Time, offset int) (time.Time, time.Time) {
	y, m, d := now.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, offset)
	return from, from.AddDate(0, 0, 1)
}

func (s *NotificationService) FindByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	return s.notifications.FindByID(ctx, id)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.setStatus(ctx, id, models.NotificationRead)
}

func (s *NotificationService) MarkAsDeleted(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.setStatus(ctx, id, models.NotificationDeleted)
}

func (s *NotificationService) setStatus(ctx context.Context, id uuid.UUID, status models.NotificationStatus) (bool, error) {
	n, err := s.notifications.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	if principal, ok := session.FromContext(ctx); ok &&
		principal.UserID != n.UserID && principal.Role != string(models.RoleAdmin) {
		return false, apperr.Forbidden("You can not change another user's notification")
	}

	n.Status = status
	if err := s.notifications.Save(ctx, n); err != nil {
		s.log.Error("failed to update notification", zap.Stringer("id", id), zap.Error(err))
		return false, nil
	}
	return true, nil
}

func (s *NotificationService) GetNumberOfUnreadNotifications(ctx context.Context) (int64, error) {
	principal, err := session.MustFromContext(ctx)
	if err != nil {
		return 0, err
	}
	return s.notifications.CountByUserIDAndStatus(ctx, principal.UserID, models.NotificationUnread)
}

// DeleteByUserID hard-deletes every notification owned by userID.
func (s *NotificationService) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		deleted, err := s.notifications.DeleteByUserID(ctx, userID)
		if err != nil {
			return err
		}
		s.log.Debug("notifications deleted", zap.Stringer("user_id", userID), zap.Int64("count", deleted))
		return nil
	})
}
