package repository

import (
	"context"
	"time"

	"authhub/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	Save(ctx context.Context, n *models.Notification) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, p Pageable) (Page[models.Notification], error)
	// FindByUserIDBetween returns notifications created in [from, to).
	FindByUserIDBetween(ctx context.Context, userID uuid.UUID, from, to time.Time, p Pageable) (Page[models.Notification], error)
	CountByUserIDAndStatus(ctx context.Context, userID uuid.UUID, status models.NotificationStatus) (int64, error)
	DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return conn(ctx, r.db).Omit("User").Create(n).Error
}

func (r *notificationRepository) Save(ctx context.Context, n *models.Notification) error {
	return conn(ctx, r.db).Omit("User").Save(n).Error
}

func (r *notificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	var n models.Notification
	if err := conn(ctx, r.db).Where("id = ?", id).First(&n).Error; err != nil {
		return nil, notFound(err, "Notification", "id", id)
	}
	return &n, nil
}

func (r *notificationRepository) FindByUserID(ctx context.Context, userID uuid.UUID, p Pageable) (Page[models.Notification], error) {
	q := conn(ctx, r.db).Model(&models.Notification{}).Where("user_id = ?", userID)
	return paginate[models.Notification](q, p)
}

func (r *notificationRepository) FindByUserIDBetween(ctx context.Context, userID uuid.UUID, from, to time.Time, p Pageable) (Page[models.Notification], error) {
	q := conn(ctx, r.db).Model(&models.Notification{}).
		Where("user_id = ?", userID).
		Where("created_at >= ? AND created_at < ?", from, to)
	return paginate[models.Notification](q, p)
}

func (r *notificationRepository) CountByUserIDAndStatus(ctx context.Context, userID uuid.UUID, status models.NotificationStatus) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.Notification{}).
		Where("user_id = ? AND status = ?", userID, status).
		Count(&count).Error
	return count, err
}

func (r *notificationRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := conn(ctx, r.db).Where("user_id = ?", userID).Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}
