package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationStatus string

const (
	NotificationUnread  NotificationStatus = "UNREAD"
	NotificationRead    NotificationStatus = "READ"
	NotificationDeleted NotificationStatus = "DELETED"
)

type NotificationType string

const (
	NotificationUserAwaitsConfirmation NotificationType = "USER_AWAITS_CONFIRMATION"
	NotificationGeneral                NotificationType = "GENERAL"
)

func (t NotificationType) Valid() bool {
	return t == NotificationUserAwaitsConfirmation || t == NotificationGeneral
}

// @description In-app notification
type Notification struct {
	ID        uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time          `gorm:"index" json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
	UserID    uuid.UUID          `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User              `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Message   string             `gorm:"size:255" json:"message" example:"You have a new User Registration which awaits your approval."`
	Type      NotificationType   `gorm:"size:64" json:"type" example:"USER_AWAITS_CONFIRMATION"`
	Status    NotificationStatus `gorm:"size:16;default:UNREAD;index" json:"status" example:"UNREAD"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.Status == "" {
		n.Status = NotificationUnread
	}
	return nil
}
