package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserStatus string

const (
	StatusWaitEmailVerification UserStatus = "WAIT_EMAIL_VERIFICATION"
	StatusPending               UserStatus = "PENDING"
	StatusActive                UserStatus = "ACTIVE"
	StatusRejected              UserStatus = "REJECTED"
	StatusDeactivated           UserStatus = "DEACTIVATED"
)

func (s UserStatus) Valid() bool {
	switch s {
	case StatusWaitEmailVerification, StatusPending, StatusActive, StatusRejected, StatusDeactivated:
		return true
	}
	return false
}

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale || g == GenderOther
}

// @description User account
type User struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt            time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
	Email                string     `gorm:"size:191;index" json:"email" example:"a@x.com"`
	PhoneNumber          string     `gorm:"size:20;index" json:"phone_number" example:"0780000000"`
	NationalID           string     `gorm:"size:32;index" json:"national_id" example:"1199880012345678"`
	FirstName            string     `gorm:"size:100" json:"first_name" example:"Jane"`
	LastName             string     `gorm:"size:100" json:"last_name" example:"Doe"`
	Gender               Gender     `gorm:"size:16" json:"gender" example:"FEMALE"`
	Password             string     `json:"-"`
	ActivationCode       string     `gorm:"size:64" json:"-"`
	Status               UserStatus `gorm:"size:32;index" json:"status" example:"PENDING"`
	RejectionDescription string     `json:"rejection_description,omitempty"`
	RoleID               uuid.UUID  `gorm:"type:uuid;not null" json:"-"`
	Role                 Role       `gorm:"foreignKey:RoleID" json:"role"`
	ProfileImageID       *uuid.UUID `gorm:"type:uuid" json:"-"`
	ProfileImage         *File      `gorm:"foreignKey:ProfileImageID;constraint:OnDelete:SET NULL" json:"profile_image,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) HasRole(name RoleName) bool {
	return u.Role.Name == name
}
