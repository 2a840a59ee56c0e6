package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RoleName string

const (
	RoleAdmin    RoleName = "ADMIN"
	RoleStandard RoleName = "STANDARD"
)

// AllRoles is the reference data seeded at startup.
var AllRoles = []RoleName{RoleAdmin, RoleStandard}

func (r RoleName) Valid() bool {
	return r == RoleAdmin || r == RoleStandard
}

type Role struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name RoleName  `gorm:"size:32;uniqueIndex" json:"name" example:"STANDARD"`
}

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
