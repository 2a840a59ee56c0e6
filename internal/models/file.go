package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// File is a stored upload. Name is the opaque reference returned by the file store.
type File struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `gorm:"size:64;uniqueIndex" json:"name" example:"01J9Z4T8Y3V6Q2K7M1N5P0R8S4.jpg"`
	Directory string    `gorm:"size:255" json:"-"`
	MimeType  string    `gorm:"size:64" json:"mime_type" example:"image/jpeg"`
	Size      int64     `json:"size"`
}

func (f *File) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
