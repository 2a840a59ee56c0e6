package repository

import (
	"context"

	"authhub/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FileRepository interface {
	Create(ctx context.Context, file *models.File) error
	FindByName(ctx context.Context, name string) (*models.File, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type fileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(ctx context.Context, file *models.File) error {
	return conn(ctx, r.db).Create(file).Error
}

func (r *fileRepository) FindByName(ctx context.Context, name string) (*models.File, error) {
	var file models.File
	if err := conn(ctx, r.db).Where("name = ?", name).First(&file).Error; err != nil {
		return nil, notFound(err, "File", "name", name)
	}
	return &file, nil
}

func (r *fileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Delete(&models.File{}, "id = ?", id).Error
}
