package repository

import (
	"context"

	"authhub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoleRepository interface {
	FindByName(ctx context.Context, name models.RoleName) (*models.Role, error)
	CreateIfMissing(ctx context.Context, name models.RoleName) error
}

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) FindByName(ctx context.Context, name models.RoleName) (*models.Role, error) {
	var role models.Role
	if err := conn(ctx, r.db).Where("name = ?", name).First(&role).Error; err != nil {
		return nil, notFound(err, "Role", "name", name)
	}
	return &role, nil
}

func (r *roleRepository) CreateIfMissing(ctx context.Context, name models.RoleName) error {
	return conn(ctx, r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&models.Role{Name: name}).Error
}
