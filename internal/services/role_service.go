package services

import (
	"context"

	"authhub/internal/models"
	"authhub/internal/repository"

	"go.uber.org/zap"
)

type RoleService struct {
	roles repository.RoleRepository
	log   *zap.Logger
}

func NewRoleService(roles repository.RoleRepository, log *zap.Logger) *RoleService {
	return &RoleService{roles: roles, log: log.Named("roles")}
}

func (s *RoleService) FindByName(ctx context.Context, name models.RoleName) (*models.Role, error) {
	return s.roles.FindByName(ctx, name)
}

// SeedRoles creates any missing reference role. Safe to run on every start.
func (s *RoleService) SeedRoles(ctx context.Context) error {
	for _, name := range models.AllRoles {
		if err := s.roles.CreateIfMissing(ctx, name); err != nil {
			return err
		}
	}
	s.log.Info("roles seeded", zap.Int("count", len(models.AllRoles)))
	return nil
}
