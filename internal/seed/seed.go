// Package seed fills a database with reference data, a bootstrap admin and
// throwaway test accounts.
package seed

import (
	"context"
	"errors"
	"fmt"
	mathrand "math/rand"
	"time"

	"authhub/internal/apperr"
	"authhub/internal/models"
	"authhub/internal/repository"
	"authhub/internal/services"
	"authhub/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultNumUsers = 1000
	batchSize       = 500

	// Test accounts share this password and an email pattern so DeleteTestUsers can find them.
	TestUserPassword = "TestPassword123!"
	testEmailPattern = "testuser%@example.com"
)

type AdminParams struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
	NationalID  string
}

type Seeder struct {
	db     *gorm.DB
	roles  *services.RoleService
	users  repository.UserRepository
	hasher utils.CredentialHasher
	log    *zap.Logger
}

func New(db *gorm.DB, hasher utils.CredentialHasher, log *zap.Logger) *Seeder {
	return &Seeder{
		db:     db,
		roles:  services.NewRoleService(repository.NewRoleRepository(db), log),
		users:  repository.NewUserRepository(db),
		hasher: hasher,
		log:    log.Named("seed"),
	}
}

func (s *Seeder) Roles(ctx context.Context) error {
	return s.roles.SeedRoles(ctx)
}

// Admin creates an ACTIVE admin account. An existing account with the same
// email is left untouched.
func (s *Seeder) Admin(ctx context.Context, p AdminParams) (*models.User, error) {
	if p.Email == "" || p.Password == "" {
		return nil, apperr.Validation("admin email and password are required")
	}
	if !utils.ValidPassword(p.Password) {
		return nil, apperr.Validation("admin password is too weak")
	}

	existing, err := s.users.FindByEmail(ctx, p.Email)
	if err == nil {
		s.log.Info("admin already exists", zap.String("email", p.Email))
		return existing, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	if err := s.Roles(ctx); err != nil {
		return nil, err
	}
	role, err := s.roles.FindByName(ctx, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	digest, err := s.hasher.Hash(p.Password)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}

	admin := &models.User{
		Email:       p.Email,
		PhoneNumber: p.PhoneNumber,
		NationalID:  p.NationalID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Gender:      models.GenderOther,
		Password:    digest,
		Status:      models.StatusActive,
		RoleID:      role.ID,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	s.log.Info("admin created", zap.String("email", admin.Email), zap.Stringer("id", admin.ID))
	return admin, nil
}

// Users inserts n ACTIVE STANDARD accounts in batches. Every account gets
// TestUserPassword.
func (s *Seeder) Users(ctx context.Context, n int) (int, error) {
	if err := s.Roles(ctx); err != nil {
		return 0, err
	}
	role, err := s.roles.FindByName(ctx, models.RoleStandard)
	if err != nil {
		return 0, err
	}
	digest, err := s.hasher.Hash(TestUserPassword)
	if err != nil {
		return 0, fmt.Errorf("hash test password: %w", err)
	}

	var offset int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email LIKE ?", testEmailPattern).Count(&offset).Error; err != nil {
		return 0, fmt.Errorf("count test users: %w", err)
	}

	start := time.Now()
	r := mathrand.New(mathrand.NewSource(start.UnixNano()))
	created := 0
	for i := 0; i < n; i += batchSize {
		end := min(i+batchSize, n)
		users := make([]models.User, 0, end-i)
		for j := i; j < end; j++ {
			users = append(users, testUser(int(offset)+j+1, r, role.ID, digest))
		}
		if err := s.db.WithContext(ctx).Omit("Role", "ProfileImage").CreateInBatches(&users, 100).Error; err != nil {
			return created, fmt.Errorf("create users batch %d-%d: %w", i, end-1, err)
		}
		created += len(users)
		s.log.Info("seeded batch", zap.Int("created", created), zap.Int("total", n))
	}

	s.log.Info("seeding finished", zap.Int("users", created), zap.Duration("took", time.Since(start)))
	return created, nil
}

// DeleteTestUsers removes the accounts created by Users together with their notifications.
func (s *Seeder) DeleteTestUsers(ctx context.Context) (int64, error) {
	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := tx.Model(&models.User{}).Select("id").Where("email LIKE ?", testEmailPattern)
		if err := tx.Where("user_id IN (?)", ids).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		res := tx.Where("email LIKE ?", testEmailPattern).Delete(&models.User{})
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("delete test users: %w", err)
	}
	s.log.Info("deleted test users", zap.Int64("count", deleted))
	return deleted, nil
}

var (
	firstNames = []string{"Alice", "Brian", "Chantal", "David", "Esther", "Frank", "Grace", "Henri", "Ines", "Jean"}
	lastNames  = []string{"Mugisha", "Uwase", "Habimana", "Keza", "Niyonzima", "Ingabire", "Nshuti", "Umutoni"}
	genders    = []models.Gender{models.GenderMale, models.GenderFemale, models.GenderOther}
)

func testUser(index int, r *mathrand.Rand, roleID uuid.UUID, digest string) models.User {
	return models.User{
		Email:       fmt.Sprintf("testuser%d@example.com", index),
		PhoneNumber: fmt.Sprintf("07%08d", index%100000000),
		NationalID:  fmt.Sprintf("T%015d", index),
		FirstName:   firstNames[r.Intn(len(firstNames))],
		LastName:    lastNames[r.Intn(len(lastNames))],
		Gender:      genders[r.Intn(len(genders))],
		Password:    digest,
		Status:      models.StatusActive,
		RoleID:      roleID,
	}
}
