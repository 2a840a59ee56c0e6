package repository

import (
	"context"
	"strings"

	"authhub/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IdentityQuery matches users sharing any non-empty identifying field.
type IdentityQuery struct {
	Email      string
	Phone      string
	NationalID string
	// Zero values disable the filter.
	ExcludeStatus models.UserStatus
	ExcludeID     uuid.UUID
}

func (q IdentityQuery) empty() bool {
	return q.Email == "" && q.Phone == "" && q.NationalID == ""
}

type UserFilter struct {
	Status models.UserStatus
	Name   string
	Gender models.Gender
	Role   models.RoleName
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Save(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByEmailAndActivationCode(ctx context.Context, email, code string) (*models.User, error)
	FindByNationalID(ctx context.Context, nationalID string) (*models.User, error)
	ExistsByIdentity(ctx context.Context, q IdentityQuery) (bool, error)
	FindAllByRoleAndStatus(ctx context.Context, role models.RoleName, status models.UserStatus) ([]models.User, error)
	FindAll(ctx context.Context, p Pageable) (Page[models.User], error)
	Search(ctx context.Context, f UserFilter, p Pageable) (Page[models.User], error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (ur *userRepository) Create(ctx context.Context, user *models.User) error {
	return conn(ctx, ur.db).Omit(clause.Associations).Create(user).Error
}

func (ur *userRepository) Save(ctx context.Context, user *models.User) error {
	return conn(ctx, ur.db).Omit(clause.Associations).Save(user).Error
}

func (ur *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := ur.withRelations(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, notFound(err, "User", "id", id)
	}
	return &user, nil
}

func (ur *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := ur.withRelations(ctx).
		Where("email = ?", email).
		Order("updated_at DESC").
		First(&user).Error
	if err != nil {
		return nil, notFound(err, "User", "email", email)
	}
	return &user, nil
}

func (ur *userRepository) FindByEmailAndActivationCode(ctx context.Context, email, code string) (*models.User, error) {
	var user models.User
	err := ur.withRelations(ctx).
		Where("email = ? AND activation_code = ?", email, code).
		Order("updated_at DESC").
		First(&user).Error
	if err != nil {
		return nil, notFound(err, "User", "email", email)
	}
	return &user, nil
}

func (ur *userRepository) FindByNationalID(ctx context.Context, nationalID string) (*models.User, error) {
	var user models.User
	err := ur.withRelations(ctx).Where("national_id = ?", nationalID).First(&user).Error
	if err != nil {
		return nil, notFound(err, "User", "nationalId", nationalID)
	}
	return &user, nil
}

func (ur *userRepository) ExistsByIdentity(ctx context.Context, q IdentityQuery) (bool, error) {
	if q.empty() {
		return false, nil
	}

	var clauses []string
	var args []any
	if q.Email != "" {
		clauses = append(clauses, "email = ?")
		args = append(args, q.Email)
	}
	if q.Phone != "" {
		clauses = append(clauses, "phone_number = ?")
		args = append(args, q.Phone)
	}
	if q.NationalID != "" {
		clauses = append(clauses, "national_id = ?")
		args = append(args, q.NationalID)
	}

	tx := conn(ctx, ur.db).Model(&models.User{}).Where(strings.Join(clauses, " OR "), args...)
	if q.ExcludeStatus != "" {
		tx = tx.Where("status <> ?", q.ExcludeStatus)
	}
	if q.ExcludeID != uuid.Nil {
		tx = tx.Where("id <> ?", q.ExcludeID)
	}

	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ur *userRepository) FindAllByRoleAndStatus(ctx context.Context, role models.RoleName, status models.UserStatus) ([]models.User, error) {
	var users []models.User
	err := ur.withRelations(ctx).
		Where("role_id IN (?)", ur.roleIDs(ctx, role)).
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&users).Error
	return users, err
}

func (ur *userRepository) FindAll(ctx context.Context, p Pageable) (Page[models.User], error) {
	return paginate[models.User](conn(ctx, ur.db).Model(&models.User{}), p, "Role", "ProfileImage")
}

func (ur *userRepository) Search(ctx context.Context, f UserFilter, p Pageable) (Page[models.User], error) {
	q := conn(ctx, ur.db).Model(&models.User{}).
		Where("status = ?", f.Status).
		Where("LOWER(first_name || ' ' || last_name) LIKE ?", "%"+strings.ToLower(f.Name)+"%")
	if f.Gender != "" {
		q = q.Where("gender = ?", f.Gender)
	}
	if f.Role != "" {
		q = q.Where("role_id IN (?)", ur.roleIDs(ctx, f.Role))
	}
	return paginate[models.User](q, p, "Role", "ProfileImage")
}

func (ur *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, ur.db).Delete(&models.User{}, "id = ?", id).Error
}

func (ur *userRepository) withRelations(ctx context.Context) *gorm.DB {
	return conn(ctx, ur.db).Preload("Role").Preload("ProfileImage")
}

func (ur *userRepository) roleIDs(ctx context.Context, role models.RoleName) *gorm.DB {
	return conn(ctx, ur.db).Model(&models.Role{}).Select("id").Where("name = ?", role)
}
