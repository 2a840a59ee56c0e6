// Package testutil opens throwaway sqlite stores for package tests.
package testutil

import (
	"testing"

	"authhub/database"
	"authhub/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory database with the reference roles seeded.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.MigrateDatabase(db, zap.NewNop()))
	for _, name := range models.AllRoles {
		require.NoError(t, db.Create(&models.Role{Name: name}).Error)
	}
	return db
}

func Role(t *testing.T, db *gorm.DB, name models.RoleName) models.Role {
	t.Helper()
	var role models.Role
	require.NoError(t, db.Where("name = ?", name).First(&role).Error)
	return role
}

// CreateUser persists a user with the given role and status. Empty identifying
// fields are filled with unique values.
func CreateUser(t *testing.T, db *gorm.DB, role models.RoleName, status models.UserStatus, mutate ...func(*models.User)) *models.User {
	t.Helper()
	suffix := uuid.NewString()[:8]
	u := &models.User{
		Email:       suffix + "@example.com",
		PhoneNumber: "07" + suffix[:8],
		NationalID:  "ID" + suffix,
		FirstName:   "Test",
		LastName:    "User",
		Gender:      models.GenderOther,
		Status:      status,
		Role:        Role(t, db, role),
	}
	u.RoleID = u.Role.ID
	for _, m := range mutate {
		m(u)
	}
	require.NoError(t, db.Omit("Role", "ProfileImage").Create(u).Error)
	return u
}
