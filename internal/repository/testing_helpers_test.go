package repository

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/konverge-api/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string, skills ...string) models.User {
	t.Helper()
	user := models.User{
		Name:          name,
		Email:         name + "@example.com",
		Skills:        datatypes.JSONSlice[string](skills),
		AccountStatus: models.AccountStatusActive,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedProject(t *testing.T, db *gorm.DB, ownerID uint, status string, skills ...string) models.Project {
	t.Helper()
	project := models.Project{
		OwnerID:        ownerID,
		Title:          "Project",
		RequiredSkills: datatypes.JSONSlice[string](skills),
		Status:         status,
	}
	require.NoError(t, db.Omit("Owner").Create(&project).Error)
	return project
}
