package services_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ocna/restaurant-pos/config"
	"github.com/ocna/restaurant-pos/database"
	"github.com/ocna/restaurant-pos/models"
	"github.com/ocna/restaurant-pos/utils"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	utils.SilenceLoggers()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := config.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	require.NoError(t, database.EnsureSchema(db, database.Seed{AdminUsername: "admin", AdminPassword: "123"}))
	return db
}

func createMenuItem(t *testing.T, db *gorm.DB, name string, price float64) models.MenuItem {
	t.Helper()
	item := models.MenuItem{Name: name, Price: price, CategoryID: models.DefaultCategoryID}
	require.NoError(t, db.Create(&item).Error)
	return item
}
