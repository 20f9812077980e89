package database

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ocna/restaurant-pos/models"
	"github.com/ocna/restaurant-pos/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedVersion is bumped whenever the seed data below changes.
const SeedVersion = 1

const seedVersionKey = "seed_version"

// SeedCategories are created on first run; the first one becomes the default category.
var SeedCategories = []string{"Ốc", "Hải sản", "Nước uống"}

type Seed struct {
	AdminUsername string
	AdminPassword string
}

// EnsureSchema creates or updates the tables and runs the one-time seed.
// It is safe to call on every start.
func EnsureSchema(db *gorm.DB, seed Seed) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.PrintedItem{},
		&models.AppliedDelta{},
		&models.SchemaMeta{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// MySQL has no partial indexes; the ledger's find-or-create covers it there.
	switch db.Dialector.Name() {
	case "sqlite", "postgres":
		if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_one_open_per_table
			ON orders (table_name) WHERE status = 'open'`).Error; err != nil {
			return fmt.Errorf("open order index: %w", err)
		}
	}

	return db.Transaction(func(tx *gorm.DB) error {
		version, err := seedVersion(tx)
		if err != nil {
			return err
		}
		if version >= SeedVersion {
			return nil
		}

		if err := seedData(tx, seed); err != nil {
			return err
		}

		meta := models.SchemaMeta{Key: seedVersionKey, Value: strconv.Itoa(SeedVersion)}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).Create(&meta).Error; err != nil {
			return fmt.Errorf("save seed version: %w", err)
		}

		utils.InfoLogger.Printf("Seed data v%d applied", SeedVersion)
		return nil
	})
}

func seedVersion(tx *gorm.DB) (int, error) {
	var meta models.SchemaMeta
	err := tx.Where(models.SchemaMeta{Key: seedVersionKey}).First(&meta).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read seed version: %w", err)
	}
	v, err := strconv.Atoi(meta.Value)
	if err != nil {
		return 0, fmt.Errorf("corrupt seed version %q: %w", meta.Value, err)
	}
	return v, nil
}

func seedData(tx *gorm.DB, seed Seed) error {
	for _, name := range SeedCategories {
		category := models.Category{Name: name}
		if err := tx.Where(models.Category{Name: name}).FirstOrCreate(&category).Error; err != nil {
			return fmt.Errorf("seed category %s: %w", name, err)
		}
	}

	if seed.AdminUsername == "" {
		return nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(seed.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := models.User{Username: seed.AdminUsername}
	if err := tx.Where(models.User{Username: seed.AdminUsername}).
		Attrs(models.User{Password: string(hashed), Role: models.RoleAdmin}).
		FirstOrCreate(&admin).Error; err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	return nil
}
