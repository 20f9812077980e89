package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/ocna/restaurant-pos/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DB_DRIVER", "DB_DSN", "PORT", "TABLES_STORE", "ACTIVE_POLL_INTERVAL", "PRINT_WIDTH"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "ocna.db", cfg.DB.DSN)
	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, TablesStoreFile, cfg.Tables.Store)
	assert.Equal(t, 3*time.Second, cfg.ActivePollInterval)
	assert.Equal(t, 32, cfg.Printer.Width)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "MySQL")
	t.Setenv("ACTIVE_POLL_INTERVAL", "500ms")
	t.Setenv("PRINT_WIDTH", "48")
	t.Setenv("TABLES_STORE", "redis")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverMySQL, cfg.DB.Driver)
	assert.Equal(t, 500*time.Millisecond, cfg.ActivePollInterval)
	assert.Equal(t, 48, cfg.Printer.Width)
	assert.Equal(t, TablesStoreRedis, cfg.Tables.Store)
}

func TestLoadIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("ACTIVE_POLL_INTERVAL", "soon")
	t.Setenv("PRINT_WIDTH", "-4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.ActivePollInterval)
	assert.Equal(t, 32, cfg.Printer.Width)
}

func TestInitDBRejectsUnknownDriver(t *testing.T) {
	_, err := InitDB(DBConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestOpenSQLiteInMemory(t *testing.T) {
	db, err := OpenSQLite("file:config_test?mode=memory&cache=shared")
	require.NoError(t, err)

	var fk int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&fk).Error)
	assert.Equal(t, 1, fk)
}

func TestGormLoggerSkipsRecordNotFound(t *testing.T) {
	var buf bytes.Buffer
	utils.ErrorLogger.SetOutput(&buf)
	t.Cleanup(utils.InitLogger)

	db, err := OpenSQLite("file:config_gorm_logger?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)").Error)

	var note struct {
		ID   uint
		Body string
	}
	err = db.Table("notes").Where("id = ?", 42).Take(&note).Error
	require.Error(t, err)
	assert.Empty(t, buf.String())

	require.Error(t, db.Exec("SELECT * FROM missing_table").Error)
	assert.Contains(t, buf.String(), "missing_table")
}

func TestLoadLogSettings(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}
