package db

import (
	"testing"

	"messenger/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMigrationDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.AutoMigrate(&models.Migration{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return database
}

func TestApplyMigrationsRecordsSteps(t *testing.T) {
	database := setupMigrationDB(t)

	// Повторное выполнение шага без IF NOT EXISTS упало бы,
	// если бы запись в таблице migrations его не отсекала
	steps := []migration{
		{Name: "create_widgets", SQL: `CREATE TABLE widgets (id integer primary key);`},
	}

	assert.NoError(t, applyMigrations(database, steps))
	assert.NoError(t, applyMigrations(database, steps))

	var records []models.Migration
	assert.NoError(t, database.Find(&records).Error)
	assert.Len(t, records, 1)
	assert.Equal(t, "create_widgets", records[0].Name)
}

func TestApplyMigrationsFailedStepNotRecorded(t *testing.T) {
	database := setupMigrationDB(t)

	steps := []migration{
		{Name: "broken_step", SQL: `CREATE BOGUS;`},
	}
	assert.Error(t, applyMigrations(database, steps))

	var count int64
	assert.NoError(t, database.Model(&models.Migration{}).Count(&count).Error)
	assert.Zero(t, count)

	// После исправления шаг с тем же именем применяется
	fixed := []migration{
		{Name: "broken_step", SQL: `CREATE TABLE fixed_step (id integer primary key);`},
	}
	assert.NoError(t, applyMigrations(database, fixed))
	assert.NoError(t, database.Model(&models.Migration{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestApplyMessagingIndexesSkipsNonPostgres(t *testing.T) {
	database := setupMigrationDB(t)

	// SQLite не поддерживает least/greatest в индексе, шаги не применяются
	assert.NoError(t, ApplyMessagingIndexes(database))

	var count int64
	assert.NoError(t, database.Model(&models.Migration{}).Count(&count).Error)
	assert.Zero(t, count)
}
