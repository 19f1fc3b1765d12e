package main

import (
	"testing"

	"GachaSync/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/logger"
)

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, gormLogLevel("silent"))
	assert.Equal(t, logger.Error, gormLogLevel("ERROR"))
	assert.Equal(t, logger.Info, gormLogLevel("info"))
	assert.Equal(t, logger.Warn, gormLogLevel("warn"))
	assert.Equal(t, logger.Warn, gormLogLevel(""))
}

func TestEnsureDatabaseExists_SkipsDefaultDatabase(t *testing.T) {
	assert.NoError(t, ensureDatabaseExists("postgres://u:p@localhost:5432/postgres?sslmode=disable"))
	assert.NoError(t, ensureDatabaseExists("postgres://u:p@localhost:5432/"))
	assert.Error(t, ensureDatabaseExists("postgres://[::1"))
}

func TestOpenDatabase_RequiresDSN(t *testing.T) {
	_, err := openDatabase(config.DatabaseConfig{}, logrus.New())
	assert.ErrorContains(t, err, "database.dsn")
}
