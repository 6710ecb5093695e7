package database

import (
	"fmt"
	"net/url"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const memoryPath = ":memory:"

// Connect opens a SQLite catalog file through GORM.
// Catalog working copies are opened with ReadOnly set; tests use writable files to build fixtures.
func Connect(cfg Config) (*gorm.DB, error) {
	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}

	// Suppress GORM logging; failures surface as returned errors
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", cfg.Path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// One connection keeps ":memory:" databases stable across statements
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping catalog %s: %w", cfg.Path, err)
	}

	return db, nil
}

// Close releases the connection behind db. It is safe to call with nil.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func buildDSN(cfg Config) (string, error) {
	if cfg.Path == "" {
		return "", fmt.Errorf("catalog path is empty")
	}
	if cfg.Path == memoryPath {
		return memoryPath, nil
	}

	abs, err := filepath.Abs(cfg.Path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve catalog path %s: %w", cfg.Path, err)
	}

	timeout := cfg.BusyTimeoutMillis
	if timeout <= 0 {
		timeout = 5000
	}

	query := url.Values{}
	query.Set("_busy_timeout", fmt.Sprint(timeout))
	if cfg.ReadOnly {
		query.Set("mode", "ro")
	}

	// SQLite decodes percent escapes in URI filenames, so spaces and '?' survive
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs), RawQuery: query.Encode()}
	return u.String(), nil
}
