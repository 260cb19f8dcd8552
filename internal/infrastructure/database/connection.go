package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ropable/spacetraders-api/internal/adapters/persistence"
	"github.com/ropable/spacetraders-api/internal/infrastructure/config"
)

// memoryPath is the sqlite path of a throwaway cache
const memoryPath = ":memory:"

// sqliteFileOptions lets the daemon and one-shot CLI commands share the cache
// file: WAL keeps readers off the writer and busy_timeout waits out short locks.
const sqliteFileOptions = "?_journal_mode=WAL&_busy_timeout=5000"

// NewConnection opens the local cache database
func NewConnection(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := openDialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Type, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying db: %w", err)
	}
	switch {
	case cfg.Type == "postgres":
		sqlDB.SetMaxOpenConns(cfg.Pool.MaxOpen)
		sqlDB.SetMaxIdleConns(cfg.Pool.MaxIdle)
		sqlDB.SetConnMaxLifetime(cfg.Pool.MaxLifetime)
	case isMemory(cfg):
		// Every connection to :memory: gets its own empty database
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

func openDialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Type {
	case "postgres":
		dsn := cfg.URL
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
				cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
		}
		return postgres.Open(dsn), nil
	case "sqlite":
		if isMemory(cfg) {
			return sqlite.Open(memoryPath), nil
		}
		return sqlite.Open(cfg.Path + sqliteFileOptions), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

func isMemory(cfg *config.DatabaseConfig) bool {
	return cfg.Type == "sqlite" && (cfg.Path == "" || cfg.Path == memoryPath)
}

// NewTestConnection creates a migrated in-memory cache for tests
func NewTestConnection() (*gorm.DB, error) {
	db, err := NewConnection(&config.DatabaseConfig{Type: "sqlite", Path: memoryPath})
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate test database: %w", err)
	}
	return db, nil
}

// AutoMigrate creates or updates every cache table
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(persistence.AllModels()...)
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
