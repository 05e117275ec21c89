// Package repositories provides data access layer implementations.
// It handles all database operations and data persistence logic.
package repositories

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mealpay/internal/config"
	"mealpay/internal/models"
)

// DBConfig holds database connection and pool configuration
type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DBConfigFromEnv reads DB_* variables.
func DBConfigFromEnv() DBConfig {
	return DBConfig{
		Host:            config.GetEnv("DB_HOST", "localhost"),
		Port:            config.GetEnv("DB_PORT", "5432"),
		User:            config.GetEnv("DB_USER", "postgres"),
		Password:        config.GetEnv("DB_PASSWORD", "postgres"),
		Name:            config.GetEnv("DB_NAME", "mealpay"),
		SSLMode:         config.GetEnv("DB_SSLMODE", "disable"),
		MaxIdleConns:    config.GetIntEnv("DB_MAX_IDLE_CONNS", 10),
		MaxOpenConns:    config.GetIntEnv("DB_MAX_OPEN_CONNS", 100),
		ConnMaxLifetime: config.GetDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
		ConnMaxIdleTime: config.GetDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
	}
}

// DSN returns the connection string, optionally without a database name.
func (c DBConfig) DSN(withDatabase bool) string {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.SSLMode)
	if withDatabase {
		dsn += " dbname=" + c.Name
	}
	return dsn
}

// CreateDatabaseStatement returns the DDL creating the configured database.
func (c DBConfig) CreateDatabaseStatement() string {
	return "CREATE DATABASE " + pq.QuoteIdentifier(c.Name)
}

// InitDB connects to PostgreSQL, creating the database if it is missing,
// applies the pool settings and migrates the order table.
func InitDB(cfg DBConfig, lg *zap.Logger) (*gorm.DB, error) {
	if err := ensureDatabase(cfg, lg); err != nil {
		return nil, err
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN(true)), &gorm.Config{
		Logger:         newGormLogger(),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := db.AutoMigrate(&models.Order{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	lg.Info("postgres connected", zap.String("database", cfg.Name))
	return db, nil
}

func ensureDatabase(cfg DBConfig, lg *zap.Logger) error {
	initDB, err := gorm.Open(postgres.Open(cfg.DSN(false)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	sqlDB, err := initDB.DB()
	if err != nil {
		return fmt.Errorf("get database instance: %w", err)
	}
	defer sqlDB.Close()

	var count int64
	if err := initDB.Raw("SELECT count(*) FROM pg_database WHERE datname = ?", cfg.Name).Scan(&count).Error; err != nil {
		return fmt.Errorf("check database: %w", err)
	}
	if count > 0 {
		return nil
	}

	if err := initDB.Exec(cfg.CreateDatabaseStatement()).Error; err != nil {
		return fmt.Errorf("create database %s: %w", cfg.Name, err)
	}
	lg.Info("database created", zap.String("database", cfg.Name))
	return nil
}

// newGormLogger only reports slow queries and errors; "record not found" is
// an expected outcome for lookups.
func newGormLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  !config.IsProduction(),
		},
	)
}
