package configs

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	_ "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	maxRetries = 10
	retryDelay = 5 * time.Second
)

// OpenConnection opens the database selected by DB_DRIVER. Network databases are
// pinged and retried; sqlite is opened once.
func OpenConnection(env ENV, log *logrus.Logger) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	switch env.DBDriver {
	case "mysql":
		dsn := fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			env.DBUser,
			env.DBPassword,
			env.DBHost,
			env.DBPort,
			env.DBName,
		)
		return openWithRetry(mysql.Open(dsn), cfg, log)
	case "postgres":
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			env.DBHost,
			env.DBUser,
			env.DBPassword,
			env.DBName,
			env.DBPort,
		)
		return openWithRetry(postgres.Open(dsn), cfg, log)
	case "sqlite", "":
		return OpenSQLite(env.DBPath)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (want mysql, postgres or sqlite)", env.DBDriver)
	}
}

// OpenSQLite opens (creating if needed) a sqlite database file.
func OpenSQLite(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path+"?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	return db, nil
}

func openWithRetry(dialector gorm.Dialector, cfg *gorm.Config, log *logrus.Logger) (*gorm.DB, error) {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		log.Infof("Attempting to connect to %s database (Attempt %d/%d)", dialector.Name(), i+1, maxRetries)
		db, err := gorm.Open(dialector, cfg)
		if err == nil {
			sqlDB, pingErr := db.DB()
			if pingErr == nil {
				pingErr = sqlDB.Ping()
				if pingErr == nil {
					sqlDB.SetMaxIdleConns(10)
					sqlDB.SetMaxOpenConns(100)
					log.Info("Database connection successful")
					return db, nil
				}
			}
			lastErr = pingErr
			log.Warnf("Failed to ping database: %v. Retrying in %v...", pingErr, retryDelay)
		} else {
			lastErr = err
			log.Warnf("Failed to open GORM connection: %v. Retrying in %v...", err, retryDelay)
		}

		time.Sleep(retryDelay)
	}

	return nil, fmt.Errorf("failed to connect to the database after %d retries: %w", maxRetries, lastErr)
}
