package database

import (
	"fmt"
	"strings"

	"order-system/pkg/config"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Open connects to the database selected by cfg.Database.Driver and applies
// the pool settings.
func Open(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(GormLogLevel(cfg.Database.LogLevel)),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch strings.ToLower(cfg.Database.Driver) {
	case DriverSQLite, "":
		db, err = InitSQLite(cfg.Sqlite.Path, gormCfg)
	case DriverMySQL:
		db, err = InitMySQL(cfg.Mysql, gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	if cfg.Database.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	}
	if cfg.Database.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}

	return db, nil
}

func GormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info", "debug":
		return logger.Info
	default:
		return logger.Warn
	}
}
