package database

import (
	"fmt"

	"order-system/pkg/config"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// MySQLDSN renders cfg as a go-sql-driver DSN with parseTime enabled and UTC
// as the connection location.
func MySQLDSN(cfg config.MysqlConfig) string {
	dc := mysqldriver.NewConfig()
	dc.User = cfg.User
	dc.Passwd = cfg.Password
	dc.Net = "tcp"
	dc.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	dc.DBName = cfg.DbName
	dc.ParseTime = true
	dc.Params = map[string]string{"charset": "utf8mb4"}
	return dc.FormatDSN()
}

// InitMySQL 初始化 MySQL 连接
func InitMySQL(cfg config.MysqlConfig, gormCfg *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(MySQLDSN(cfg)), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open mysql %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.DbName, err)
	}
	return db, nil
}
