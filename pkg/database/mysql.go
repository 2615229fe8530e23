// Package database 负责初始化数据库与 Redis 连接。
package database

import (
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"pytutor-go/internal/model"
	"pytutor-go/pkg/log"
)

var DB *gorm.DB

// InitMySQL 初始化 MySQL 数据库连接并执行自动迁移。
func InitMySQL(dsn string) {
	var err error
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect database", err)
	}

	// 配置连接池
	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatal("failed to get sql.DB", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := migrate(DB); err != nil {
		log.Fatal("failed to migrate database", err)
	}

	log.Info("MySQL database connected successfully")
}

// migrate 执行全部自动迁移，模型列表统一维护在这里。
func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Conversation{},
		&model.Setting{},
		&model.Progress{},
		&model.Badge{},
	)
}
