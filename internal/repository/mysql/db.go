package mysql

import (
	"log"
	"sync"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/config"
	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/datamodels/chat"
	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/datamodels/order"
	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/datamodels/product"
	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/datamodels/user"
)

var (
	db   *gorm.DB
	once sync.Once
)

// Init 初始化全局 GORM 实例并自动迁移表结构
func Init(cfg *config.MySQLConfig) *gorm.DB {
	once.Do(func() {
		var err error
		db, err = gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to connect mysql: %v", err)
		}

		if err = db.AutoMigrate(
			&user.User{},
			&product.Product{},
			&product.Review{},
			&order.Order{},
			&chat.Message{},
		); err != nil {
			log.Fatalf("auto migrate failed: %v", err)
		}
	})
	return db
}

// DB 获取全局 DB
func DB() *gorm.DB {
	return db
}
