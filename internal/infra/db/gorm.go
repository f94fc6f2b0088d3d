package db

import (
	"fmt"

	"ecshop/internal/config"

	"github.com/jackc/pgx/v5"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.Config, l gormlogger.Interface) (*gorm.DB, error) {
	dsn := cfg.DSN()

	// 接続前にDSNの形式だけ確認
	if _, err := pgx.ParseConfig(dsn); err != nil {
		return nil, fmt.Errorf("invalid database dsn: %w", err)
	}

	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         l,
		TranslateError: true,
	})
}
