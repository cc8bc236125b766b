package db

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open はDSNで接続して *gorm.DB を返す。DSNの組み立ては config 側。
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}
