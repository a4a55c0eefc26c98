package main

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func OpenDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// sqlite allows one writer; a single connection keeps transactions from contending.
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Video{},
		&Chapter{},
		&Question{},
		&AnswerOption{},
		&InteractionPoint{},
		&ViewerSession{},
		&SessionAnswer{},
		&Blob{},
	)
}

func CloseDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return sqlDB.Close()
}

func IsVideoTableEmpty(db *gorm.DB) (bool, error) {
	var count int64
	if err := db.Model(&Video{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count == 0, nil
}
