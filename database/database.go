package database

import (
	"fmt"

	"github.com/gosimple/slug"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the sqlite database at path and migrates the schema.
// Pass ":memory:" for a throwaway database.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// sqlite allows a single writer; more connections just produce
	// SQLITE_BUSY (and separate ":memory:" instances in tests).
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&User{}, &Category{}, &Post{}, &Comment{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return db, nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SeedCategories makes sure a published category exists for every title.
// Categories are editor-managed; there is no public route that creates them.
func SeedCategories(db *gorm.DB, titles []string) error {
	for _, title := range titles {
		category := Category{
			Slug:      slug.Make(title),
			Title:     title,
			Published: true,
		}
		err := db.Where(&Category{Slug: category.Slug}).
			FirstOrCreate(&category).Error
		if err != nil {
			return fmt.Errorf("seed category %q: %w", title, err)
		}
	}
	return nil
}
