package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/medlibrary-backend/internal/domain/content"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&content.ContentRecord{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return EnsureContentIndexes(db)
}

func EnsureContentIndexes(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	// Tag lookups on the mirror go through the jsonb document.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_content_record_tags
		ON content_record
		USING GIN ((document::jsonb -> 'tags'));
	`).Error; err != nil {
		return fmt.Errorf("create idx_content_record_tags: %w", err)
	}
	return nil
}
