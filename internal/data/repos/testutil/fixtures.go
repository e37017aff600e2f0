package testutil

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/medlibrary-backend/internal/domain/content"
)

// Record returns a minimal valid record.
func Record(id, name string, status content.Status) *content.EducationalContent {
	return &content.EducationalContent{
		ID:          id,
		Type:        content.TypeTopic,
		Name:        name,
		LevelScheme: content.SchemeNumeric,
		Levels: content.LevelMap{
			content.TierLay: {Level: 1, Summary: name + " summary", Explanation: name + " explanation"},
		},
		Status:  status,
		Version: 1,
	}
}

func SeedContentRecord(tb testing.TB, ctx context.Context, tx *gorm.DB, rec *content.EducationalContent, pos int) *content.ContentRecord {
	tb.Helper()
	row, err := content.NewContentRecord(rec, pos, "fixture", "gen-test")
	if err != nil {
		tb.Fatalf("build content record: %v", err)
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed content record: %v", err)
	}
	return row
}
