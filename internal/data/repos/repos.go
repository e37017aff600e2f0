package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/medlibrary-backend/internal/data/repos/content"
	"github.com/yungbote/medlibrary-backend/internal/platform/logger"
)

type ContentRecordRepo = content.ContentRecordRepo

func NewContentRecordRepo(db *gorm.DB, baseLog *logger.Logger) ContentRecordRepo {
	return content.NewContentRecordRepo(db, baseLog)
}
