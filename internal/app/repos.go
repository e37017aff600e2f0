package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/medlibrary-backend/internal/data/repos"
	"github.com/yungbote/medlibrary-backend/internal/platform/logger"
)

type Repos struct {
	ContentRecord repos.ContentRecordRepo
}

// wireRepos returns empty Repos when no database is configured.
func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	if db == nil {
		return Repos{}
	}
	log.Info("Wiring repos...")
	return Repos{
		ContentRecord: repos.NewContentRecordRepo(db, log),
	}
}
