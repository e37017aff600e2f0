package app

import (
	"fmt"
	"io/fs"

	"github.com/yungbote/medlibrary-backend/internal/library/corpus"
	"github.com/yungbote/medlibrary-backend/internal/platform/logger"
	"github.com/yungbote/medlibrary-backend/internal/services"
)

type Services struct {
	Library services.LibraryService
}

func wireServices(log *logger.Logger, cfg Config, clients Clients, reposet Repos) (Services, error) {
	log.Info("Wiring services...")

	var fsys fs.FS
	switch cfg.LibrarySource {
	case services.SourceEmbedded:
		fsys = corpus.Embedded()
	case services.SourceDir:
		if cfg.LibraryDir == "" {
			return Services{}, fmt.Errorf("LIBRARY_SOURCE=dir requires LIBRARY_DIR")
		}
		fsys = corpus.Open(cfg.LibraryDir)
	}

	library := services.NewLibraryService(
		log,
		services.LibraryConfig{
			Source:          cfg.LibrarySource,
			FS:              fsys,
			ManifestName:    cfg.ManifestName,
			VisibleStatuses: cfg.VisibleStatuses,
			Instance:        cfg.Instance,
			Concurrency:     cfg.DecodeConcurrency,
			Lint:            cfg.Lint,
		},
		clients.DB(),
		reposet.ContentRecord,
		clients.Neo4j,
		clients.ReloadBus,
	)
	return Services{Library: library}, nil
}
