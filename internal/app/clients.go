package app

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	redisbus "github.com/yungbote/medlibrary-backend/internal/clients/redis"
	"github.com/yungbote/medlibrary-backend/internal/data/db"
	"github.com/yungbote/medlibrary-backend/internal/platform/logger"
	"github.com/yungbote/medlibrary-backend/internal/platform/neo4jdb"
	"github.com/yungbote/medlibrary-backend/internal/services"
)

// Clients holds the optional backing services. A nil field means the
// corresponding feature is off.
type Clients struct {
	Postgres  *db.PostgresService
	Neo4j     *neo4jdb.Client
	ReloadBus redisbus.ReloadBus
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var c Clients

	// Postgres
	if strings.TrimSpace(cfg.DB.DSN) != "" {
		pg, err := db.NewPostgresService(log, cfg.DB)
		if err != nil {
			return Clients{}, fmt.Errorf("init database: %w", err)
		}
		c.Postgres = pg
	} else if cfg.LibrarySource == services.SourcePostgres {
		return Clients{}, fmt.Errorf("LIBRARY_SOURCE=postgres requires DATABASE_URL")
	}

	// Neo4j
	neo, err := neo4jdb.New(log, cfg.Neo4j)
	if err != nil {
		c.Close()
		return Clients{}, fmt.Errorf("init neo4j: %w", err)
	}
	c.Neo4j = neo

	// Redis
	if strings.TrimSpace(cfg.Redis.Addr) != "" {
		bus, err := redisbus.NewReloadBus(log, cfg.Redis)
		if err != nil {
			c.Close()
			return Clients{}, fmt.Errorf("init redis reload bus: %w", err)
		}
		c.ReloadBus = bus
	}

	return c, nil
}

func (c *Clients) DB() *gorm.DB {
	if c == nil || c.Postgres == nil {
		return nil
	}
	return c.Postgres.DB()
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.ReloadBus != nil {
		_ = c.ReloadBus.Close()
	}
	if c.Neo4j != nil {
		_ = c.Neo4j.Close(context.Background())
	}
	if c.Postgres != nil {
		_ = c.Postgres.Close()
	}
}
