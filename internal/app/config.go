package app

import (
	"os"
	"time"

	"github.com/google/uuid"

	redisbus "github.com/yungbote/medlibrary-backend/internal/clients/redis"
	"github.com/yungbote/medlibrary-backend/internal/data/db"
	"github.com/yungbote/medlibrary-backend/internal/library/manifest"
	"github.com/yungbote/medlibrary-backend/internal/platform/envutil"
	"github.com/yungbote/medlibrary-backend/internal/platform/logger"
	"github.com/yungbote/medlibrary-backend/internal/platform/neo4jdb"
	"github.com/yungbote/medlibrary-backend/internal/services"
)

type Config struct {
	Port            string
	ServiceName     string
	Environment     string
	Version         string
	Instance        string
	ShutdownTimeout time.Duration

	LibrarySource     string
	LibraryDir        string
	ManifestName      string
	VisibleStatuses   []string
	DecodeConcurrency int
	Lint              bool
	MirrorOnStart     bool
	GraphOnStart      bool

	CORSOrigins []string
	AdminToken  string

	DB    db.Config
	Neo4j neo4jdb.Config
	Redis redisbus.Config
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:            envutil.String("PORT", "8080"),
		ServiceName:     envutil.String("OTEL_SERVICE_NAME", "medlibrary"),
		Environment:     envutil.String("APP_ENV", "development"),
		Version:         envutil.String("APP_VERSION", "dev"),
		Instance:        envutil.String("INSTANCE_ID", defaultInstance()),
		ShutdownTimeout: envutil.Duration("SHUTDOWN_TIMEOUT", 15*time.Second),

		LibrarySource:     envutil.String("LIBRARY_SOURCE", services.SourceEmbedded),
		LibraryDir:        envutil.String("LIBRARY_DIR", ""),
		ManifestName:      envutil.String("LIBRARY_MANIFEST", manifest.DefaultName),
		VisibleStatuses:   envutil.List("LIBRARY_VISIBLE_STATUSES", []string{"published"}),
		DecodeConcurrency: envutil.Int("LIBRARY_DECODE_CONCURRENCY", 8),
		Lint:              envutil.Bool("LIBRARY_LINT", true),
		MirrorOnStart:     envutil.Bool("LIBRARY_MIRROR_ON_START", false),
		GraphOnStart:      envutil.Bool("LIBRARY_GRAPH_ON_START", false),

		CORSOrigins: envutil.List("CORS_ALLOWED_ORIGINS", nil),
		AdminToken:  envutil.String("ADMIN_TOKEN", ""),

		DB: db.Config{
			Driver:        envutil.String("DATABASE_DRIVER", "postgres"),
			DSN:           envutil.String("DATABASE_URL", ""),
			SlowThreshold: envutil.Duration("DB_SLOW_THRESHOLD", time.Second),
			AutoMigrate:   envutil.Bool("DB_AUTO_MIGRATE", true),
		},
		Neo4j: neo4jdb.ConfigFromEnv(),
		Redis: redisbus.Config{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
			Channel:  envutil.String("REDIS_CHANNEL", redisbus.DefaultChannel),
		},
	}
	if cfg.LibrarySource == services.SourceEmbedded && cfg.LibraryDir != "" {
		cfg.LibrarySource = services.SourceDir
	}
	if log != nil {
		log.Info("config loaded",
			"env", cfg.Environment,
			"instance", cfg.Instance,
			"library_source", cfg.LibrarySource,
			"library_dir", cfg.LibraryDir,
			"visible_statuses", cfg.VisibleStatuses,
			"database", cfg.DB.DSN != "",
			"neo4j", cfg.Neo4j.URI != "",
			"redis", cfg.Redis.Addr != "",
			"admin_enabled", cfg.AdminToken != "",
		)
	}
	return cfg
}

func defaultInstance() string {
	if host, err := os.Hostname(); err == nil && host != "" {
		return host + "-" + uuid.NewString()[:8]
	}
	return uuid.NewString()
}
