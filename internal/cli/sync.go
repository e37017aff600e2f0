package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	redisbus "github.com/yungbote/medlibrary-backend/internal/clients/redis"
	"github.com/yungbote/medlibrary-backend/internal/data/db"
	"github.com/yungbote/medlibrary-backend/internal/data/repos"
	"github.com/yungbote/medlibrary-backend/internal/platform/envutil"
	"github.com/yungbote/medlibrary-backend/internal/platform/neo4jdb"
	"github.com/yungbote/medlibrary-backend/internal/services"
)

func newMirrorCommand(opts *options) *cobra.Command {
	var driver, dsn string
	cmd := &cobra.Command{
		Use:   "mirror",
		Short: "Write the library into the content_record table",
		Long: `Build the library and upsert every accepted record into the content_record
table, deleting rows for records that no longer exist. Servers started with
LIBRARY_SOURCE=postgres read from that table.`,
		Example: `  contentctl mirror --dsn "$DATABASE_URL"
  contentctl mirror --driver sqlite --dsn ./mirror.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dsn == "" {
				return fmt.Errorf("--dsn or DATABASE_URL is required")
			}
			log := opts.logger()
			pg, err := db.NewPostgresService(log, db.Config{Driver: driver, DSN: dsn, AutoMigrate: true})
			if err != nil {
				return err
			}
			defer pg.Close()

			lib := services.NewLibraryService(log, opts.libraryConfig(), pg.DB(), repos.NewContentRecordRepo(pg.DB(), log), nil, nil)
			if _, err := lib.Reload(cmd.Context()); err != nil {
				return err
			}
			res, err := lib.Mirror(cmd.Context())
			if err != nil {
				return err
			}
			okColor.Fprintf(cmd.OutOrStdout(), "mirrored %d records", res.Upserted)
			fmt.Fprintf(cmd.OutOrStdout(), ", deleted %d stale rows, %d rows total (generation %s)\n", res.Deleted, res.Total, res.Generation)
			return nil
		},
	}
	cmd.Flags().StringVar(&driver, "driver", envutil.String("DATABASE_DRIVER", "postgres"), "database driver: postgres or sqlite")
	cmd.Flags().StringVar(&dsn, "dsn", envutil.String("DATABASE_URL", ""), "database connection string")
	return cmd
}

func newGraphCommand(opts *options) *cobra.Command {
	cfg := neo4jdb.ConfigFromEnv()
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Project records and cross-references into Neo4j",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.URI == "" {
				return fmt.Errorf("--uri or NEO4J_URI is required")
			}
			log := opts.logger()
			client, err := neo4jdb.New(log, cfg)
			if err != nil {
				return err
			}
			defer client.Close(cmd.Context())

			lib := services.NewLibraryService(log, opts.libraryConfig(), nil, nil, client, nil)
			res, err := lib.Reload(cmd.Context())
			if err != nil {
				return err
			}
			if err := lib.ProjectGraph(cmd.Context()); err != nil {
				return err
			}
			okColor.Fprintf(cmd.OutOrStdout(), "projected %d records", res.Records)
			fmt.Fprintf(cmd.OutOrStdout(), " (generation %s)\n", res.Generation)
			return nil
		},
	}
	cmd.Flags().StringVar(&cfg.URI, "uri", cfg.URI, "Neo4j bolt URI")
	cmd.Flags().StringVar(&cfg.User, "user", cfg.User, "Neo4j user")
	cmd.Flags().StringVar(&cfg.Database, "database", cfg.Database, "Neo4j database name")
	return cmd
}

func newNotifyCommand(opts *options) *cobra.Command {
	cfg := redisbus.Config{
		Addr:     envutil.String("REDIS_ADDR", ""),
		Password: envutil.String("REDIS_PASSWORD", ""),
		DB:       envutil.Int("REDIS_DB", 0),
		Channel:  envutil.String("REDIS_CHANNEL", redisbus.DefaultChannel),
	}
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Tell running servers to rebuild their content store",
		Long: `Publish a reload notice on the redis channel the servers listen on. Use it
after mirror so servers reading from postgres pick up the new rows.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Addr == "" {
				return fmt.Errorf("--redis-addr or REDIS_ADDR is required")
			}
			bus, err := redisbus.NewReloadBus(opts.logger(), cfg)
			if err != nil {
				return err
			}
			defer bus.Close()

			lib := services.NewLibraryService(opts.logger(), opts.libraryConfig(), nil, nil, nil, nil)
			res, err := lib.Reload(cmd.Context())
			if err != nil {
				return err
			}
			notice := redisbus.ReloadNotice{
				Generation: res.Generation,
				Source:     res.Source,
				Instance:   "contentctl",
				Records:    res.Records,
				At:         time.Now().UTC(),
			}
			if err := bus.Publish(cmd.Context(), notice); err != nil {
				return err
			}
			okColor.Fprintf(cmd.OutOrStdout(), "reload notice published on %s\n", cfg.Channel)
			return nil
		},
	}
	cmd.Flags().StringVar(&cfg.Addr, "redis-addr", cfg.Addr, "redis address")
	cmd.Flags().StringVar(&cfg.Channel, "channel", cfg.Channel, "reload channel")
	return cmd
}
