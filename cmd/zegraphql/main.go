// Command zegraphql serves and inspects the documents, industries and
// summary_tasks store.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/zekoder/zegraphql/business"
	"github.com/zekoder/zegraphql/internal/config"
	"github.com/zekoder/zegraphql/internal/logger"
	"github.com/zekoder/zegraphql/zegraphql/storage"
)

var (
	configFile string
	envFile    string
	format     string
)

var rootCmd = &cobra.Command{
	Use:   "zegraphql",
	Short: "zegraphql - generic CRUD over documents, industries and summary tasks",
	Long: `zegraphql stores documents, industries and summary tasks in SQLite and
exposes filtered, sorted and paginated CRUD over them.

Filters address fields by dotted paths that follow relationships, e.g.
industry_document.industry_name on documents.

Examples:
  # Create missing tables
  zegraphql --db data.db bootstrap

  # Serve the HTTP API
  zegraphql --db data.db serve --addr :8080

  # List energy documents released this year, newest first
  zegraphql list documents --where industry_document.industry_name=Energy \
    --where release_date__gte=2024-01-01 --sort -release_date`,
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default: ./zegraphql.yaml)")
	flags.StringVar(&envFile, "env-file", ".env", "Environment file loaded before the config")
	flags.StringP("db", "d", "", "Database file path")
	flags.String("schema", "", "Schema the tables live in")
	flags.String("log-level", "", "Log level: debug|info|warn|error")
	flags.Bool("pretty", false, "Human readable logs")
	flags.StringVarP(&format, "format", "f", FormatTable, "Output format: table|json|yaml")

	rootCmd.AddCommand(serveCmd, bootstrapCmd, listCmd, getCmd, deleteCmd)
}

// runtime is what every command needs to talk to the store
type runtime struct {
	cfg     *config.Config
	logger  zerolog.Logger
	db      *sql.DB
	service *business.Service
}

func (r *runtime) Close() {
	_ = r.db.Close()
}

// setup loads the configuration and opens the database.
// Logs go to stderr so command output stays parseable.
func setup(cmd *cobra.Command, opts ...business.ServiceOption) (*runtime, error) {
	cfg, err := config.Load(config.Options{
		ConfigFile: configFile,
		EnvFile:    envFile,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return nil, NewConfigError(cmd.Name(), err,
			"Check zegraphql.yaml and ZEGRAPHQL_* environment variables")
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty, Output: os.Stderr})

	db, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, NewStoreError(cmd.Name(), "", err)
	}

	catalog, err := business.NewCatalog(cfg.Database.Schema)
	if err != nil {
		_ = db.Close()
		return nil, NewConfigError(cmd.Name(), err)
	}

	opts = append([]business.ServiceOption{
		business.WithLogger(logger.Component(log, "manager")),
		business.WithDefaultPageSize(cfg.Query.DefaultPageSize),
	}, opts...)

	return &runtime{
		cfg:     cfg,
		logger:  log,
		db:      db,
		service: business.NewService(db, catalog, opts...),
	}, nil
}

// bootstrap creates missing tables
func (r *runtime) bootstrap(ctx context.Context) error {
	b := storage.NewBootstrapper(r.db, r.service.Catalog(),
		storage.WithLogger(logger.Component(r.logger, "bootstrap")))
	return b.Bootstrap(ctx, r.cfg.Database.Path)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
