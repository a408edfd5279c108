// Package cli defines the cobra command tree for filterctl.
package cli

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"listing-search-workers/internal/common/database"
	"listing-search-workers/internal/common/logger"
	"listing-search-workers/internal/savedfilter"
)

type options struct {
	format      string
	dbPath      string
	postgresDSN string
	verbose     bool
}

// NewRootCmd creates the root command with global flags.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "filterctl",
		Short:         "Inspect and manage property filter states",
		Long:          "Encode and decode filter URLs, manage saved filters, apply filters to exported listings, rank nearby places and maintain the activity registry.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.format, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database path (default: ~/.listing-search/filters.db)")
	root.PersistentFlags().StringVar(&opts.postgresDSN, "postgres-dsn", "", "use the Postgres saved filter store at this DSN instead of SQLite")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newEncodeCmd(opts),
		newDecodeCmd(opts),
		newApplyCmd(opts),
		newSavedCmd(opts),
		newRankCmd(opts),
		newRegistryCmd(opts),
	)

	return root
}

func (o *options) isJSON() bool {
	return o.format == "json"
}

func (o *options) logger() logger.Logger {
	if o.verbose {
		return logger.NewStructured("debug", "console")
	}
	return logger.NewNoOpLogger()
}

// openStore opens the saved filter store selected by the global flags and
// ensures its schema exists.
func (o *options) openStore(cmd *cobra.Command) (*savedfilter.SQLStore, *sql.DB, error) {
	var (
		db      *sql.DB
		dialect savedfilter.Dialect
		err     error
	)
	if o.postgresDSN != "" {
		if db, err = sql.Open("postgres", o.postgresDSN); err != nil {
			return nil, nil, fmt.Errorf("opening postgres: %w", err)
		}
		dialect = savedfilter.Postgres
	} else {
		path := o.dbPath
		if path == "" {
			if path, err = database.DefaultSQLitePath(); err != nil {
				return nil, nil, err
			}
		}
		if db, err = database.OpenSQLite(path); err != nil {
			return nil, nil, err
		}
		dialect = savedfilter.SQLite
	}

	store := savedfilter.NewSQLStore(db, dialect, o.logger())
	if err := store.Migrate(cmd.Context()); err != nil {
		closeDB(db)
		return nil, nil, err
	}
	return store, db, nil
}

// closeDB closes the database, logging any error to stderr.
func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
