// internal/savedfilter/dialect.go
package savedfilter

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Dialect holds the SQL differences between the supported databases.
type Dialect struct {
	Name string

	schema            []string
	placeholder       func(n int) string
	isUniqueViolation func(err error) bool
	// validID is nil when the id column accepts any text.
	validID func(id string) bool
}

var Postgres = Dialect{
	Name: "postgres",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS saved_filters (
			id         UUID PRIMARY KEY,
			owner_id   TEXT NOT NULL,
			name       TEXT NOT NULL,
			state      JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS saved_filters_owner_name ON saved_filters (owner_id, name)`,
	},
	placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	isUniqueViolation: func(err error) bool {
		var pqErr *pq.Error
		return errors.As(err, &pqErr) && pqErr.Code == "23505"
	},
	validID: func(id string) bool {
		_, err := uuid.Parse(id)
		return err == nil
	},
}

var SQLite = Dialect{
	Name: "sqlite",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS saved_filters (
			id         TEXT PRIMARY KEY,
			owner_id   TEXT NOT NULL,
			name       TEXT NOT NULL,
			state      TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS saved_filters_owner_name ON saved_filters (owner_id, name)`,
	},
	placeholder: func(int) string { return "?" },
	isUniqueViolation: func(err error) bool {
		var sqErr sqlite3.Error
		return errors.As(err, &sqErr) && sqErr.ExtendedCode == sqlite3.ErrConstraintUnique
	},
}

// DialectFor maps a configured driver name to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "postgres":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	}
	return Dialect{}, fmt.Errorf("unsupported saved filter driver %q", driver)
}

// bind rewrites a query written with "?" placeholders for the dialect.
func (d Dialect) bind(query string) string {
	out := make([]byte, 0, len(query)+8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			out = append(out, d.placeholder(n)...)
			continue
		}
		out = append(out, query[i])
	}
	return string(out)
}

// acceptsID reports whether id can be compared against the id column
// without a type error.
func (d Dialect) acceptsID(id string) bool {
	return d.validID == nil || d.validID(id)
}
