package db

import (
	"fmt"
	"regexp"

	"github.com/jmoiron/sqlx"
	// necessary import to wire up the postgres driver
	_ "github.com/lib/pq"
)

// Store queries interpolate the schema name directly into SQL text, so
// only plain lowercase identifiers are accepted as schema names.
var schemaNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func ValidSchemaName(schema string) bool {
	return schemaNamePattern.MatchString(schema)
}

// NewConnection opens the Postgres database that backs the keyed store,
// verifying both that the configured schema is usable as a query
// qualifier and that the database is reachable.
func NewConnection(databaseURL, schema string) (*sqlx.DB, error) {
	if !ValidSchemaName(schema) {
		return nil, fmt.Errorf("invalid database schema name: %q", schema)
	}

	conn, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return conn, nil
}
