// Package migrations embeds the goose SQL migrations.
package migrations

import "embed"

// Migration directories inside FS.
const (
	PostgresDir = "postgres"
	SQLiteDir   = "sqlite"
)

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
