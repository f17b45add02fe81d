// Package migrations embeds the SQL schema files shared by the SQLite
// and Postgres storage backends.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
