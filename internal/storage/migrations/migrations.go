// Package migrations embeds the SQL schema for the SQLite run store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
