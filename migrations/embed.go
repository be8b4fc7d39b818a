// Package migrations embeds the SQL migration files so the server can apply
// them with the goose programmatic API at startup.
package migrations

import "embed"

// FS holds all *.sql migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
