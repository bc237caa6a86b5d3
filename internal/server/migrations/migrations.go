// Package migrations embeds the goose SQL migrations of the server databases.
package migrations

import "embed"

// Postgres holds the credential store and provider schema under "postgres".
//
//go:embed postgres/*.sql
var Postgres embed.FS

// Dishes holds the SQLite dishes catalogue schema and seed under "sqlite".
//
//go:embed sqlite/*.sql
var Dishes embed.FS
