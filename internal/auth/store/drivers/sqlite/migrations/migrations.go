package migrations

import "embed"

// Migrations holds the SQLite schema migrations applied by golang-migrate.
//
//go:embed *.sql
var Migrations embed.FS
