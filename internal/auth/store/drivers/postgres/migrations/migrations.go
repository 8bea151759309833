package migrations

import "embed"

// Migrations holds the PostgreSQL schema migrations applied by golang-migrate.
// The users table matches the one created by the earlier Express backend,
// hence IF NOT EXISTS: adopting an existing database must not fail.
//
//go:embed *.sql
var Migrations embed.FS
