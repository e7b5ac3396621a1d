package migrate

import "embed"

// Migrations holds the goose SQL files compiled into every binary.
//
//go:embed migrations/*.sql
var Migrations embed.FS

const embeddedDir = "migrations"
