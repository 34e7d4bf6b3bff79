package postgres

import "embed"

// MigrationsFS embeds the SQL migrations so deployments do not depend on
// an on-disk migrations directory.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS

// MigrationsDir is the path of the migrations inside MigrationsFS.
const MigrationsDir = "migrations"
