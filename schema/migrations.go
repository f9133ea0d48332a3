// Package schema embeds the versioned SQL migrations of the identity store.
package schema

import "embed"

// MigrationsDir is the directory inside MigrationsFS holding the files.
const MigrationsDir = "pgmigrations"

// MigrationsFS holds NNNNNN_name.up.sql / .down.sql pairs.
//
//go:embed pgmigrations/*.sql
var MigrationsFS embed.FS
