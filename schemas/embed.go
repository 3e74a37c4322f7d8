// Package schemas provides embedded SQL migration files.
package schemas

import "embed"

// Migrations contains the SQL files applied by database.Migrate, in file name order.
//
//go:embed migrations/*.sql
var Migrations embed.FS
