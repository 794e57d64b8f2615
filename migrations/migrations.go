// Package migrations содержит SQL миграции, встроенные в бинарник
package migrations

import "embed"

//go:embed postgres/*.sql
var PostgresMigrations embed.FS
