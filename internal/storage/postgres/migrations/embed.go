// Package migrations embeds the battle archive schema migrations.
package migrations

import "embed"

// FS contains the golang-migrate up/down SQL files.
//
//go:embed *.sql
var FS embed.FS
