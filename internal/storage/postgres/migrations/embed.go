package migrations

import "embed"

// FS contains embedded PostgreSQL migrations for race storage.
//
//go:embed *.sql
var FS embed.FS
