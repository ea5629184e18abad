package db

import "embed"

// migrationsFS holds one migration directory per dialect
//
//go:embed migrations
var migrationsFS embed.FS
