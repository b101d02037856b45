// Package migrations embeds the goose schema files, one directory per dialect.
package migrations

import "embed"

//go:embed postgres/*.sql mysql/*.sql
var FS embed.FS
