// Package migrations embeds the schema for every supported database driver.
// Each driver has its own directory named after it.
package migrations

import "embed"

//go:embed sqlite3/*.sql postgres/*.sql
var FS embed.FS
