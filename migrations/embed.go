// Package migrations embeds the schema migrations for each supported dialect.
// Scripts live in a directory named after the dialect.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
