// Package migrations embeds the schema files so integration tests can apply
// them to a fresh database.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
