// Package migrations embeds the storefront's numbered SQL migrations so the
// migrate binary and the integration tests run the same schema.
package migrations

import "embed"

// FS holds the up and down migration files
//
//go:embed *.sql
var FS embed.FS
