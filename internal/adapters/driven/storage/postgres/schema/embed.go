// Package schema embeds the PostgreSQL history schema.
package schema

import "embed"

// FS contains the schema files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
