// Package migrations embeds the SQL schema migrations so binaries and tests
// can apply them without a checkout of this directory.
package migrations

import "embed"

// FS holds every *.up.sql and *.down.sql file of the schema.
//
//go:embed *.sql
var FS embed.FS
