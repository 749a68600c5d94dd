// Package migrations embeds the goose SQL migrations so binaries and tests
// can apply them without depending on the working directory.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

// Dir is the directory goose reads from inside FS.
const Dir = "."
