// Package migrations carries the SQL schema so binaries can migrate without
// a checkout of the repository.
package migrations

import "embed"

// FS holds every *.up.sql / *.down.sql pair
//
//go:embed *.sql
var FS embed.FS
