// Package assets embeds files shipped with the binary.
package assets

import "embed"

//go:embed migrations
var Migrations embed.FS
