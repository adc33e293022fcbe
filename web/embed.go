// Package web carries the HTML templates embedded into the binary for
// release builds. In debug mode the templates directory is read from disk
// instead, so edits take effect without recompiling.
package web

import "embed"

//go:embed all:templates
var EmbeddedFS embed.FS
