package templates

import (
	"embed"
	"io/fs"
)

//go:embed defaults
var defaultThemeContents embed.FS

// DefaultFS returns the embedded fallback theme: the layout set plus its
// static assets. It is used whenever no theme directory is configured.
func DefaultFS() fs.FS {
	sub, err := fs.Sub(defaultThemeContents, "defaults")
	if err != nil {
		// The embed path is fixed at compile time; failing here means the
		// binary itself is broken.
		panic(err)
	}
	return sub
}
