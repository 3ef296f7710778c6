package assets

import (
	"embed"
	"io/fs"
)

//go:embed dist
var dist embed.FS

// Bundled returns the UI assets compiled into the binary.
func Bundled() fs.FS {
	sub, err := fs.Sub(dist, "dist")
	if err != nil {
		panic(err)
	}
	return sub
}
