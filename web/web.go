// Package web embeds the HTML templates and static assets served by finlens.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates static
var content embed.FS

// Templates returns the embedded template tree (layouts, pages, partials)
func Templates() fs.FS {
	return sub("templates")
}

// Static returns the embedded static assets
func Static() fs.FS {
	return sub("static")
}

func sub(dir string) fs.FS {
	f, err := fs.Sub(content, dir)
	if err != nil {
		panic(err)
	}
	return f
}
