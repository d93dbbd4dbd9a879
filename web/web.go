// Package web embeds the browser front end and the demo dataset.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var staticFiles embed.FS

// MockDataFile is the fallback dataset's name under /static/.
const MockDataFile = "mock_data.json"

// StaticFS serves the contents of static/ at the mount point.
func StaticFS() http.FileSystem {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err) // static/ is embedded at build time
	}
	return http.FS(sub)
}

func IndexHTML() []byte {
	b, _ := staticFiles.ReadFile("static/index.html")
	return b
}

