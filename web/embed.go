// Package web embeds the legacy chat page and serves it for non-API routes.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"
)

//go:embed pages
var pagesFS embed.FS

// PageHandler serves the embedded pages, falling back to the chat page for
// any path that doesn't match a file.
func PageHandler() http.Handler {
	subFS, err := fs.Sub(pagesFS, "pages")
	if err != nil {
		panic("web: failed to create sub filesystem: " + err.Error())
	}

	fileServer := http.FileServer(http.FS(subFS))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/")
		if path == "" {
			path = "chat.html"
		}

		if f, err := subFS.Open(path); err == nil {
			f.Close()
			fileServer.ServeHTTP(w, r)
			return
		}

		r.URL.Path = "/"
		http.ServeFileFS(w, r, subFS, "chat.html")
	})
}
