package handler

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// SPAHandler serves the built React bundle.
//
// ROUTING:
// The SPA does its own client-side routing, so a deep link such as
// /category/tag-2 has no file on disk. Any GET that does not match a real
// file gets index.html and the client router takes over.
//
//	GET /assets/app.js    → <dir>/assets/app.js
//	GET /category/tag-2   → <dir>/index.html
//	GET /api/unknown      → 404 JSON (never the SPA)
//
// When the bundle has not been built, every fallback is a 404 JSON so a
// fresh checkout does not serve a blank page.
type SPAHandler struct {
	dir        string
	fileServer http.Handler
	rs         *Responder
}

// NewSPAHandler serves files from dir (usually frontend/dist).
func NewSPAHandler(dir string, rs *Responder) *SPAHandler {
	return &SPAHandler{
		dir:        dir,
		fileServer: http.FileServer(http.Dir(dir)),
		rs:         rs,
	}
}

func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p := path.Clean("/" + r.URL.Path)

	if strings.HasPrefix(p, "/api/") || p == "/api" || strings.HasPrefix(p, "/uploads/") {
		h.rs.JSON(w, http.StatusNotFound, ErrorResponse{Error: "route not found", Code: "not_found"})
		return
	}

	if rel := strings.TrimPrefix(p, "/"); rel != "" && filepath.IsLocal(rel) {
		if info, err := os.Stat(filepath.Join(h.dir, filepath.FromSlash(rel))); err == nil && !info.IsDir() {
			h.fileServer.ServeHTTP(w, r)
			return
		}
	}

	index := filepath.Join(h.dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			h.rs.logger.Warn("cannot stat SPA index", "error", err)
		}
		h.rs.JSON(w, http.StatusNotFound, ErrorResponse{
			Error: "frontend not built yet: run `npm run build` in frontend/",
			Code:  "not_found",
		})
		return
	}

	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, index)
}
