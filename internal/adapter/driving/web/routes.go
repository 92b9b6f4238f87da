package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers all web GUI routes on the provided mux.
// Views live under /view/{name}; the gate forms at /setup and /unlock.
// Static assets are served from the embedded filesystem at /static/*.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	mux.HandleFunc("GET /setup", h.SetupPage)
	mux.HandleFunc("POST /setup", h.Setup)
	mux.HandleFunc("GET /unlock", h.UnlockPage)
	mux.HandleFunc("POST /unlock", h.Unlock)
	mux.HandleFunc("POST /lock", h.Lock)

	mux.HandleFunc("GET /{$}", h.requireUnlocked(h.Index))
	mux.HandleFunc("GET /view/{name}", h.requireUnlocked(h.ShowView))
	mux.HandleFunc("POST /view/{name}", h.requireUnlocked(h.SubmitView))
}
