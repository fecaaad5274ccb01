package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// SPA serves files from dir and falls back to index.html for client-side
// routes. API paths never fall back; they get the JSON 404.
type SPA struct {
	dir string
	fs  http.Handler
}

func NewSPA(dir string) *SPA {
	return &SPA{dir: dir, fs: http.FileServer(http.Dir(dir))}
}

func (s *SPA) NoRoute(ctx *gin.Context) {
	path := ctx.Request.URL.Path

	if isAPIPath(path) || ctx.Request.Method != http.MethodGet && ctx.Request.Method != http.MethodHead {
		RespondNotFound(ctx, "Route not found")
		return
	}

	clean := filepath.Clean("/" + path)
	if info, err := os.Stat(filepath.Join(s.dir, filepath.FromSlash(clean))); err == nil && !info.IsDir() {
		s.fs.ServeHTTP(ctx.Writer, ctx.Request)
		return
	}

	ctx.File(filepath.Join(s.dir, "index.html"))
}

// NotFound is the NoRoute handler when no frontend is configured.
func NotFound(ctx *gin.Context) {
	RespondNotFound(ctx, "Route not found")
}

func isAPIPath(path string) bool {
	return strings.HasPrefix(path, "/api/") || path == "/api" || strings.HasPrefix(path, "/auth/")
}
