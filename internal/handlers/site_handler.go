package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// hashedAsset matches build outputs with a content hash in the name, e.g. main-4KZ2QF7A.js
var hashedAsset = regexp.MustCompile(`[-.][A-Za-z0-9]{8,}\.(?:js|css|woff2?|ttf|svg|png|jpe?g|webp|avif|ico)$`)

// SiteHandler serves the prebuilt single-page site
type SiteHandler struct {
	root string
}

func NewSiteHandler(root string) *SiteHandler {
	return &SiteHandler{root: root}
}

// Serve is the router's NoRoute handler. Unknown /api paths get a JSON 404;
// other GET requests resolve to a file, a prerendered <route>/index.html,
// or the SPA entry point.
func (h *SiteHandler) Serve(c *gin.Context) {
	p := c.Request.URL.Path
	if p == "/api" || strings.HasPrefix(p, "/api/") || h.root == "" {
		respondError(c, http.StatusNotFound, "Route not found", nil)
		return
	}
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		respondError(c, http.StatusNotFound, "Route not found", nil)
		return
	}

	clean := path.Clean("/" + p)
	if file, ok := h.lookup(clean); ok {
		h.serveFile(c, file)
		return
	}

	// prerendered route
	if file, ok := h.lookup(path.Join(clean, "index.html")); ok {
		h.serveFile(c, file)
		return
	}

	// missing assets are real 404s, client-side routes fall back to the app shell
	if path.Ext(clean) != "" {
		c.Status(http.StatusNotFound)
		return
	}

	if file, ok := h.lookup("/index.html"); ok {
		h.serveFile(c, file)
		return
	}

	respondError(c, http.StatusNotFound, "Route not found", nil)
}

// lookup resolves a URL path to a regular file under root
func (h *SiteHandler) lookup(urlPath string) (string, bool) {
	file := filepath.Join(h.root, filepath.FromSlash(urlPath))
	info, err := os.Stat(file)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return file, true
}

func (h *SiteHandler) serveFile(c *gin.Context, file string) {
	switch {
	case strings.HasSuffix(file, ".html"):
		c.Header("Cache-Control", "no-cache")
	case hashedAsset.MatchString(filepath.Base(file)):
		c.Header("Cache-Control", "public, max-age=31536000, immutable")
	default:
		c.Header("Cache-Control", "public, max-age=3600")
	}

	c.File(file)
}
