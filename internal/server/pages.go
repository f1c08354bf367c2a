package server

import (
	"bytes"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ziadkadry99/navpatch/internal/walker"
)

func (s *Server) resolve(urlPath string) (string, error) {
	return walker.ResolvePage(s.cfg.SiteDir, urlPath)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	file, err := s.resolve(r.URL.Path)
	if errors.Is(err, walker.ErrPageNotFound) {
		s.serveNotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Directory URLs without a trailing slash break relative links.
	if filepath.Base(file) == "index.html" && !strings.HasSuffix(r.URL.Path, "/") && !strings.HasSuffix(r.URL.Path, ".html") {
		http.Redirect(w, r, r.URL.Path+"/", http.StatusMovedPermanently)
		return
	}

	if !walker.IsPage(file) {
		http.ServeFile(w, r, file)
		return
	}
	s.servePage(w, r, file, http.StatusOK)
}

func (s *Server) servePage(w http.ResponseWriter, r *http.Request, file string, status int) {
	src, err := os.ReadFile(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out, res, err := s.patcher.PatchBytes(src)
	if err != nil {
		s.log.Warn("patching page failed, serving original", "path", r.URL.Path, "error", err)
		out = src
	}
	if !res.Changed() && err == nil {
		out = src
	}
	if s.cfg.LiveReload {
		out = injectReloadClient(out)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if status == http.StatusOK {
		http.ServeContent(w, r, filepath.Base(file), time.Time{}, bytes.NewReader(out))
		return
	}
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		w.Write(out)
	}
}

// serveNotFound serves the site's own 404 page when it has one.
func (s *Server) serveNotFound(w http.ResponseWriter, r *http.Request) {
	notFound := filepath.Join(s.cfg.SiteDir, "404.html")
	if _, err := os.Stat(notFound); err == nil {
		s.servePage(w, r, notFound, http.StatusNotFound)
		return
	}
	http.NotFound(w, r)
}
