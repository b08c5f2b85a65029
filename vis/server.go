package vis

import (
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
)

const c_pageCacheSize = 32

// Server is the observer-mode collaborator: it serves the rendered report
// directory and rebuilds it whenever a local process posts /new_block.
// Rendered pages are held in a small in-memory cache that is purged on every
// rebuild.
type Server struct {
	dir     string
	rebuild func() error
	pages   *lru.Cache[string, []byte]
}

func NewServer(dir string, rebuild func() error) *Server {
	pages, _ := lru.New[string, []byte](c_pageCacheSize)
	return &Server{dir: dir, rebuild: rebuild, pages: pages}
}

// ListenAndServe blocks, serving the report on addr.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/new_block", s.handleNewBlock)
	mux.HandleFunc("/", s.handlePage)
	logrus.WithField("addr", addr).Info("observer listening")
	return http.ListenAndServe(addr, mux)
}

func isLoopback(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// handleNewBlock rebuilds the report. Only the local node's hook may trigger
// it.
func (s *Server) handleNewBlock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !isLoopback(r.RemoteAddr) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	logrus.Info("received new block notification")
	if err := s.rebuild(); err != nil {
		logrus.WithError(err).Error("rebuild failed")
		http.Error(w, "rebuild failed", http.StatusInternalServerError)
		return
	}
	s.pages.Purge()
	w.Write([]byte("Graphs rebuilt"))
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/")
	if name == "" {
		name = "index.html"
	}
	// The report directory is flat; reject anything trying to climb out.
	if name != filepath.Base(name) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	page, ok := s.pages.Get(name)
	if !ok {
		var err error
		page, err = os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		s.pages.Add(name, page)
	}

	switch filepath.Ext(name) {
	case ".html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	case ".svg":
		w.Header().Set("Content-Type", "image/svg+xml")
	case ".dot":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.Write(page)
}
