package run

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"vinspect/internal/inspector"
)

// httpServe runs the dev HTTP server: project files, virtual module ids, and
// the websocket channel endpoint.
func (s *Server) httpServe(ctx context.Context) {
	mux := http.NewServeMux()
	mux.Handle("/__vinspect", s.hub)
	mux.HandleFunc("/", s.handleHTTP)
	server := &http.Server{
		Addr:    s.cfg.Server.Addr,
		Handler: mux,
	}
	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()
	s.logger.Infof("dev server listening on http://%s", s.cfg.Server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Errorf("dev server: %v", err)
	}
}

func (s *Server) handleHTTP(w http.ResponseWriter, r *http.Request) {
	if id, ok := strings.CutPrefix(r.URL.Path, inspector.IDPrefix); ok {
		s.serveVirtual(w, r, id)
		return
	}
	s.serveProjectFile(w, r)
}

// serveVirtual answers /@id/ requests through the resolve and load hooks.
// Browser requests are never server-rendering context.
func (s *Server) serveVirtual(w http.ResponseWriter, r *http.Request, id string) {
	resolved, ok := s.insp.ResolveID(id, false)
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.metrics.incResolved()
	src, ok := s.insp.Load(resolved, false)
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.metrics.incLoaded()
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	_, _ = w.Write([]byte(src))
}

func (s *Server) serveProjectFile(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if rel == "" {
		rel = "index.html"
	}
	fsPath := filepath.Join(s.cfg.Server.Root, filepath.FromSlash(rel))
	if info, err := os.Stat(fsPath); err == nil && info.IsDir() {
		rel = path.Join(rel, "index.html")
		fsPath = filepath.Join(fsPath, "index.html")
	}

	switch {
	case strings.HasSuffix(rel, ".html"):
		data, err := os.ReadFile(fsPath)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		html := string(data)
		if out, tags, ok := s.insp.TransformHTML(html); ok {
			html = out
			s.metrics.incInjected()
			s.logger.Debugf("injected %d tag(s) into %s", len(tags), rel)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
	case s.insp.AppendTo() != "" && strings.HasSuffix(rel, s.insp.AppendTo()):
		data, err := os.ReadFile(fsPath)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		code := string(data)
		if out, ok := s.insp.Transform(code, rel, false); ok {
			code = out
			s.metrics.incInjected()
		}
		w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
		_, _ = w.Write([]byte(code))
	default:
		http.ServeFile(w, r, fsPath)
	}
}
