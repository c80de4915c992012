// Package server implements the local icon preview server.
//
// The server exposes a read-only view of the destination directory: an
// HTML grid of all generated icons at /, the icon files themselves under
// /icons/{name}, and a health endpoint at /healthz. It exists to eyeball
// conversion results without opening files one by one.
package server

import (
	"context"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/icoforge/icoforge/pkg/errors"
)

// Server serves a destination directory of generated icons.
type Server struct {
	dir    string
	logger *log.Logger
}

// New creates a preview server over dir. The logger may be nil.
func New(dir string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{dir: dir, logger: logger}
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/icons/{name}", s.handleIcon)
	r.Get("/healthz", s.handleHealth)

	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if err := errors.ValidateAddr(addr); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	s.logger.Info("preview server listening", "addr", addr, "dir", s.dir)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errc:
		return err
	}
}

// icons lists the PNG files in the served directory, sorted by name.
func (s *Server) icons() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".png") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	names, err := s.icons()
	if err != nil {
		s.logger.Error("list icons", "err", err)
		http.Error(w, "cannot read icon directory", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, struct {
		Dir   string
		Names []string
	}{Dir: s.dir, Names: names}); err != nil {
		s.logger.Error("render index", "err", err)
	}
}

func (s *Server) handleIcon(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := errors.ValidateBasename(name); err != nil {
		http.Error(w, "invalid icon name", http.StatusBadRequest)
		return
	}
	if !strings.EqualFold(filepath.Ext(name), ".png") {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, path)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

var indexTmpl = template.Must(template.New("index").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>icoforge preview</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; background: #fafafa; }
h1 { font-size: 1.2rem; color: #333; }
.grid { display: grid; grid-template-columns: repeat(auto-fill, minmax(140px, 1fr)); gap: 1rem; }
.cell { background: repeating-conic-gradient(#eee 0% 25%, #fff 0% 50%) 0 0/16px 16px; border: 1px solid #ddd; border-radius: 6px; padding: 8px; text-align: center; }
.cell img { max-width: 128px; max-height: 128px; }
.cell p { font-size: 0.75rem; color: #555; margin: 6px 0 0; overflow-wrap: anywhere; }
.empty { color: #888; }
</style>
</head>
<body>
<h1>{{len .Names}} icons in {{.Dir}}</h1>
{{if .Names}}
<div class="grid">
{{range .Names}}
<div class="cell"><img src="/icons/{{.}}" alt="{{.}}"><p>{{.}}</p></div>
{{end}}
</div>
{{else}}
<p class="empty">No icons yet. Run a conversion first.</p>
{{end}}
</body>
</html>
`))
