// Package webui exposes a minimal HTTP server with an HTML form that lets you
// upload an extractor dump, run reconstruction, and see the run statistics and
// the reconstructed records rendered inline.
//
// Routes:
//
//	GET  /         → upload form
//	POST /run      → runs reconstruction on the uploaded file; renders results
//	POST /api/run  → machine-friendly API, returns application/json
package webui

import (
	"context"
	_ "embed"
	"encoding/json"
	"html/template"
	"log"
	"net/http"

	"tablemend/internal/config"
	"tablemend/internal/extract"
	"tablemend/internal/reconstruct"
	"tablemend/internal/records"
)

// Config controls server startup. Layout and Policy are fixed at startup; the
// form only exposes per-run toggles.
type Config struct {
	Addr   string
	Policy reconstruct.Policy
}

// Server wraps http.ServeMux for convenience.
type Server struct {
	cfg  Config
	mux  *http.ServeMux
	tmpl *template.Template
}

// NewServer constructs a Server with routes and the embedded template.
func NewServer(cfg Config) *Server {
	s := &Server{
		cfg:  cfg,
		mux:  http.NewServeMux(),
		tmpl: template.Must(template.New("index").Parse(indexHTML)),
	}
	s.routes()
	return s
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return http.ListenAndServe(s.cfg.Addr, s.mux)
}

// Handler exposes the mux, mainly for tests.
func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/run", s.handleRun)
	s.mux.HandleFunc("/api/run", s.handleAPIRun)
}

// handleIndex renders the upload form.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	_ = s.tmpl.Execute(w, nil)
}

// runUpload reads the uploaded file from the multipart form and runs the
// engine under the server's policy.
func (s *Server) runUpload(r *http.Request) ([]records.Logical, reconstruct.Stats, error) {
	f, _, err := r.FormFile("file")
	if err != nil {
		return nil, reconstruct.Stats{}, err
	}
	defer f.Close()

	rows, err := extract.ReadCSV(r.Context(), f, config.Options{})
	if err != nil {
		return nil, reconstruct.Stats{}, err
	}

	pol := s.cfg.Policy
	if r.FormValue("casing") != "" {
		pol.Casing = r.FormValue("casing")
	}
	pol.KeepZeroNumericRows = r.FormValue("drop_zero") == ""

	return reconstruct.Run(rows, pol)
}

// handleRun processes the form upload and renders a results page.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	recs, st, err := s.runUpload(r)
	if err != nil {
		http.Error(w, "run failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	data := struct {
		Fields  []string
		Records []records.Logical
		Stats   reconstruct.Stats
		Merges  int
		Dropped int
	}{
		Fields:  s.cfg.Policy.Layout.NumericFields,
		Records: recs,
		Stats:   st,
		Merges:  st.RealignMerges + st.MergesTotal(),
		Dropped: st.DroppedTotal(),
	}
	if err := s.tmpl.Execute(w, data); err != nil {
		log.Println("webui: template:", err)
	}
}

// handleAPIRun returns the records plus statistics as JSON so scripts can
// curl the service.
func (s *Server) handleAPIRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	recs, st, err := s.runUpload(r)
	if err != nil {
		http.Error(w, "run failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(struct {
		Records []records.Logical `json:"records"`
		Stats   reconstruct.Stats `json:"stats"`
	}{recs, st})
}

// Run starts a server until ctx is canceled.
func Run(ctx context.Context, cfg Config) error {
	s := NewServer(cfg)
	srv := &http.Server{Addr: cfg.Addr, Handler: s.mux}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	log.Printf("webui: listening on %s", cfg.Addr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

//go:embed index.tmpl.html
var indexHTML string
