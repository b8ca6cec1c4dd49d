// Package server is the web front end of the sandbox: the editor page and a small
// JSON API over the same session.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/nsxbet/sql-sandbox/pkg/logger"
	"github.com/nsxbet/sql-sandbox/pkg/render"
	"github.com/nsxbet/sql-sandbox/pkg/sandbox"
	"github.com/nsxbet/sql-sandbox/pkg/types"
)

// MaxScriptBytes bounds the size of a submitted script.
const MaxScriptBytes = 1 << 20

// Server serves the editor page and the JSON API.
type Server struct {
	session *sandbox.Session
	log     logger.Interface
	mux     *http.ServeMux
}

// New returns the handler for session.
func New(session *sandbox.Session, log logger.Interface) *Server {
	s := &Server{
		session: session,
		log:     log,
		mux:     http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("POST /run", s.handleRun)
	s.mux.HandleFunc("POST /reset", s.handleReset)
	s.mux.HandleFunc("POST /api/run", s.handleAPIRun)
	s.mux.HandleFunc("POST /api/reset", s.handleAPIReset)
	s.mux.HandleFunc("GET /api/hint", s.handleAPIHint)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s.mux.ServeHTTP(w, r)
	s.log.Debug("Request served", "method", r.Method, "path", r.URL.Path, "duration_ms", time.Since(start).Milliseconds())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.writePage(w, r, render.Page{})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxScriptBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	script := r.PostForm.Get("sql")

	outcome, err := s.session.Exec(r.Context(), script)
	if err != nil {
		s.fail(w, "Failed to execute script", err)
		return
	}
	s.writePage(w, r, render.Page{SQL: script, Outcome: outcome})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Reset(r.Context()); err != nil {
		s.fail(w, "Failed to reset sandbox", err)
		return
	}
	s.writePage(w, r, render.Page{Notice: render.ResetMessage})
}

// writePage completes page with the current rooms and schema.
func (s *Server) writePage(w http.ResponseWriter, r *http.Request, page render.Page) {
	page.Rooms, page.RoomsErr = s.session.Rooms(r.Context())
	page.Schema, page.SchemaErr = s.session.Schema(r.Context())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.WritePage(w, page); err != nil {
		s.log.Error("Failed to write page", logger.Error(err))
	}
}

func (s *Server) fail(w http.ResponseWriter, msg string, err error) {
	s.log.Error(msg, logger.Error(err))
	status := http.StatusInternalServerError
	if errors.Is(err, sandbox.ErrNotReady) {
		status = http.StatusServiceUnavailable
	}
	http.Error(w, msg, status)
}

// RunRequest is the body of POST /api/run.
type RunRequest struct {
	SQL string `json:"sql"`
}

// RunResponse is the answer of POST /api/run and POST /api/reset.
type RunResponse struct {
	Outcome *sandbox.Outcome              `json:"outcome,omitempty"`
	Message string                        `json:"message,omitempty"`
	Rooms   []sandbox.Room                `json:"rooms"`
	Schema  *types.DatabaseSchemaMetadata `json:"schema,omitempty"`
	// Errors of the derived views; the script itself already ran.
	RoomsError  string `json:"roomsError,omitempty"`
	SchemaError string `json:"schemaError,omitempty"`
}

func (s *Server) handleAPIRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxScriptBytes)).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	outcome, err := s.session.Exec(r.Context(), req.SQL)
	if err != nil {
		s.fail(w, "Failed to execute script", err)
		return
	}
	resp := s.views(r.Context())
	resp.Outcome = outcome
	if outcome.OK() && len(outcome.Tables()) == 0 {
		resp.Message = sandbox.SuccessMessage
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAPIReset(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Reset(r.Context()); err != nil {
		s.fail(w, "Failed to reset sandbox", err)
		return
	}
	resp := s.views(r.Context())
	resp.Message = render.ResetMessage
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) views(ctx context.Context) *RunResponse {
	resp := &RunResponse{}
	rooms, err := s.session.Rooms(ctx)
	if err != nil {
		resp.RoomsError = err.Error()
	}
	resp.Rooms = rooms
	if resp.Rooms == nil {
		resp.Rooms = []sandbox.Room{}
	}
	schema, err := s.session.Schema(ctx)
	if err != nil {
		resp.SchemaError = err.Error()
	}
	resp.Schema = schema
	return resp
}

func (s *Server) handleAPIHint(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Hints().Find(r.URL.Query().Get("sql")))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
