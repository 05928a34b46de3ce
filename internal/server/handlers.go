package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vango-dev/memolab/internal/demo"
	"github.com/vango-dev/memolab/internal/errors"
	"github.com/vango-dev/memolab/internal/eventlog"
)

// maxActionBody bounds an action request body.
const maxActionBody = 1 << 16

// ActionRequest is the body of an action request. It may be omitted.
type ActionRequest struct {
	Arg string `json:"arg"`
}

// PageResponse describes one page and its current view.
type PageResponse struct {
	Meta demo.Meta `json:"meta"`
	View demo.View `json:"view"`
}

// EventsResponse lists event log entries.
type EventsResponse struct {
	Events []eventlog.Entry `json:"events"`
	Last   uint64           `json:"last"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string     `json:"error"`
	Code  string     `json:"code"`
	View  *demo.View `json:"view,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, demo.Catalog())
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	path := pagePath(r)

	page, err := s.lab.Lookup(path)
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	view, err := s.lab.View(path)
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, PageResponse{Meta: page.Meta(), View: view})
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	path := pagePath(r)
	action := chi.URLParam(r, "action")

	var req ActionRequest
	body := http.MaxBytesReader(w, r.Body, maxActionBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !stderrors.Is(err, io.EOF) {
		s.writeError(w, r, fmt.Errorf("%w: %v", demo.ErrInvalidArgument, err), nil)
		return
	}

	var view demo.View
	start := time.Now()
	err := s.tracer.TraceAction(r.Context(), path, action, req.Arg, func(context.Context) error {
		var err error
		view, err = s.lab.Dispatch(path, action, req.Arg)
		return err
	})
	if s.metrics != nil {
		s.metrics.ObserveAction(path, action, time.Since(start), err)
	}

	if err != nil {
		var failed *demo.View
		if view.Path != "" {
			failed = &view
		}
		s.writeError(w, r, err, failed)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	path := pagePath(r)

	var since uint64
	if raw := r.URL.Query().Get("since"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: since must be a sequence number, got %q", demo.ErrInvalidArgument, raw), nil)
			return
		}
		since = n
	}

	entries, err := s.lab.Events(path, since)
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}

	last := since
	if len(entries) > 0 {
		last = entries[len(entries)-1].Seq
	}
	if entries == nil {
		entries = []eventlog.Entry{}
	}
	writeJSON(w, http.StatusOK, EventsResponse{Events: entries, Last: last})
}

func pagePath(r *http.Request) string {
	return demo.PagePath(chi.URLParam(r, "section"), chi.URLParam(r, "page"))
}

// writeError maps err to a status code and writes an ErrorResponse.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, view *demo.View) {
	le := errors.Classify(err)
	status := le.HTTPStatus()
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, ErrorResponse{
		Error: err.Error(),
		Code:  le.Code,
		View:  view,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
