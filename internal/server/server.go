package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"feditimes/internal/domain"
	"feditimes/internal/offline"
	"feditimes/internal/render"

	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

//go:embed static/style.css
var staticFS embed.FS

type Server struct {
	source         render.Source
	offlineCopy    render.Source
	renderer       *render.Renderer
	defaultSort    domain.SortKey
	allowedOrigins []string
	log            *slog.Logger
}

func New(
	source render.Source,
	offlineCopy render.Source,
	renderer *render.Renderer,
	defaultSort domain.SortKey,
	allowedOrigins []string,
	log *slog.Logger,
) *Server {
	return &Server{
		source:         source,
		offlineCopy:    offlineCopy,
		renderer:       renderer,
		defaultSort:    domain.ParseSortKey(string(defaultSort)),
		allowedOrigins: allowedOrigins,
		log:            log,
	}
}

// Handler returns the traced mux with all routes.
func (s *Server) Handler() http.Handler {
	api := cors.New(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /offline", s.handleOffline)
	mux.Handle("/api/posts", api.Handler(http.HandlerFunc(s.handlePosts)))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /style.css", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, staticFS, "static/style.css")
	})

	return otelhttp.NewHandler(mux, "feditimes",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return fmt.Sprintf("HTTP %s %s", r.Method, r.URL.Path)
		}),
	)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	page := render.NewPage(s.source, s.renderer, s.sortKey(r), s.log)

	status := http.StatusOK
	if err := page.Load(r.Context()); err != nil {
		status = http.StatusBadGateway
	}

	s.writePage(w, r, page, status)
}

func (s *Server) handleOffline(w http.ResponseWriter, r *http.Request) {
	page := render.NewPage(s.offlineCopy, s.renderer, s.sortKey(r), s.log)
	page.MarkOffline()

	status := http.StatusOK
	if err := page.Load(r.Context()); err != nil {
		status = http.StatusBadGateway
		if errors.Is(err, offline.ErrNoCopy) {
			status = http.StatusServiceUnavailable
		}
	}

	s.writePage(w, r, page, status)
}

func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
		return
	}

	page := render.NewPage(s.source, s.renderer, s.sortKey(r), s.log)
	if err := page.Load(r.Context()); err != nil {
		writeJSON(w, http.StatusBadGateway, errorBody{Error: err.Error()})
		return
	}

	cards := page.Cards()
	if cards == nil {
		cards = []render.Card{}
	}

	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) sortKey(r *http.Request) domain.SortKey {
	raw := r.URL.Query().Get("sort")
	if raw == "" {
		return s.defaultSort
	}

	return domain.ParseSortKey(raw)
}

func (s *Server) writePage(w http.ResponseWriter, r *http.Request, page *render.Page, status int) {
	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		s.log.ErrorContext(r.Context(), "Failed to render page",
			"error", err,
			"path", r.URL.Path)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		s.log.WarnContext(r.Context(), "Failed to write page",
			"error", err,
			"path", r.URL.Path)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
