// Package web serves the directory read API consumed by the frontend.
// It reads the authoritative store directly; there is no second "site"
// database to keep in sync.
package web

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/vanlist/van-builder-scraper/vanscrape"
)

type Server struct {
	srv *http.Server
	svc *Service
}

func New(svc *Service, addr string) *Server {
	ans := Server{
		svc: svc,
		srv: &http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       60 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", ans.health)
	mux.HandleFunc("GET /api/builders", ans.allBuilders)
	mux.HandleFunc("GET /api/builders/state/{state}", ans.buildersByState)
	mux.HandleFunc("GET /api/builders/search/{query}", ans.searchBuilders)

	ans.srv.Handler = mux

	return &ans
}

// Handler exposes the route table, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("server shutdown: %v", err)
		}
	}()

	log.Printf("serving directory API on %s", s.srv.Addr)

	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}

	return err
}

type listResponse struct {
	Success bool                      `json:"success"`
	Data    []vanscrape.BuilderRecord `json:"data"`
	Count   int                       `json:"count"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
}

func (s *Server) allBuilders(w http.ResponseWriter, r *http.Request) {
	records, err := s.svc.All(r.Context())
	if err != nil {
		renderError(w, err)

		return
	}

	renderList(w, records)
}

func (s *Server) buildersByState(w http.ResponseWriter, r *http.Request) {
	state := strings.TrimSpace(r.PathValue("state"))
	if state == "" {
		renderBadRequest(w, "state is required")

		return
	}

	records, err := s.svc.ByState(r.Context(), vanscrape.CanonicalState(state))
	if err != nil {
		renderError(w, err)

		return
	}

	renderList(w, records)
}

func (s *Server) searchBuilders(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.PathValue("query"))
	if query == "" {
		renderBadRequest(w, "query is required")

		return
	}

	records, err := s.svc.Search(r.Context(), query)
	if err != nil {
		renderError(w, err)

		return
	}

	renderList(w, records)
}

func renderList(w http.ResponseWriter, records []vanscrape.BuilderRecord) {
	if records == nil {
		records = []vanscrape.BuilderRecord{}
	}

	// List fields must serialize as [], social media as an object, even
	// for legacy rows.
	for i := range records {
		if records[i].VanTypes == nil {
			records[i].VanTypes = []string{}
		}

		if records[i].Amenities == nil {
			records[i].Amenities = []string{}
		}

		if records[i].Services == nil {
			records[i].Services = []string{}
		}

		if records[i].SocialMedia == nil {
			records[i].SocialMedia = map[string]string{}
		}

		if records[i].Gallery == nil {
			records[i].Gallery = []vanscrape.Photo{}
		}
	}

	w.Header().Set("Content-Type", "application/json")

	_ = json.NewEncoder(w).Encode(listResponse{
		Success: true,
		Data:    records,
		Count:   len(records),
	})
}

func renderError(w http.ResponseWriter, err error) {
	log.Printf("api error: %v", err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)

	_ = json.NewEncoder(w).Encode(errorResponse{Success: false, Error: "internal error"})
}

func renderBadRequest(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)

	_ = json.NewEncoder(w).Encode(errorResponse{Success: false, Error: msg})
}
