package api

import (
	"net/http"

	"github.com/rubiojr/diplomatarium/pkg/metrics"
)

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	s.handle(mux, "GET /api/search", s.HandleSearch)
	s.handle(mux, "GET /api/results/{id}", s.HandleResults)
	s.handle(mux, "GET /api/documents/{id}", s.HandleDocument)
	s.handle(mux, "GET /api/status", s.HandleStatus)
	s.handle(mux, "GET /api/progress", s.HandleProgress)
	s.handle(mux, "GET /health", s.HandleHealth)
	mux.Handle("GET /metrics", metrics.Handler())
}

func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, metrics.Instrument(pattern, h))
}
