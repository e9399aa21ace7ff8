package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rubiojr/diplomatarium/pkg/metrics"
	"github.com/rubiojr/diplomatarium/pkg/search"
	"github.com/rubiojr/diplomatarium/pkg/version"
)

func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	params, err := search.ParseSearchParams(query)
	if err != nil {
		if errors.Is(err, search.ErrUnknownField) {
			s.writeError(w, http.StatusBadRequest, "Invalid field", err.Error())
			return
		}
		s.writeError(w, http.StatusBadRequest, "Invalid parameters", err.Error())
		return
	}
	if query.Get("limit") == "" {
		params.Limit = s.pageSize
	}
	if len(params.Fields) == 0 {
		params.Fields = s.fields
	}

	start := time.Now()
	result := s.search.Search(params)
	metrics.ObserveSearch(time.Since(start), result.Len())
	s.logger.Debugf("search %q: %d hits in %s", result.Query, result.Len(), time.Since(start))

	var id string
	if result.Len() > 0 {
		id = s.results.put(result)
	}
	s.writeJSON(w, http.StatusOK, newSearchResponse(id, result.Query, result.Page(params.Page, params.Limit)))
}

// HandleResults pages through a result set returned by HandleSearch.
func (s *Server) HandleResults(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	result, ok := s.results.get(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "Result not found", fmt.Sprintf("Result set '%s' does not exist or has expired", id))
		return
	}

	page, limit := 1, s.pageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	s.writeJSON(w, http.StatusOK, newSearchResponse(id, result.Query, result.Page(page, limit)))
}

func (s *Server) HandleDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	doc, ok := s.corpus.Document(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "Document not found", fmt.Sprintf("Document '%s' does not exist", id))
		return
	}
	s.writeJSON(w, http.StatusOK, newDocumentResponse(doc, true))
}

func (s *Server) HandleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, StatusResponse{
		Progress: s.loader.Progress(),
		Corpus:   s.corpus.Stats(),
	})
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   version.APIVersion(),
	}

	s.writeJSON(w, http.StatusOK, health)
}
