package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rubiojr/diplomatarium/pkg/core"
	"github.com/rubiojr/diplomatarium/pkg/log"
	"github.com/rubiojr/diplomatarium/pkg/realtime"
	"github.com/rubiojr/diplomatarium/pkg/search"
	"github.com/rubiojr/diplomatarium/pkg/shards"
	"github.com/rubiojr/diplomatarium/pkg/storage"
)

// ProgressSource reports the state of the shard load.
type ProgressSource interface {
	Progress() shards.Progress
}

// Options configures a Server.
type Options struct {
	// PageSize is used when a request has no limit.
	PageSize int
	// Fields is the default field selection for requests that name none.
	Fields []core.Field
	// ResultCache is the number of result sets kept for paging.
	ResultCache int
	// ResultTTL is how long a result set stays pageable.
	ResultTTL time.Duration
}

type Server struct {
	corpus   *storage.Corpus
	search   *search.SearchService
	loader   ProgressSource
	progress *realtime.Hub[shards.Progress]
	results  *resultCache
	pageSize int
	fields   []core.Field
	logger   *log.Logger
}

func NewServer(corpus *storage.Corpus, svc *search.SearchService, loader ProgressSource, hub *realtime.Hub[shards.Progress], opts Options) *Server {
	if opts.PageSize <= 0 {
		opts.PageSize = search.DefaultPageSize
	}
	return &Server{
		corpus:   corpus,
		search:   svc,
		loader:   loader,
		progress: hub,
		results:  newResultCache(opts.ResultCache, opts.ResultTTL),
		pageSize: opts.PageSize,
		fields:   opts.Fields,
		logger:   log.ForService("api"),
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warnf("Error encoding JSON response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, error, message string) {
	response := ErrorResponse{
		Error:   error,
		Message: message,
	}
	s.writeJSON(w, status, response)
}

func CorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
