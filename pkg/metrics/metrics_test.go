package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInstrumentRecordsStatus(t *testing.T) {
	tests := []struct {
		pattern string
		status  int
		want    string
	}{
		{"GET /ok", http.StatusOK, "200"},
		{"GET /missing", http.StatusNotFound, "404"},
		{"GET /broken", http.StatusInternalServerError, "500"},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			h := Instrument(tt.pattern, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", http.NoBody))

			if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", tt.pattern, tt.want)); v < 1 {
				t.Errorf("http_requests_total{status=%s} = %f", tt.want, v)
			}
		})
	}
}

func TestInstrumentDefaultStatus(t *testing.T) {
	h := Instrument("GET /implicit", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", http.NoBody))

	if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "GET /implicit", "200")); v < 1 {
		t.Errorf("implicit 200 not recorded, got %f", v)
	}
}

func TestObserveSearch(t *testing.T) {
	before := testutil.ToFloat64(SearchesTotal.WithLabelValues("empty"))
	ObserveSearch(time.Millisecond, 0)
	ObserveSearch(time.Millisecond, 3)
	if got := testutil.ToFloat64(SearchesTotal.WithLabelValues("empty")); got != before+1 {
		t.Errorf("empty searches = %f, want %f", got, before+1)
	}
	if testutil.CollectAndCount(SearchDuration) == 0 {
		t.Error("search duration has no observations")
	}
}
