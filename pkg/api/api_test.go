package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rubiojr/diplomatarium/pkg/core"
	"github.com/rubiojr/diplomatarium/pkg/realtime"
	"github.com/rubiojr/diplomatarium/pkg/search"
	"github.com/rubiojr/diplomatarium/pkg/shards"
	"github.com/rubiojr/diplomatarium/pkg/storage"
	"github.com/rubiojr/diplomatarium/pkg/textindex"
)

type staticProgress struct {
	p shards.Progress
}

func (s staticProgress) Progress() shards.Progress { return s.p }

func setupTestAPIServer(t *testing.T) (*httptest.Server, *realtime.Hub[shards.Progress]) {
	t.Helper()
	corpus := storage.NewCorpus(textindex.Options{
		Fuzzy:  0.2,
		Prefix: true,
		Boost:  map[string]float64{"sted": 4, "sammendrag": 3, "brevtekst": 2},
	})
	corpus.SetTotalShards(1)
	corpus.AddShard(0, []core.RawRecord{
		{"DN_ref": "DN00400123", "date_start": "1350", "DN_sted": "Bergen", "sammendrag": "om skatt", "LAT": "60.39", "LON": "5.32"},
		{"DN_ref": "B", "date_start": "1420", "DN_sted": "Oslo", "sammendrag": "om skatt og jord"},
		{"DN_ref": "C", "date_start": "1350", "DN_sted": "Oslo", "sammendrag": "om jord"},
	})

	hub := realtime.NewHub[shards.Progress](4)
	loader := staticProgress{shards.Progress{State: shards.StateReady, Loaded: 1, Total: 1, Documents: 3}}
	srv := NewServer(corpus, search.NewSearchService(corpus, search.Options{}), loader, hub, Options{PageSize: 2})

	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)
	ts := httptest.NewServer(CorsMiddleware(mux))
	t.Cleanup(ts.Close)
	return ts, hub
}

func getJSON(t *testing.T, ts *httptest.Server, path string, wantStatus int, out any) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("GET %s: status %d, want %d: %s", path, resp.StatusCode, wantStatus, body)
	}
	if out == nil {
		return
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
}

func TestHandleSearch(t *testing.T) {
	ts, _ := setupTestAPIServer(t)

	tests := []struct {
		name      string
		query     string
		wantTotal int
		wantPages int
	}{
		{"single term", "q=skatt", 2, 1},
		{"or groups", "q=skatt+OR+jord", 3, 2},
		{"scoped", "q=skatt+AND+place:Oslo", 1, 1},
		{"date only", "from=1340&to=1360", 2, 1},
		{"too short", "q=s", 0, 1},
		{"explicit limit", "q=skatt+OR+jord&limit=10", 3, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp SearchResponse
			getJSON(t, ts, "/api/search?"+tt.query, http.StatusOK, &resp)
			if resp.TotalCount != tt.wantTotal || resp.TotalPages != tt.wantPages {
				t.Errorf("total=%d pages=%d, want %d and %d", resp.TotalCount, resp.TotalPages, tt.wantTotal, tt.wantPages)
			}
			if (resp.ResultID != "") != (tt.wantTotal > 0) {
				t.Errorf("result_id = %q for %d hits", resp.ResultID, tt.wantTotal)
			}
		})
	}
}

func TestHandleSearchInvalidField(t *testing.T) {
	ts, _ := setupTestAPIServer(t)
	var resp ErrorResponse
	getJSON(t, ts, "/api/search?q=skatt&field=author", http.StatusBadRequest, &resp)
	if resp.Error != "Invalid field" {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestHandleResultsPaging(t *testing.T) {
	ts, _ := setupTestAPIServer(t)

	var first SearchResponse
	getJSON(t, ts, "/api/search?q=skatt+OR+jord", http.StatusOK, &first)
	if len(first.Hits) != 2 || !first.HasMore {
		t.Fatalf("first page: %d hits, has_more=%v", len(first.Hits), first.HasMore)
	}

	var second SearchResponse
	getJSON(t, ts, "/api/results/"+first.ResultID+"?page=2", http.StatusOK, &second)
	if len(second.Hits) != 1 || second.Page != 2 || second.HasMore {
		t.Errorf("second page: %+v", second)
	}

	seen := map[string]bool{}
	for _, h := range append(first.Hits, second.Hits...) {
		seen[h.Document.ID] = true
	}
	if len(seen) != 3 {
		t.Errorf("pages should cover every hit once, got %v", seen)
	}

	var clamped SearchResponse
	getJSON(t, ts, "/api/results/"+first.ResultID+"?page=99", http.StatusOK, &clamped)
	if clamped.Page != 2 {
		t.Errorf("page should be clamped to 2, got %d", clamped.Page)
	}

	getJSON(t, ts, "/api/results/does-not-exist", http.StatusNotFound, nil)
}

func TestHandleDocument(t *testing.T) {
	ts, _ := setupTestAPIServer(t)

	var found SearchResponse
	getJSON(t, ts, "/api/search?q=Bergen", http.StatusOK, &found)
	if len(found.Hits) != 1 {
		t.Fatalf("expected one hit, got %d", len(found.Hits))
	}
	id := found.Hits[0].Document.ID

	var doc DocumentResponse
	getJSON(t, ts, "/api/documents/"+url.PathEscape(id), http.StatusOK, &doc)
	if doc.ID != id || doc.Place != "Bergen" || doc.Date != "1350" {
		t.Errorf("unexpected document: %+v", doc)
	}
	if doc.ArchaicRef != "Diplomatarium Norvegicum IV, 123" {
		t.Errorf("archaic ref = %q", doc.ArchaicRef)
	}
	if doc.Lat == nil || *doc.Lat != 60.39 {
		t.Errorf("lat = %v", doc.Lat)
	}
	if doc.Raw["DN_sted"] != "Bergen" {
		t.Errorf("raw record missing: %v", doc.Raw)
	}

	getJSON(t, ts, "/api/documents/"+url.PathEscape("missing#0:0"), http.StatusNotFound, nil)
}

func TestHandleStatus(t *testing.T) {
	ts, _ := setupTestAPIServer(t)
	var resp StatusResponse
	getJSON(t, ts, "/api/status", http.StatusOK, &resp)
	if resp.Progress.State != shards.StateReady || resp.Corpus.Documents != 3 || resp.Corpus.WithCoordinates != 1 {
		t.Errorf("unexpected status: %+v", resp)
	}
}

func TestHandleHealth(t *testing.T) {
	ts, _ := setupTestAPIServer(t)
	var resp HealthResponse
	getJSON(t, ts, "/health", http.StatusOK, &resp)
	if resp.Status != "ok" || resp.Version == "" {
		t.Errorf("unexpected health: %+v", resp)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _ := setupTestAPIServer(t)
	getJSON(t, ts, "/api/search?q=skatt", http.StatusOK, nil)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	for _, name := range []string{"diplomatarium_searches_total", "diplomatarium_http_requests_total"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("metrics output lacks %s", name)
		}
	}
}

func TestHandleProgress(t *testing.T) {
	ts, hub := setupTestAPIServer(t)

	u, _ := url.Parse(ts.URL)
	u.Scheme = "ws"
	u.Path = "/api/progress"
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("dial ws: %v", err)
	}
	defer conn.Close()

	read := func() ProgressMessage {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg ProgressMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		return msg
	}

	first := read()
	if first.Type != "init" || first.Progress.State != shards.StateReady {
		t.Fatalf("unexpected init message: %+v", first)
	}

	// The listener may register after the broadcast below; keep publishing
	// until a progress message arrives.
	want := shards.Progress{State: shards.StateLoading, Loaded: 1, Total: 2}
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				hub.Broadcast(want)
			}
		}
	}()

	msg := read()
	if msg.Type != "progress" || msg.Progress.Loaded != 1 || msg.Progress.Total != 2 {
		t.Errorf("unexpected progress message: %+v", msg)
	}
}
