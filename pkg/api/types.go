package api

import (
	"time"

	"github.com/rubiojr/diplomatarium/pkg/core"
	"github.com/rubiojr/diplomatarium/pkg/search"
	"github.com/rubiojr/diplomatarium/pkg/shards"
	"github.com/rubiojr/diplomatarium/pkg/storage"
)

type DocumentResponse struct {
	ID                string         `json:"id"`
	Reference         string         `json:"reference"`
	ArchaicRef        string         `json:"archaic_ref,omitempty"`
	DNRef             string         `json:"dn_ref,omitempty"`
	RNRef             string         `json:"rn_ref,omitempty"`
	SDNID             string         `json:"sdn_id,omitempty"`
	Date              string         `json:"date"`
	DateStart         string         `json:"date_start,omitempty"`
	DateEnd           string         `json:"date_end,omitempty"`
	Place             string         `json:"place"`
	Summary           string         `json:"summary,omitempty"`
	FullText          string         `json:"full_text,omitempty"`
	Footnotes         string         `json:"footnotes,omitempty"`
	Addenda           string         `json:"addenda,omitempty"`
	Source            string         `json:"source,omitempty"`
	Lat               *float64       `json:"lat,omitempty"`
	Lon               *float64       `json:"lon,omitempty"`
	UncertainLocation bool           `json:"uncertain_location,omitempty"`
	Raw               map[string]any `json:"raw,omitempty"`
}

type HitResponse struct {
	Document DocumentResponse `json:"document"`
	Score    float64          `json:"score"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type SearchResponse struct {
	ResultID   string        `json:"result_id,omitempty"`
	Query      string        `json:"query"`
	Hits       []HitResponse `json:"hits"`
	TotalCount int           `json:"total_count"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"total_pages"`
	HasMore    bool          `json:"has_more"`
}

type StatusResponse struct {
	Progress shards.Progress `json:"progress"`
	Corpus   storage.Stats   `json:"corpus"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// ProgressMessage is sent over the progress websocket. Type is "init" for
// the first message and "progress" afterwards.
type ProgressMessage struct {
	Type     string          `json:"type"`
	Progress shards.Progress `json:"progress"`
}

func newDocumentResponse(d *core.Document, withRaw bool) DocumentResponse {
	resp := DocumentResponse{
		ID:                d.ID,
		Reference:         d.Reference(),
		ArchaicRef:        d.ArchaicRef(),
		DNRef:             d.DNRef,
		RNRef:             d.RNRef,
		SDNID:             d.SDNID,
		Date:              d.DisplayDate(),
		DateStart:         d.DateStart,
		DateEnd:           d.DateEnd,
		Place:             d.BestPlace(),
		Summary:           d.Summary,
		FullText:          d.FullText,
		Footnotes:         d.Footnotes,
		Addenda:           d.Addenda,
		Source:            d.Source,
		UncertainLocation: d.UncertainLocation,
	}
	if d.HasCoordinates {
		lat, lon := d.Lat, d.Lon
		resp.Lat, resp.Lon = &lat, &lon
	}
	if withRaw {
		resp.Raw = d.Raw
	}
	return resp
}

func newSearchResponse(id, query string, page search.Page) SearchResponse {
	hits := make([]HitResponse, len(page.Hits))
	for i, h := range page.Hits {
		hits[i] = HitResponse{Document: newDocumentResponse(h.Document, false), Score: h.Score}
	}
	return SearchResponse{
		ResultID:   id,
		Query:      query,
		Hits:       hits,
		TotalCount: page.Total,
		Page:       page.Number,
		Limit:      page.Size,
		TotalPages: page.TotalPages,
		HasMore:    page.HasNext(),
	}
}
