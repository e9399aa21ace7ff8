// Package shards fetches a corpus that is published as a description file
// plus a numbered sequence of JSON shards, and feeds the shards into the
// corpus one at a time.
//
// A source is either an http(s) base URL or a local directory. The layout
// below the source is fixed by two names: the description file (by default
// metadata.json) and the shard name pattern (by default
// chunks/letters-chunk-%02d.json).
package shards

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrDescription marks a failure to fetch or understand the description. It
// is fatal: without the shard count nothing can be loaded.
var ErrDescription = errors.New("shard description unavailable")

// Description is the published summary of a corpus.
type Description struct {
	// Shards is the number of shard files.
	Shards int `json:"chunks"`
	// Letters is the advertised number of records over all shards.
	Letters int `json:"total_letters,omitempty"`
	// ShardSize is the advertised number of records per shard.
	ShardSize int `json:"chunk_size,omitempty"`
	// Fields lists the record keys the export produced.
	Fields []string `json:"fields,omitempty"`
}

// ParseDescription decodes a description document. The shard count may be
// named "chunks" or "shards"; one of them is required.
func ParseDescription(data []byte) (Description, error) {
	var raw struct {
		Chunks       *int     `json:"chunks"`
		Shards       *int     `json:"shards"`
		TotalLetters int      `json:"total_letters"`
		ChunkSize    int      `json:"chunk_size"`
		Fields       []string `json:"fields"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Description{}, fmt.Errorf("%w: decoding: %v", ErrDescription, err)
	}

	count := raw.Chunks
	if count == nil {
		count = raw.Shards
	}
	if count == nil {
		return Description{}, fmt.Errorf("%w: no shard count", ErrDescription)
	}
	if *count < 0 {
		return Description{}, fmt.Errorf("%w: negative shard count %d", ErrDescription, *count)
	}

	return Description{
		Shards:    *count,
		Letters:   raw.TotalLetters,
		ShardSize: raw.ChunkSize,
		Fields:    raw.Fields,
	}, nil
}
