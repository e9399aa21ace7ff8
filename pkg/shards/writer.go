package shards

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// DefaultShardSize is the number of records per shard written by Split.
const DefaultShardSize = 1000

// Compression selects how Split encodes shard files.
type Compression string

const (
	CompressNone Compression = ""
	CompressGzip Compression = "gzip"
	CompressZstd Compression = "zstd"
)

// ParseCompression accepts "", "none", "gzip" and "zstd".
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "", "none":
		return CompressNone, nil
	case "gzip", "zstd":
		return Compression(s), nil
	}
	return CompressNone, fmt.Errorf("unknown compression %q", s)
}

// SplitOptions configures Split.
type SplitOptions struct {
	ShardSize   int
	Metadata    string
	Pattern     string
	Compression Compression
}

// Split reads a CSV export with a header row and writes it below dir as a
// description file plus shards of ShardSize records, in the layout Loader
// reads. Every value is written as a string, like the export holds it.
func Split(r io.Reader, dir string, opts SplitOptions) (Description, error) {
	if opts.ShardSize <= 0 {
		opts.ShardSize = DefaultShardSize
	}
	if opts.Metadata == "" {
		opts.Metadata = DefaultMetadata
	}
	if opts.Pattern == "" {
		opts.Pattern = DefaultPattern
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		header = nil
	} else if err != nil {
		return Description{}, fmt.Errorf("reading header: %w", err)
	}

	desc := Description{ShardSize: opts.ShardSize, Fields: header}
	batch := make([]map[string]string, 0, opts.ShardSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		name := filepath.Join(dir, filepath.FromSlash(fmt.Sprintf(opts.Pattern, desc.Shards)))
		if err := writeShard(name, batch, opts.Compression); err != nil {
			return err
		}
		desc.Shards++
		batch = batch[:0]
		return nil
	}

	for header != nil {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Description{}, fmt.Errorf("reading row %d: %w", desc.Letters+2, err)
		}
		rec := make(map[string]string, len(header))
		for i, key := range header {
			if i < len(row) {
				rec[key] = row[i]
			} else {
				rec[key] = ""
			}
		}
		batch = append(batch, rec)
		desc.Letters++
		if len(batch) == opts.ShardSize {
			if err := flush(); err != nil {
				return Description{}, err
			}
		}
	}
	if err := flush(); err != nil {
		return Description{}, err
	}

	data, err := json.Marshal(desc)
	if err != nil {
		return Description{}, fmt.Errorf("encoding description: %w", err)
	}
	if err := writeOutput(filepath.Join(dir, filepath.FromSlash(opts.Metadata)), data); err != nil {
		return Description{}, err
	}
	return desc, nil
}

func writeShard(name string, records []map[string]string, c Compression) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding shard: %w", err)
	}
	data, err = compress(data, c)
	if err != nil {
		return fmt.Errorf("compressing %s: %w", name, err)
	}
	return writeOutput(name, data)
}

func compress(data []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressGzip:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompressZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), nil
	}
	return data, nil
}

func writeOutput(name string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(name, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
