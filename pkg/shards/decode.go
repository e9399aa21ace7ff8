package shards

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/rubiojr/diplomatarium/pkg/core"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

var zstdDecoder = sync.OnceValues(func() (*zstd.Decoder, error) {
	return zstd.NewReader(nil)
})

// Decompress returns data with gzip or zstd compression removed. The format
// is recognised by its magic bytes; anything else is returned unchanged.
func Decompress(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("opening gzip stream: %w", err)
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("decompressing gzip: %w", err)
		}
		return out, nil
	case bytes.HasPrefix(data, zstdMagic):
		dec, err := zstdDecoder()
		if err != nil {
			return nil, fmt.Errorf("creating zstd decoder: %w", err)
		}
		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("decompressing zstd: %w", err)
		}
		return out, nil
	}
	return data, nil
}

// DecodeShard parses a shard payload: a JSON array of flat objects,
// optionally compressed. Numbers are kept as json.Number so long reference
// codes survive intact.
func DecodeShard(data []byte) ([]core.RawRecord, error) {
	plain, err := Decompress(data)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(plain))
	dec.UseNumber()

	var records []core.RawRecord
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding shard: %w", err)
	}
	return records, nil
}
