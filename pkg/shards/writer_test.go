package shards

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rubiojr/diplomatarium/pkg/storage"
	"github.com/rubiojr/diplomatarium/pkg/textindex"
)

const exportCSV = "\ufeffSDNID,DN_ref,sammendrag,DN_sted,date_start\n" +
	"1,DN00100001,om skatt,Bergen,1350\n" +
	"2,DN00100002,om jord,Oslo,1351\n" +
	"3,DN00100003,\"om skatt, og jord\",Oslo,1420\n"

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		c    Compression
	}{
		{"plain", CompressNone},
		{"gzip", CompressGzip},
		{"zstd", CompressZstd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			desc, err := Split(strings.NewReader(exportCSV), dir, SplitOptions{ShardSize: 2, Compression: tt.c})
			if err != nil {
				t.Fatalf("Split: %v", err)
			}
			if desc.Shards != 2 || desc.Letters != 3 || desc.ShardSize != 2 {
				t.Errorf("unexpected description: %+v", desc)
			}
			wantFields := []string{"\ufeffSDNID", "DN_ref", "sammendrag", "DN_sted", "date_start"}
			if !reflect.DeepEqual(desc.Fields, wantFields) {
				t.Errorf("Fields = %q", desc.Fields)
			}

			data, err := os.ReadFile(filepath.Join(dir, DefaultMetadata))
			if err != nil {
				t.Fatal(err)
			}
			parsed, err := ParseDescription(data)
			if err != nil || parsed.Shards != 2 {
				t.Fatalf("written description: %+v, %v", parsed, err)
			}

			f, err := NewFetcher(dir, 0)
			if err != nil {
				t.Fatal(err)
			}
			c := storage.NewCorpus(textindex.Options{})
			if err := NewLoader(f, c, Options{}).Load(context.Background(), nil); err != nil {
				t.Fatalf("Load: %v", err)
			}
			if c.Len() != 3 {
				t.Fatalf("loaded %d documents, want 3", c.Len())
			}
			for _, d := range c.Documents() {
				if d.SDNID == "" || d.DNRef == "" {
					t.Errorf("references lost in round trip: %+v", d)
				}
			}
		})
	}
}

func TestSplitEmpty(t *testing.T) {
	dir := t.TempDir()
	desc, err := Split(strings.NewReader(""), dir, SplitOptions{})
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if desc.Shards != 0 || desc.Letters != 0 || desc.ShardSize != DefaultShardSize {
		t.Errorf("unexpected description: %+v", desc)
	}
	if _, err := os.Stat(filepath.Join(dir, DefaultMetadata)); err != nil {
		t.Errorf("description should be written: %v", err)
	}
}

func TestSplitShortRows(t *testing.T) {
	dir := t.TempDir()
	desc, err := Split(strings.NewReader("DN_ref,sammendrag\nA\n"), dir, SplitOptions{})
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "chunks", "letters-chunk-00.json"))
	if err != nil {
		t.Fatal(err)
	}
	records, err := DecodeShard(data)
	if err != nil {
		t.Fatal(err)
	}
	if desc.Letters != 1 || records[0]["sammendrag"] != "" {
		t.Errorf("missing cells should be empty strings: %v", records)
	}
}

func TestParseCompression(t *testing.T) {
	for in, want := range map[string]Compression{"": CompressNone, "none": CompressNone, "gzip": CompressGzip, "zstd": CompressZstd} {
		got, err := ParseCompression(in)
		if err != nil || got != want {
			t.Errorf("ParseCompression(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseCompression("brotli"); err == nil {
		t.Error("expected error for unknown compression")
	}
}
