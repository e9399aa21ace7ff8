package shards

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rubiojr/diplomatarium/pkg/log"
)

// Fetcher reads a file of the published corpus by its relative name.
type Fetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// NewFetcher returns the fetcher for source: an HTTPFetcher for http and
// https URLs, a DirFetcher otherwise. timeout bounds every HTTP request; zero
// disables it.
func NewFetcher(source string, timeout time.Duration) (Fetcher, error) {
	if source == "" {
		return nil, fmt.Errorf("empty source")
	}
	if IsRemote(source) {
		base, err := url.Parse(source)
		if err != nil {
			return nil, fmt.Errorf("parsing source URL: %w", err)
		}
		return &HTTPFetcher{Base: base, Client: &http.Client{Timeout: timeout}}, nil
	}
	info, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("opening source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source %s is not a directory", source)
	}
	return &DirFetcher{Root: source}, nil
}

// IsRemote reports whether source names an HTTP location.
func IsRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// HTTPFetcher fetches files relative to a base URL.
type HTTPFetcher struct {
	Base   *url.URL
	Client *http.Client
}

// Fetch performs a GET for name below the base URL. Any status other than
// 200 is an error.
func (f *HTTPFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	u := *f.Base
	u.Path = path.Join("/", u.Path, name)

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, err
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.ForService("shards").Warnf("closing response body: %v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d on %s", resp.StatusCode, u.String())
	}
	return io.ReadAll(resp.Body)
}

// DirFetcher reads files below a local directory.
type DirFetcher struct {
	Root string
}

// Fetch reads name below the root. Names may not escape the root.
func (f *DirFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean := filepath.Clean(filepath.FromSlash("/" + name))
	return os.ReadFile(filepath.Join(f.Root, clean))
}
