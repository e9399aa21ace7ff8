package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rubiojr/diplomatarium/pkg/config"
	"github.com/rubiojr/diplomatarium/pkg/log"
	"github.com/rubiojr/diplomatarium/pkg/search"
	"github.com/rubiojr/diplomatarium/pkg/shards"
	"github.com/rubiojr/diplomatarium/pkg/storage"
)

// engine bundles the corpus with the loader that fills it and the search
// service that reads it.
type engine struct {
	cfg    *config.Config
	corpus *storage.Corpus
	loader *shards.Loader
	search *search.SearchService
}

// loadConfig loads and validates the configuration file and applies its
// debug setting.
func loadConfig(configPath string) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Debug != "" {
		log.EnableDebugList(cfg.Debug)
	}
	return cfg, nil
}

func newEngine(cfg *config.Config) (*engine, error) {
	fetcher, err := shards.NewFetcher(cfg.Source, cfg.FetchTimeout.Duration)
	if err != nil {
		return nil, fmt.Errorf("opening source: %w", err)
	}
	corpus := storage.NewCorpus(cfg.IndexOptions())
	return &engine{
		cfg:    cfg,
		corpus: corpus,
		loader: shards.NewLoader(fetcher, corpus, shards.Options{
			Metadata: cfg.Metadata,
			Pattern:  cfg.ShardPattern,
		}),
		search: search.NewSearchService(corpus, search.Options{
			MinQueryLength: cfg.Search.MinQueryLength,
		}),
	}, nil
}

// loadAll loads every shard before returning, reporting progress on stderr
// when it is a terminal.
func (e *engine) loadAll(ctx context.Context) error {
	interactive := isTerminal(os.Stderr)
	return e.loader.Load(ctx, func(p shards.Progress) {
		if !interactive {
			return
		}
		fmt.Fprintf(os.Stderr, "\r\033[K%s", p.Message)
		if p.Done() {
			fmt.Fprintln(os.Stderr)
		}
	})
}

func isTerminal(f *os.File) bool {
	fileInfo, err := f.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
