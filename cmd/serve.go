package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rubiojr/diplomatarium/pkg/api"
	"github.com/rubiojr/diplomatarium/pkg/log"
	"github.com/rubiojr/diplomatarium/pkg/realtime"
	"github.com/rubiojr/diplomatarium/pkg/shards"
	"github.com/urfave/cli/v3"
)

// ServeCommand creates the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Load the letters in the background and serve the search API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Usage: "Address to listen on (overrides web.listen)",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Reload when the metadata file of a local source changes (overrides web.watch)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return serve(ctx, c.String("config"), c.String("listen"), c.Bool("watch"))
		},
	}
}

// serve starts the HTTP server and the background loader
func serve(ctx context.Context, configPath, listen string, watch bool) error {
	logger := log.ForService("serve")

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.Web.Listen = listen
	}
	watch = watch || cfg.Web.Watch

	e, err := newEngine(cfg)
	if err != nil {
		return err
	}

	hub := realtime.NewHub[shards.Progress](32)
	defer hub.Close()

	apiServer := api.NewServer(e.corpus, e.search, e.loader, hub, api.Options{
		PageSize:    cfg.Search.PageSize,
		Fields:      cfg.SearchFields(),
		ResultCache: cfg.Web.ResultCache,
		ResultTTL:   cfg.Web.ResultTTL.Duration,
	})

	mux := http.NewServeMux()
	apiServer.RegisterRoutes(mux)

	server := &http.Server{
		Addr:              cfg.Web.Listen,
		Handler:           api.CorsMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	loadCtx, cancelLoad := context.WithCancel(ctx)
	defer cancelLoad()

	// Reload requests coalesce: one pending request covers any number of
	// changes made while a load runs.
	reload := make(chan struct{}, 1)
	requestReload := func() {
		select {
		case reload <- struct{}{}:
		default:
		}
	}
	loadDone := make(chan struct{})
	fatal := make(chan struct{}, 1)
	go func() {
		defer close(loadDone)
		load := func(ctx context.Context) error {
			if err := e.loader.Load(ctx, hub.Broadcast); err != nil {
				return err
			}
			stats := e.corpus.Stats()
			logger.Infof("%d letters ready (%d of %d shards, %d failed)", stats.Documents, stats.ShardsLoaded, stats.ShardsTotal, stats.ShardsFailed)
			return nil
		}
		loadLoop(loadCtx, load, reload, fatal, logger)
	}()
	requestReload()

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("Starting server on http://%s", cfg.Web.Listen)
		logger.Infof("Available endpoints:")
		logger.Infof("  GET /api/search - Search the letters")
		logger.Infof("  GET /api/results/{id} - Page through a search result")
		logger.Infof("  GET /api/documents/{id} - Get one letter")
		logger.Infof("  GET /api/status - Load progress and corpus statistics")
		logger.Infof("  GET /api/progress - Load progress over a websocket")
		logger.Infof("  GET /health - Health check")
		logger.Infof("  GET /metrics - Prometheus metrics")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	var watcher *fsnotify.Watcher
	var watcherEvents <-chan fsnotify.Event
	var watcherErrors <-chan error
	metadataPath := cfg.MetadataPath()
	if watch {
		if metadataPath == "" {
			logger.Warnf("watching is only supported for local sources, ignoring")
		} else if watcher, err = fsnotify.NewWatcher(); err != nil {
			logger.Warnf("failed to create metadata watcher: %v", err)
		} else {
			defer func() {
				if err := watcher.Close(); err != nil {
					logger.Warnf("failed to close metadata watcher: %v", err)
				}
			}()
			if err := watcher.Add(metadataPath); err != nil {
				logger.Warnf("failed to watch %s: %v", metadataPath, err)
			} else {
				logger.Infof("Watching %s for new shards", metadataPath)
			}
			watcherEvents, watcherErrors = watcher.Events, watcher.Errors
		}
	}

	var refresh <-chan time.Time
	var ticker *time.Ticker
	if interval := cfg.Web.RefreshInterval.Duration; interval > 0 {
		ticker = time.NewTicker(interval)
		defer ticker.Stop()
		refresh = ticker.C
		logger.Infof("Checking %s for new shards every %s", cfg.Source, interval)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	for {
		select {
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				logger.Infof("Received SIGHUP, loading new shards")
				requestReload()
				continue
			}
			return shutdown(server, cancelLoad, loadDone, logger)
		case <-refresh:
			logger.Debugf("refresh interval elapsed, loading new shards")
			requestReload()
		case <-fatal:
			if ticker != nil {
				ticker.Stop()
				ticker, refresh = nil, nil
				logger.Warnf("shard description unavailable, periodic refresh stopped (send SIGHUP to retry)")
			}
		case <-ctx.Done():
			return shutdown(server, cancelLoad, loadDone, logger)
		case err := <-serverErr:
			cancelLoad()
			<-loadDone
			return fmt.Errorf("server failed: %w", err)
		case ev, ok := <-watcherEvents:
			if !ok {
				watcherEvents = nil
				continue
			}
			if metadataChanged(watcher, metadataPath, ev, logger) {
				logger.Infof("metadata changed (%s), loading new shards", ev.Op)
				requestReload()
			}
		case err, ok := <-watcherErrors:
			if !ok {
				watcherErrors = nil
				continue
			}
			logger.Warnf("metadata watcher error: %v", err)
		}
	}
}

// loadLoop runs load once per reload request until ctx is done. A failure
// to read the shard description is fatal: it is reported on fatal so the
// caller stops scheduling automatic reloads. Explicit requests still run.
func loadLoop(ctx context.Context, load func(context.Context) error, reload <-chan struct{}, fatal chan<- struct{}, logger *log.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-reload:
			err := load(ctx)
			switch {
			case errors.Is(err, context.Canceled):
				return
			case errors.Is(err, shards.ErrDescription):
				logger.Errorf("loading letters: %v", err)
				select {
				case fatal <- struct{}{}:
				default:
				}
			case err != nil:
				logger.Errorf("loading letters: %v", err)
			}
		}
	}
}

// metadataChanged reports whether ev should trigger a reload. Editors and
// export scripts often replace the file atomically, so after a rename or
// remove the new file is watched again.
func metadataChanged(watcher *fsnotify.Watcher, path string, ev fsnotify.Event, logger *log.Logger) bool {
	if !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove)) {
		return false
	}
	if ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove) {
		// Small delay to ensure the new file is fully written
		time.Sleep(200 * time.Millisecond)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			logger.Warnf("metadata file was removed and not replaced, keeping loaded letters")
			return false
		}
		if err := watcher.Add(path); err != nil {
			logger.Warnf("failed to re-add %s to watcher: %v", path, err)
		}
		return true
	}
	// Add a small delay to ensure file write is complete
	time.Sleep(100 * time.Millisecond)
	return true
}

func shutdown(server *http.Server, cancelLoad context.CancelFunc, loadDone <-chan struct{}, logger *log.Logger) error {
	logger.Infof("Shutting down...")
	cancelLoad()
	<-loadDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
