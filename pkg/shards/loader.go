package shards

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rubiojr/diplomatarium/pkg/log"
	"github.com/rubiojr/diplomatarium/pkg/metrics"
	"github.com/rubiojr/diplomatarium/pkg/storage"
)

const (
	DefaultMetadata = "metadata.json"
	DefaultPattern  = "chunks/letters-chunk-%02d.json"
)

// State is the phase of a load.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

// Progress is reported after the description is read and after every shard
// attempt.
type Progress struct {
	State     State  `json:"state"`
	Loaded    int    `json:"loaded"`
	Failed    int    `json:"failed"`
	Total     int    `json:"total"`
	Documents int    `json:"documents"`
	Shard     int    `json:"shard"`
	Error     string `json:"error,omitempty"`
	Message   string `json:"message"`
}

// Done reports whether the load has finished, successfully or not.
func (p Progress) Done() bool {
	return p.State == StateReady || p.State == StateFailed
}

// StatusMessage is the user facing line for p.
func StatusMessage(p Progress) string {
	switch p.State {
	case StateFailed:
		return "Kunne ikke laste brevsamlingen. Prøv å laste siden på nytt."
	case StateReady:
		return fmt.Sprintf("%d brev lastet og klare for søk!", p.Documents)
	case StateLoading:
		if p.Loaded+p.Failed == 0 {
			return "Laster inn brevsamlingen…"
		}
		return fmt.Sprintf("Lastet %d av %d deler…", p.Loaded, p.Total)
	}
	return ""
}

// Options configures a Loader.
type Options struct {
	// Metadata is the name of the description file. Defaults to
	// DefaultMetadata.
	Metadata string
	// Pattern is the fmt pattern of shard names, taking the shard index.
	// Defaults to DefaultPattern.
	Pattern string
}

// Loader feeds the shards of a source into a corpus.
//
// Loading is append-only and resumable: every call to Load reads the
// description again, retries shards that failed before and continues with
// shards it has not seen. Calls are serialized.
type Loader struct {
	fetcher  Fetcher
	corpus   *storage.Corpus
	metadata string
	pattern  string
	logger   *log.Logger

	mu      sync.Mutex // serializes Load
	next    int
	pending []int

	stateMu sync.RWMutex
	last    Progress
}

// NewLoader creates a loader that reads through f and adds to c.
func NewLoader(f Fetcher, c *storage.Corpus, opts Options) *Loader {
	if opts.Metadata == "" {
		opts.Metadata = DefaultMetadata
	}
	if opts.Pattern == "" {
		opts.Pattern = DefaultPattern
	}
	return &Loader{
		fetcher:  f,
		corpus:   c,
		metadata: opts.Metadata,
		pattern:  opts.Pattern,
		logger:   log.ForService("shards"),
		last:     Progress{State: StateIdle},
	}
}

// ShardName returns the file name of shard i.
func (l *Loader) ShardName(i int) string {
	return fmt.Sprintf(l.pattern, i)
}

// Progress returns the most recent progress report.
func (l *Loader) Progress() Progress {
	l.stateMu.RLock()
	defer l.stateMu.RUnlock()
	return l.last
}

// Start runs Load in the background and streams its progress. The channel
// is closed when loading ends. Reports are dropped rather than blocking the
// load if the receiver falls behind; the final report is always delivered.
func (l *Loader) Start(ctx context.Context) <-chan Progress {
	ch := make(chan Progress, 16)
	go func() {
		defer close(ch)
		var final Progress
		err := l.Load(ctx, func(p Progress) {
			final = p
			if p.Done() {
				return
			}
			select {
			case ch <- p:
			default:
			}
		})
		if err != nil && !errors.Is(err, ErrDescription) {
			l.logger.Warnf("load stopped: %v", err)
		}
		select {
		case ch <- final:
		case <-ctx.Done():
		}
	}()
	return ch
}

// Load reads the description and loads every shard not loaded yet,
// notifying fn after each step. A description failure is fatal and returned
// wrapped in ErrDescription; shard failures are logged, counted and skipped.
// Cancelling ctx stops after the current shard.
func (l *Loader) Load(ctx context.Context, fn func(Progress)) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	notify := func(p Progress) {
		p.Message = StatusMessage(p)
		l.stateMu.Lock()
		l.last = p
		l.stateMu.Unlock()
		if fn != nil {
			fn(p)
		}
	}

	p := l.snapshot(StateLoading)
	notify(p)

	desc, err := l.describe(ctx)
	if err != nil {
		l.logger.Errorf("%v", err)
		p = l.snapshot(StateFailed)
		p.Error = err.Error()
		notify(p)
		return err
	}
	l.corpus.SetTotalShards(desc.Shards)
	l.logger.Infof("source describes %d shards (%d letters)", desc.Shards, desc.Letters)

	queue := append([]int(nil), l.pending...)
	for i := l.next; i < desc.Shards; i++ {
		queue = append(queue, i)
	}
	l.pending = nil

	for n, shard := range queue {
		if err := ctx.Err(); err != nil {
			// Unseen shards are picked up again through next.
			for _, s := range queue[n:] {
				if s < l.next {
					l.pending = append(l.pending, s)
				}
			}
			return err
		}
		if err := l.loadShard(ctx, shard); err != nil {
			l.logger.Errorf("shard %d failed: %v", shard, err)
			l.corpus.MarkShardFailed(shard, err)
			metrics.ShardsFailed.Inc()
			l.pending = append(l.pending, shard)
		}
		if shard >= l.next {
			l.next = shard + 1
		}
		p = l.snapshot(StateLoading)
		p.Shard = shard
		notify(p)
	}

	p = l.snapshot(StateReady)
	l.logger.Infof("%d letters ready (%d shards, %d failed)", p.Documents, p.Loaded, p.Failed)
	notify(p)
	return nil
}

func (l *Loader) describe(ctx context.Context) (Description, error) {
	data, err := l.fetcher.Fetch(ctx, l.metadata)
	if err != nil {
		return Description{}, fmt.Errorf("%w: fetching %s: %v", ErrDescription, l.metadata, err)
	}
	plain, err := Decompress(data)
	if err != nil {
		return Description{}, fmt.Errorf("%w: %v", ErrDescription, err)
	}
	return ParseDescription(plain)
}

func (l *Loader) loadShard(ctx context.Context, shard int) error {
	start := time.Now()
	name := l.ShardName(shard)
	data, err := l.fetcher.Fetch(ctx, name)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", name, err)
	}
	records, err := DecodeShard(data)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	added := l.corpus.AddShard(shard, records)
	metrics.ShardsLoaded.Inc()
	metrics.ShardLoadDuration.Observe(time.Since(start).Seconds())
	metrics.Documents.Set(float64(l.corpus.Len()))
	l.logger.Debugf("shard %d: %d letters in %s", shard, added, time.Since(start).Round(time.Millisecond))
	return nil
}

func (l *Loader) snapshot(state State) Progress {
	s := l.corpus.Stats()
	return Progress{
		State:     state,
		Loaded:    s.ShardsLoaded,
		Failed:    s.ShardsFailed,
		Total:     s.ShardsTotal,
		Documents: s.Documents,
		Shard:     -1,
	}
}
