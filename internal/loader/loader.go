// Package loader runs article fetches one at a time on behalf of the UI.
//
// Each Load supersedes the previous one: the older fetch is cancelled and
// its result, if it still arrives, carries a stale generation that the UI
// discards. Results are never retried.
package loader

import (
	"context"
	"log/slog"
	"sync"

	"github.com/fruitcakej/GuardianNews/internal/cache"
	"github.com/fruitcakej/GuardianNews/internal/logging"
	"github.com/fruitcakej/GuardianNews/internal/query"
)

// Fetcher retrieves the article list for one request.
type Fetcher interface {
	Fetch(ctx context.Context, req query.Request) ([]cache.Article, error)
}

// Snapshotter keeps a copy of the last successful list.
type Snapshotter interface {
	ReplaceArticles(articles []cache.Article) error
}

// Result is delivered once per Load. Articles is empty when Err is set.
type Result struct {
	Generation uint64
	Request    query.Request
	Articles   []cache.Article
	Err        error
}

type Option func(*Loader)

func WithSnapshot(s Snapshotter) Option {
	return func(l *Loader) { l.snapshot = s }
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

type Loader struct {
	fetcher  Fetcher
	snapshot Snapshotter
	logger   *slog.Logger

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

func New(f Fetcher, opts ...Option) *Loader {
	l := &Loader{
		fetcher: f,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load cancels any in-flight fetch, runs one for req and returns its result.
func (l *Loader) Load(ctx context.Context, req query.Request) Result {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	gen := l.gen
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		if l.gen == gen {
			l.cancel = nil
		}
		l.mu.Unlock()
		cancel()
	}()

	l.logger.Debug("loading articles", "generation", gen, "sections", req.Sections, "page_size", req.PageSize, "order_by", req.OrderBy)

	articles, err := l.fetcher.Fetch(ctx, req)
	if err != nil {
		l.logger.Warn("article fetch failed", "generation", gen, "error", err)
		return Result{Generation: gen, Request: req, Err: err}
	}

	if l.snapshot != nil && l.isCurrent(gen) {
		if err := l.snapshot.ReplaceArticles(articles); err != nil {
			l.logger.Warn("storing snapshot failed", "error", err)
		}
	}

	l.logger.Info("articles loaded", "generation", gen, "count", len(articles))
	return Result{Generation: gen, Request: req, Articles: articles}
}

// Reset cancels pending work and invalidates every outstanding result.
func (l *Loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.gen++
}

// Current reports whether r belongs to the most recent Load.
func (l *Loader) Current(r Result) bool {
	return l.isCurrent(r.Generation)
}

func (l *Loader) isCurrent(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return gen == l.gen
}
