package loader

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fruitcakej/GuardianNews/internal/cache"
	"github.com/fruitcakej/GuardianNews/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	calls    atomic.Int32
	articles []cache.Article
	err      error
	block    chan struct{}
}

func (f *fakeFetcher) Fetch(ctx context.Context, req query.Request) ([]cache.Article, error) {
	f.calls.Add(1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.articles, nil
}

type fakeSnapshot struct {
	mu     sync.Mutex
	stored [][]cache.Article
}

func (s *fakeSnapshot) ReplaceArticles(articles []cache.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stored = append(s.stored, articles)
	return nil
}

var req = query.NewRequest("10", "newest", nil, []string{"world"})

func TestLoadDeliversArticles(t *testing.T) {
	f := &fakeFetcher{articles: []cache.Article{{ID: "a"}, {ID: "b"}}}
	snap := &fakeSnapshot{}
	l := New(f, WithSnapshot(snap))

	res := l.Load(context.Background(), req)

	require.NoError(t, res.Err)
	assert.Len(t, res.Articles, 2)
	assert.True(t, l.Current(res))
	assert.Equal(t, int32(1), f.calls.Load())
	require.Len(t, snap.stored, 1)
	assert.Len(t, snap.stored[0], 2)
}

func TestLoadFailureYieldsEmptyList(t *testing.T) {
	f := &fakeFetcher{err: errors.New("network down")}
	snap := &fakeSnapshot{}
	l := New(f, WithSnapshot(snap))

	res := l.Load(context.Background(), req)

	assert.Error(t, res.Err)
	assert.Empty(t, res.Articles)
	assert.Empty(t, snap.stored, "failed fetch must not touch the snapshot")
}

func TestNewerLoadSupersedesOlder(t *testing.T) {
	f := &fakeFetcher{block: make(chan struct{}), articles: []cache.Article{{ID: "a"}}}
	l := New(f)

	first := make(chan Result, 1)
	go func() { first <- l.Load(context.Background(), req) }()
	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	// Second load cancels the first; unblock it afterwards.
	second := make(chan Result, 1)
	go func() { second <- l.Load(context.Background(), req) }()

	old := <-first
	assert.ErrorIs(t, old.Err, context.Canceled)
	assert.False(t, l.Current(old))

	close(f.block)
	latest := <-second
	require.NoError(t, latest.Err)
	assert.True(t, l.Current(latest))
	assert.Greater(t, latest.Generation, old.Generation)
}

func TestResetInvalidatesPending(t *testing.T) {
	f := &fakeFetcher{block: make(chan struct{})}
	l := New(f)

	done := make(chan Result, 1)
	go func() { done <- l.Load(context.Background(), req) }()
	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	l.Reset()
	res := <-done

	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.False(t, l.Current(res))
}

func TestResetAfterCompletionMakesResultStale(t *testing.T) {
	l := New(&fakeFetcher{})
	res := l.Load(context.Background(), req)
	require.True(t, l.Current(res))

	l.Reset()
	assert.False(t, l.Current(res))
}
