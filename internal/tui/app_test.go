package tui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fruitcakej/GuardianNews/internal/browser"
	"github.com/fruitcakej/GuardianNews/internal/cache"
	"github.com/fruitcakej/GuardianNews/internal/config"
	"github.com/fruitcakej/GuardianNews/internal/loader"
	"github.com/fruitcakej/GuardianNews/internal/prefs"
	"github.com/fruitcakej/GuardianNews/internal/query"
)

type fakeFetcher struct {
	mu       sync.Mutex
	calls    int
	requests []query.Request
	articles []cache.Article
	err      error
}

func (f *fakeFetcher) Fetch(_ context.Context, req query.Request) ([]cache.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.articles, nil
}

func (f *fakeFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeFetcher) last() query.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func testConfig() *config.Config {
	return &config.Config{
		DefaultSections: []string{"world", "technology"},
		Sections: []config.Option{
			{Name: "World", Value: "world"},
			{Name: "Technology", Value: "technology"},
			{Name: "Science", Value: "science"},
		},
		PageSizes: []int{5, 10, 20},
		OrderBy: []config.Option{
			{Name: "Newest", Value: "newest"},
			{Name: "Oldest", Value: "oldest"},
		},
	}
}

type harness struct {
	app     *App
	fetcher *fakeFetcher
	store   *prefs.Store
	inbox   []tea.Msg
}

func newHarness(t *testing.T, online bool) *harness {
	t.Helper()
	cfg := testConfig()
	store, err := prefs.Open(filepath.Join(t.TempDir(), "prefs.yaml"), prefs.Defaults{
		PageSize:     query.DefaultPageSize,
		OrderBy:      query.DefaultOrderBy,
		Sections:     cfg.DefaultSections,
		SectionLabel: cfg.SectionLabel,
		OrderLabel:   cfg.OrderLabel,
	}, nil)
	require.NoError(t, err)

	h := &harness{
		fetcher: &fakeFetcher{articles: []cache.Article{
			{ID: "1", Title: "Summit ends without deal", Section: "world", WebURL: "https://www.theguardian.com/1"},
			{ID: "2", Title: "Chip exports tighten", Section: "technology", WebURL: "https://www.theguardian.com/2"},
		}},
		store: store,
	}
	h.app = NewApp(RunOpts{
		Cfg:    cfg,
		Prefs:  store,
		Loader: loader.New(h.fetcher),
		Opener: browser.New("true"),
		Online: online,
	})
	h.app.Listen(func(msg tea.Msg) { h.inbox = append(h.inbox, msg) })
	h.app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return h
}

// drain executes cmd and any batched commands it expands to.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, drain(c)...)
		}
		return out
	case nil:
		return nil
	default:
		return []tea.Msg{msg}
	}
}

// run feeds load results from cmd back into the app.
func (h *harness) run(cmd tea.Cmd) {
	for _, msg := range drain(cmd) {
		if _, ok := msg.(articlesLoadedMsg); ok {
			h.app.Update(msg)
		}
	}
}

// deliver hands queued preference messages to the app, as the program would.
func (h *harness) deliver() {
	inbox := h.inbox
	h.inbox = nil
	for _, msg := range inbox {
		_, cmd := h.app.Update(msg)
		h.run(cmd)
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInitLoadsDefaults(t *testing.T) {
	h := newHarness(t, true)
	h.run(h.app.Init())

	require.Equal(t, 1, h.fetcher.count())
	assert.Equal(t, []string{"world", "technology"}, h.fetcher.last().Sections)
	assert.Equal(t, "10", h.fetcher.last().PageSize)
	assert.Equal(t, 2, h.app.articles.Count())
	assert.False(t, h.app.loading)
}

func TestPreferenceChangeRefetchesOnce(t *testing.T) {
	h := newHarness(t, true)
	h.run(h.app.Init())

	changed, err := h.store.SetPageSize("20")
	require.NoError(t, err)
	require.True(t, changed)
	require.Len(t, h.inbox, 1)

	h.deliver()
	assert.Equal(t, 2, h.fetcher.count())
	assert.Equal(t, "20", h.fetcher.last().PageSize)

	changed, err = h.store.SetPageSize("20")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Empty(t, h.inbox)
	assert.Equal(t, 2, h.fetcher.count())
}

func TestMultiKeyResetFetchesOnce(t *testing.T) {
	h := newHarness(t, true)
	h.run(h.app.Init())

	_, err := h.store.SetPageSize("20")
	require.NoError(t, err)
	_, err = h.store.SetOrderBy("oldest")
	require.NoError(t, err)
	h.deliver()
	before := h.fetcher.count()

	_, err = h.store.Reset()
	require.NoError(t, err)
	require.Len(t, h.inbox, 1, "one message for both keys")

	h.deliver()
	assert.Equal(t, before+1, h.fetcher.count())
	assert.Equal(t, "10", h.fetcher.last().PageSize)
	assert.Equal(t, "newest", h.fetcher.last().OrderBy)
}

func TestChangeToDefaultValueRefetches(t *testing.T) {
	h := newHarness(t, true)
	h.run(h.app.Init())

	// 10 is already the effective page size, but it was not stored
	changed, err := h.store.SetPageSize("10")
	require.NoError(t, err)
	require.True(t, changed)
	require.Len(t, h.inbox, 1)

	h.deliver()
	assert.Equal(t, 2, h.fetcher.count())
	assert.Equal(t, 2, h.app.articles.Count())
}

func TestSettingsScreenFetchesOncePerEdit(t *testing.T) {
	h := newHarness(t, true)
	h.run(h.app.Init())

	h.app.Update(key("s"))
	require.Equal(t, modeSettings, h.app.mode)

	// page size row: 10 -> 20
	_, cmd := h.app.Update(key("right"))
	assert.Nil(t, cmd)
	assert.Equal(t, "20", h.store.Values().PageSize)

	// down twice to the first section, toggle it
	h.app.Update(key("down"))
	h.app.Update(key("down"))
	h.app.Update(key(" "))
	assert.Equal(t, []string{"world"}, h.store.Values().Sections)

	require.Len(t, h.inbox, 2)
	h.deliver()
	assert.Equal(t, 3, h.fetcher.count())
	assert.Equal(t, []string{"world"}, h.fetcher.last().Sections)
	assert.Equal(t, "20", h.fetcher.last().PageSize)
}

func ticks(msgs []tea.Msg) (out []spinner.TickMsg) {
	for _, msg := range msgs {
		if tick, ok := msg.(spinner.TickMsg); ok {
			out = append(out, tick)
		}
	}
	return out
}

func TestRestartWhileLoadingKeepsOneSpinnerChain(t *testing.T) {
	h := newHarness(t, true)
	first := drain(h.app.Init())
	require.Len(t, ticks(first), 1)
	require.True(t, h.app.loading)

	_, err := h.store.SetPageSize("20")
	require.NoError(t, err)
	require.Len(t, h.inbox, 1)
	_, cmd := h.app.Update(h.inbox[0])
	h.inbox = nil
	second := drain(cmd)
	assert.Empty(t, ticks(second), "a load already ticks the spinner")

	for _, msg := range second {
		h.app.Update(msg)
	}
	require.False(t, h.app.loading)

	// the running chain ends on its next tick
	_, cmd = h.app.Update(ticks(first)[0])
	assert.Nil(t, cmd)

	_, err = h.store.SetPageSize("5")
	require.NoError(t, err)
	_, cmd = h.app.Update(h.inbox[0])
	assert.Len(t, ticks(drain(cmd)), 1, "a new load starts a new chain")
}

func TestStaleResultIsDiscarded(t *testing.T) {
	h := newHarness(t, true)
	msgs := drain(h.app.Init())

	h.app.loader.Reset()
	for _, msg := range msgs {
		h.app.Update(msg)
	}

	assert.Equal(t, 0, h.app.articles.Count())
	assert.True(t, h.app.loading)
}

func TestRefreshKeyReloads(t *testing.T) {
	h := newHarness(t, true)
	h.run(h.app.Init())

	_, cmd := h.app.Update(key("r"))
	require.NotNil(t, cmd)
	assert.Equal(t, 0, h.app.articles.Count(), "refresh clears the list before loading")
	h.run(cmd)

	assert.Equal(t, 2, h.fetcher.count())
	assert.Equal(t, 2, h.app.articles.Count())
}

func TestOfflineShowsMessageAndNeverFetches(t *testing.T) {
	h := newHarness(t, false)
	assert.Nil(t, h.app.Init())

	_, err := h.store.SetPageSize("5")
	require.NoError(t, err)
	h.deliver()

	_, cmd := h.app.Update(key("r"))
	assert.Nil(t, cmd)
	assert.Equal(t, 0, h.fetcher.count())
	assert.Contains(t, h.app.View(), "No internet connection.")
}

func TestFailedFetchShowsNoData(t *testing.T) {
	h := newHarness(t, true)
	h.fetcher.err = errors.New("502 Bad Gateway")
	h.run(h.app.Init())

	assert.Equal(t, 1, h.fetcher.count())
	assert.Equal(t, 0, h.app.articles.Count())
	assert.Contains(t, h.app.View(), "No data")
}

func TestSearchFiltersWithoutRefetch(t *testing.T) {
	h := newHarness(t, true)
	h.run(h.app.Init())

	h.app.Update(key("/"))
	for _, r := range "chip" {
		h.app.Update(key(string(r)))
	}
	h.app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	visible := h.app.visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "2", visible[0].ID)
	assert.Equal(t, 1, h.fetcher.count())
	assert.True(t, strings.Contains(h.app.View(), "Chip exports tighten"))
}

func TestCycle(t *testing.T) {
	sizes := []int{5, 10, 20}
	assert.Equal(t, 20, cycle(sizes, 10, 1))
	assert.Equal(t, 5, cycle(sizes, 20, 1))
	assert.Equal(t, 20, cycle(sizes, 5, -1))
	assert.Equal(t, 5, cycle(sizes, 7, 1))
	assert.Equal(t, 20, cycle(sizes, 7, -1))
	assert.Equal(t, "x", cycle([]string{}, "x", 1))
}
