// Package feed reads Guardian section RSS feeds as a keyless alternative to
// the content API.
package feed

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"html"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fruitcakej/GuardianNews/internal/cache"
	"github.com/fruitcakej/GuardianNews/internal/query"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
)

type Fetcher struct {
	base   string
	client *http.Client
	label  func(section string) string
}

// NewFetcher reads <base>/<section>/rss. label maps a section value to the
// name stored on each article; nil keeps the value.
func NewFetcher(base string, client *http.Client, label func(string) string) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if label == nil {
		label = func(s string) string { return s }
	}
	return &Fetcher{
		base:   strings.TrimRight(base, "/"),
		client: client,
		label:  label,
	}
}

func (f *Fetcher) sectionURL(section string) string {
	return f.base + "/" + section + "/rss"
}

func (f *Fetcher) fetchSection(ctx context.Context, section string) ([]cache.Article, error) {
	parser := gofeed.NewParser()
	parser.Client = f.client
	parser.UserAgent = "guardiannews"

	feed, err := parser.ParseURLWithContext(f.sectionURL(section), ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s feed: %w", section, err)
	}

	now := time.Now()
	articles := make([]cache.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}
		var pub time.Time
		if item.PublishedParsed != nil {
			pub = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			pub = *item.UpdatedParsed
		}

		articles = append(articles, cache.Article{
			ID:        articleID(item.Link),
			Title:     stripHTML(item.Title),
			Byline:    authors(item),
			Section:   f.label(section),
			Published: pub,
			Thumbnail: thumbnail(item),
			WebURL:    item.Link,
			TrailText: truncate(stripHTML(item.Description), 300),
			FetchedAt: now,
		})
	}
	return articles, nil
}

// Fetch reads every requested section concurrently. Any failing section
// fails the whole fetch.
func (f *Fetcher) Fetch(ctx context.Context, req query.Request) ([]cache.Article, error) {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		errs    []error
		results = make([][]cache.Article, len(req.Sections))
	)

	for i, section := range req.Sections {
		wg.Add(1)
		go func(i int, s string) {
			defer wg.Done()
			articles, err := f.fetchSection(ctx, s)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			results[i] = articles
		}(i, section)
	}
	wg.Wait()

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return merge(results, req.OrderBy, pageSize(req.PageSize)), nil
}

// merge interleaves per-section results, drops duplicate links, orders by
// publication date for newest/oldest and truncates to limit.
func merge(sections [][]cache.Article, orderBy string, limit int) []cache.Article {
	seen := make(map[string]bool)
	var out []cache.Article
	for i := 0; ; i++ {
		progressed := false
		for _, list := range sections {
			if i >= len(list) {
				continue
			}
			progressed = true
			if seen[list[i].ID] {
				continue
			}
			seen[list[i].ID] = true
			out = append(out, list[i])
		}
		if !progressed {
			break
		}
	}

	switch orderBy {
	case "newest":
		sort.SliceStable(out, func(a, b int) bool { return out[a].Published.After(out[b].Published) })
	case "oldest":
		sort.SliceStable(out, func(a, b int) bool { return out[a].Published.Before(out[b].Published) })
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func pageSize(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		n, _ = strconv.Atoi(query.DefaultPageSize)
	}
	return n
}

func authors(item *gofeed.Item) string {
	var names []string
	for _, p := range item.Authors {
		if p != nil && p.Name != "" {
			names = append(names, p.Name)
		}
	}
	if len(names) == 0 && item.DublinCoreExt != nil {
		names = append(names, item.DublinCoreExt.Creator...)
	}
	return strings.Join(names, ", ")
}

// thumbnail picks the widest media:content image, falling back to the
// item image.
func thumbnail(item *gofeed.Item) string {
	best, bestWidth := "", -1
	for _, ext := range item.Extensions["media"]["content"] {
		u := ext.Attrs["url"]
		if u == "" {
			continue
		}
		w, _ := strconv.Atoi(ext.Attrs["width"])
		if w > bestWidth {
			best, bestWidth = u, w
		}
	}
	if best != "" {
		return best
	}
	if item.Image != nil {
		return item.Image.URL
	}
	return ""
}

func articleID(link string) string {
	h := sha256.Sum256([]byte(link))
	return fmt.Sprintf("%x", h[:16])
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

var strict = bluemonday.StrictPolicy()

func stripHTML(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(strict.Sanitize(s))), " ")
}
