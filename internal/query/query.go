// Package query turns stored preferences into Guardian content API requests.
package query

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

const (
	DefaultPageSize = "10"
	DefaultOrderBy  = "newest"

	// SectionDelimiter joins section tags; the API reads it as OR.
	SectionDelimiter = "|"
)

// Request holds preference values after default fallback.
type Request struct {
	Sections []string
	PageSize string
	OrderBy  string
}

// NewRequest resolves raw preference values. An empty selection falls back
// to defaults in their given order; a selection is a set and is sorted.
func NewRequest(pageSize, orderBy string, selected, defaults []string) Request {
	sections := normalize(selected)
	if len(sections) == 0 {
		sections = append([]string(nil), defaults...)
	} else {
		sort.Strings(sections)
	}
	if pageSize = strings.TrimSpace(pageSize); pageSize == "" {
		pageSize = DefaultPageSize
	}
	if orderBy = strings.TrimSpace(orderBy); orderBy == "" {
		orderBy = DefaultOrderBy
	}
	return Request{Sections: sections, PageSize: pageSize, OrderBy: orderBy}
}

// Key identifies requests that would produce the same URL.
func (r Request) Key() string {
	return strings.Join(r.Sections, SectionDelimiter) + "#" + r.PageSize + "#" + r.OrderBy
}

func normalize(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// Endpoint is the static half of a query: where to send it and which
// response-shape flags to ask for.
type Endpoint struct {
	BaseURL    string
	APIKey     string
	ShowFields string
	ShowTags   string
}

// URL builds the request URL. Parameters keep a fixed order so the same
// preferences always yield the same string.
func (e Endpoint) URL(r Request) (string, error) {
	u, err := url.Parse(e.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return "", fmt.Errorf("endpoint %q is not an absolute http(s) URL", e.BaseURL)
	}

	params := [][2]string{
		{"section", strings.Join(r.Sections, SectionDelimiter)},
		{"format", "json"},
		{"show-fields", e.ShowFields},
		{"show-tags", e.ShowTags},
		{"page-size", r.PageSize},
		{"order-by", r.OrderBy},
		{"api-key", e.APIKey},
	}

	var b strings.Builder
	for _, p := range params {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p[0]))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p[1]))
	}
	u.RawQuery = b.String()
	return u.String(), nil
}
