package guardian

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"github.com/fruitcakej/GuardianNews/internal/cache"
	"github.com/microcosm-cc/bluemonday"
)

// ErrMalformed reports a body that is not a content API search response.
var ErrMalformed = errors.New("malformed search response")

// APIError is returned when the API answers with an error status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return "guardian api: " + e.Message
	}
	return fmt.Sprintf("guardian api: %d %s", e.StatusCode, e.Message)
}

type searchResponse struct {
	Response *struct {
		Status  string   `json:"status"`
		Message string   `json:"message"`
		Results []result `json:"results"`
	} `json:"response"`
	// Gateway errors such as a rejected key arrive without the envelope.
	Message string `json:"message"`
}

type result struct {
	ID                 string `json:"id"`
	SectionName        string `json:"sectionName"`
	WebPublicationDate string `json:"webPublicationDate"`
	WebTitle           string `json:"webTitle"`
	WebURL             string `json:"webUrl"`
	Fields             struct {
		Headline  string `json:"headline"`
		Thumbnail string `json:"thumbnail"`
		TrailText string `json:"trailText"`
		Byline    string `json:"byline"`
	} `json:"fields"`
	Tags []struct {
		Type     string `json:"type"`
		WebTitle string `json:"webTitle"`
	} `json:"tags"`
}

var strict = bluemonday.StrictPolicy()

// Parse decodes a search response body into articles, in response order.
func Parse(r io.Reader) ([]cache.Article, error) {
	var resp searchResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if resp.Response == nil {
		if resp.Message != "" {
			return nil, &APIError{Message: resp.Message}
		}
		return nil, fmt.Errorf("%w: missing response object", ErrMalformed)
	}
	if resp.Response.Status != "ok" {
		msg := resp.Response.Message
		if msg == "" {
			msg = "status " + resp.Response.Status
		}
		return nil, &APIError{Message: msg}
	}

	articles := make([]cache.Article, 0, len(resp.Response.Results))
	for _, res := range resp.Response.Results {
		articles = append(articles, toArticle(res))
	}
	return articles, nil
}

func toArticle(res result) cache.Article {
	title := res.Fields.Headline
	if title == "" {
		title = res.WebTitle
	}

	var published time.Time
	if t, err := time.Parse(time.RFC3339, res.WebPublicationDate); err == nil {
		published = t
	}

	return cache.Article{
		ID:        res.ID,
		Title:     plainText(title),
		Byline:    byline(res),
		Section:   res.SectionName,
		Published: published,
		Thumbnail: res.Fields.Thumbnail,
		WebURL:    res.WebURL,
		TrailText: plainText(res.Fields.TrailText),
	}
}

// byline prefers contributor tags and falls back to the byline field.
func byline(res result) string {
	var names []string
	for _, tag := range res.Tags {
		if tag.Type != "" && tag.Type != "contributor" {
			continue
		}
		if tag.WebTitle != "" {
			names = append(names, tag.WebTitle)
		}
	}
	if len(names) > 0 {
		return strings.Join(names, ", ")
	}
	return plainText(res.Fields.Byline)
}

func plainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(html.UnescapeString(strict.Sanitize(s))), " ")
}
