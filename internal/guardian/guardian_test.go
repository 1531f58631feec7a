package guardian

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fruitcakej/GuardianNews/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePayload = `{
  "response": {
    "status": "ok",
    "userTier": "developer",
    "total": 2,
    "results": [
      {
        "id": "world/2024/mar/01/example-story",
        "type": "article",
        "sectionId": "world",
        "sectionName": "World news",
        "webPublicationDate": "2024-03-01T10:15:00Z",
        "webTitle": "Example story | World news",
        "webUrl": "https://www.theguardian.com/world/2024/mar/01/example-story",
        "fields": {
          "headline": "Example story",
          "thumbnail": "https://media.guim.co.uk/example/500.jpg",
          "trailText": "<strong>Leaders</strong> meet &amp; agree on   next steps"
        },
        "tags": [
          {"id": "profile/jane-doe", "type": "contributor", "webTitle": "Jane Doe"},
          {"id": "profile/john-roe", "type": "contributor", "webTitle": "John Roe"}
        ]
      },
      {
        "id": "technology/2024/mar/02/no-fields",
        "sectionName": "Technology",
        "webPublicationDate": "not a date",
        "webTitle": "Fallback title",
        "webUrl": "https://www.theguardian.com/technology/2024/mar/02/no-fields",
        "fields": {"byline": "Agency staff"}
      }
    ]
  }
}`

func TestParseMapsFields(t *testing.T) {
	articles, err := Parse(strings.NewReader(samplePayload))
	require.NoError(t, err)
	require.Len(t, articles, 2)

	a := articles[0]
	assert.Equal(t, "world/2024/mar/01/example-story", a.ID)
	assert.Equal(t, "Example story", a.Title)
	assert.Equal(t, "Jane Doe, John Roe", a.Byline)
	assert.Equal(t, "World news", a.Section)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC), a.Published.UTC())
	assert.Equal(t, "https://media.guim.co.uk/example/500.jpg", a.Thumbnail)
	assert.Equal(t, "https://www.theguardian.com/world/2024/mar/01/example-story", a.WebURL)
	assert.Equal(t, "Leaders meet & agree on next steps", a.TrailText)

	b := articles[1]
	assert.Equal(t, "Fallback title", b.Title, "webTitle used when headline is absent")
	assert.Equal(t, "Agency staff", b.Byline, "byline field used when no contributor tags")
	assert.True(t, b.Published.IsZero(), "unparseable date stays zero")
	assert.Empty(t, b.Thumbnail)
}

func TestParseEmptyResults(t *testing.T) {
	articles, err := Parse(strings.NewReader(`{"response":{"status":"ok","results":[]}}`))
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		malformed bool
		message   string
	}{
		{name: "not json", body: "<html>oops</html>", malformed: true},
		{name: "no envelope", body: `{"results":[]}`, malformed: true},
		{name: "gateway message", body: `{"message":"Invalid authentication credentials"}`, message: "Invalid authentication credentials"},
		{name: "error status", body: `{"response":{"status":"error","message":"requested page size 500 is out of range"}}`, message: "requested page size 500 is out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.body))
			require.Error(t, err)
			if tt.malformed {
				assert.ErrorIs(t, err, ErrMalformed)
				return
			}
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(Options{
		Endpoint: query.Endpoint{
			BaseURL:    srv.URL + "/search",
			APIKey:     "test",
			ShowFields: "headline,thumbnail",
			ShowTags:   "contributor",
		},
		Timeout:           5 * time.Second,
		RequestsPerSecond: 1000,
		HTTPClient:        srv.Client(),
	})
}

func TestClientFetch(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(samplePayload))
	}))
	defer srv.Close()

	c := newTestClient(srv)
	req := query.NewRequest("10", "newest", nil, []string{"world", "technology"})

	articles, err := c.Fetch(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.False(t, articles[0].FetchedAt.IsZero())
	assert.Equal(t, "section=world%7Ctechnology&format=json&show-fields=headline%2Cthumbnail&show-tags=contributor&page-size=10&order-by=newest&api-key=test", gotQuery)
}

func TestClientFetchUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Unauthorized"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Fetch(context.Background(), query.NewRequest("", "", nil, []string{"world"}))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Unauthorized", apiErr.Message)
}

func TestClientFetchServerErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Fetch(context.Background(), query.NewRequest("", "", nil, []string{"world"}))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestClientFetchSharesConcurrentRequests(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		w.Write([]byte(samplePayload))
	}))
	defer srv.Close()

	c := newTestClient(srv)
	req := query.NewRequest("10", "newest", nil, []string{"world"})

	var wg sync.WaitGroup
	errs := make(chan error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Fetch(context.Background(), req)
			errs <- err
		}()
	}

	// Let all three callers join the flight before answering.
	require.Eventually(t, func() bool { return hits.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestClientFetchCallerCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte(samplePayload))
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(srv).Fetch(ctx, query.NewRequest("", "", nil, []string{"world"}))
	assert.True(t, errors.Is(err, context.Canceled))
}
