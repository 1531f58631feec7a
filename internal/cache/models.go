package cache

import "time"

// Article is one news item as returned by the content API.
type Article struct {
	ID        string
	Title     string
	Byline    string
	Section   string
	Published time.Time
	Thumbnail string
	WebURL    string
	TrailText string
	FetchedAt time.Time
}

type QueryOpts struct {
	Section string
	Search  string
	Limit   int
}
