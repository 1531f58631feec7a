package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNoSnapshot is returned by LastRefresh before the first successful fetch.
var ErrNoSnapshot = errors.New("no snapshot stored")

// Cache keeps the article list of the last successful fetch.
type Cache struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

func Open(dbPath string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	c := &Cache{writeDB: writeDB}
	if err := c.init(); err != nil {
		c.Close()
		return nil, err
	}

	// the driver only honours mode=ro on file: URIs
	readDB, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}
	c.readDB = readDB
	return c, nil
}

func (c *Cache) init() error {
	_, err := c.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS articles (
			position    INTEGER PRIMARY KEY,
			id          TEXT NOT NULL,
			title       TEXT NOT NULL,
			byline      TEXT NOT NULL DEFAULT '',
			section     TEXT NOT NULL DEFAULT '',
			published   DATETIME NOT NULL,
			thumbnail   TEXT NOT NULL DEFAULT '',
			web_url     TEXT NOT NULL,
			trail_text  TEXT NOT NULL DEFAULT '',
			fetched_at  DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_articles_section ON articles(section);

		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	var errs []error
	if c.readDB != nil {
		errs = append(errs, c.readDB.Close())
	}
	if c.writeDB != nil {
		errs = append(errs, c.writeDB.Close())
	}
	return errors.Join(errs...)
}

// ReplaceArticles swaps the stored list for articles in one transaction,
// keeping their order, and records the refresh time.
func (c *Cache) ReplaceArticles(articles []Article) error {
	tx, err := c.writeDB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM articles`); err != nil {
		return fmt.Errorf("clearing articles: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO articles (position, id, title, byline, section, published, thumbnail, web_url, trail_text, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, a := range articles {
		_, err := stmt.Exec(i, a.ID, a.Title, a.Byline, a.Section, a.Published, a.Thumbnail, a.WebURL, a.TrailText, a.FetchedAt)
		if err != nil {
			return fmt.Errorf("storing article %s: %w", a.ID, err)
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO meta (key, value) VALUES ('last_refresh', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("recording refresh: %w", err)
	}

	return tx.Commit()
}

func (c *Cache) GetArticles(opts QueryOpts) ([]Article, error) {
	var (
		where []string
		args  []interface{}
	)

	if opts.Section != "" {
		where = append(where, "section = ? COLLATE NOCASE")
		args = append(args, opts.Section)
	}

	if opts.Search != "" {
		where = append(where, "(title LIKE ? OR trail_text LIKE ?)")
		term := "%" + opts.Search + "%"
		args = append(args, term, term)
	}

	query := "SELECT id, title, byline, section, published, thumbnail, web_url, trail_text, fetched_at FROM articles"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY position"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows, err := c.readDB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		var a Article
		if err := rows.Scan(&a.ID, &a.Title, &a.Byline, &a.Section, &a.Published, &a.Thumbnail, &a.WebURL, &a.TrailText, &a.FetchedAt); err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// LastRefresh returns when the snapshot was last replaced.
func (c *Cache) LastRefresh() (time.Time, error) {
	var value string
	err := c.readDB.QueryRow("SELECT value FROM meta WHERE key = 'last_refresh'").Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrNoSnapshot
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, value)
}

// Stats returns the number of stored articles and the database file size.
func (c *Cache) Stats(dbPath string) (int, int64, error) {
	var count int
	if err := c.readDB.QueryRow("SELECT COUNT(*) FROM articles").Scan(&count); err != nil {
		return 0, 0, fmt.Errorf("counting articles: %w", err)
	}
	info, err := os.Stat(dbPath)
	if err != nil {
		return count, 0, fmt.Errorf("stat %s: %w", dbPath, err)
	}
	return count, info.Size(), nil
}
