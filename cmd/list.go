package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fruitcakej/GuardianNews/internal/cache"
	"github.com/fruitcakej/GuardianNews/internal/config"
	"github.com/fruitcakej/GuardianNews/internal/loader"
	"github.com/fruitcakej/GuardianNews/internal/output"
	"github.com/fruitcakej/GuardianNews/internal/prefs"
)

var (
	flagListCached  bool
	flagListSearch  string
	flagListSection string
	flagListLimit   int
	flagListURLs    bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Print the current headlines",
	Long: `Fetch the article list for the saved preferences and print it as a table.

Examples:
  guardiannews list                  # fetch and print
  guardiannews list --cached         # print the last fetched list, offline
  guardiannews list --search climate # only titles containing "climate"
  guardiannews list --cached --section "World news"
  guardiannews list --urls           # include article links`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&flagListCached, "cached", false, "print the stored snapshot instead of fetching")
	listCmd.Flags().StringVar(&flagListSearch, "search", "", "filter stored titles (with --cached)")
	listCmd.Flags().StringVar(&flagListSection, "section", "", "only rows whose section matches, ignoring case (with --cached)")
	listCmd.Flags().IntVar(&flagListLimit, "limit", 0, "maximum rows to print (with --cached)")
	listCmd.Flags().BoolVar(&flagListURLs, "urls", false, "include the article URL column")
}

func runList(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	db, err := cache.Open(config.CachePath())
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer db.Close()

	var articles []cache.Article
	if flagListCached {
		articles, err = db.GetArticles(cachedQuery(flagListSearch, flagListSection, flagListLimit))
		if err != nil {
			return fmt.Errorf("reading snapshot: %w", err)
		}
		if last, err := db.LastRefresh(); err == nil {
			env.printer.Info("Snapshot from %s", last.Local().Format(time.RFC1123))
		}
	} else {
		store, err := openPrefs(env)
		if err != nil {
			return err
		}
		l := loader.New(newFetcher(env.cfg, env.logger), loader.WithSnapshot(db), loader.WithLogger(env.logger))
		res := l.Load(cmd.Context(), currentRequest(env.cfg, store))
		if res.Err != nil {
			return fmt.Errorf("fetching articles: %w", res.Err)
		}
		articles = res.Articles
		env.printer.Info("%s · %s", store.Summary(prefs.KeySections), store.Summary(prefs.KeyOrderBy))
	}

	if len(articles) == 0 {
		env.printer.Warning("No data")
		return nil
	}
	return printArticles(env.printer.Out(), env.cfg, articles, flagListURLs)
}

func cachedQuery(search, section string, limit int) cache.QueryOpts {
	return cache.QueryOpts{
		Search:  strings.TrimSpace(search),
		Section: strings.TrimSpace(section),
		Limit:   limit,
	}
}

func printArticles(w io.Writer, cfg *config.Config, articles []cache.Article, withURL bool) error {
	header := []string{"Published", "Section", "Title", "Byline"}
	if withURL {
		header = append(header, "URL")
	}
	table := output.NewTable(w, header)
	for _, a := range articles {
		published := "-"
		if !a.Published.IsZero() {
			published = a.Published.Local().Format("02 Jan 15:04")
		}
		row := []string{published, cfg.SectionLabel(a.Section), truncate(a.Title, 70), truncate(a.Byline, 30)}
		if withURL {
			row = append(row, a.WebURL)
		}
		table.AddRow(row...)
	}
	return table.Render()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
