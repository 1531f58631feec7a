package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fruitcakej/GuardianNews/internal/cache"
	"github.com/fruitcakej/GuardianNews/internal/config"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show snapshot statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		dbPath := config.CachePath()
		db, err := cache.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer db.Close()

		count, size, err := db.Stats(dbPath)
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}

		last := "never"
		t, err := db.LastRefresh()
		switch {
		case err == nil:
			last = formatAge(time.Since(t)) + " ago"
		case !errors.Is(err, cache.ErrNoSnapshot):
			return fmt.Errorf("reading last refresh: %w", err)
		}

		p := env.printer
		p.Print("Cache: %s", dbPath)
		p.Print("Articles: %d", count)
		p.Print("Size: %s", formatBytes(size))
		p.Print("Last refresh: %s", last)
		p.Print("Log: %s", config.LogPath())
		return nil
	},
}

func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "under a minute"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
