package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fruitcakej/GuardianNews/internal/browser"
	"github.com/fruitcakej/GuardianNews/internal/cache"
	"github.com/fruitcakej/GuardianNews/internal/config"
	"github.com/fruitcakej/GuardianNews/internal/loader"
	"github.com/fruitcakej/GuardianNews/internal/netcheck"
	"github.com/fruitcakej/GuardianNews/internal/tui"
)

const connectivityTimeout = 3 * time.Second

func runTUI(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	store, err := openPrefs(env)
	if err != nil {
		return err
	}

	db, err := cache.Open(config.CachePath())
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer db.Close()

	l := loader.New(newFetcher(env.cfg, env.logger),
		loader.WithSnapshot(db),
		loader.WithLogger(env.logger),
	)

	ctx, cancel := context.WithTimeout(cmd.Context(), connectivityTimeout)
	err = netcheck.Check(ctx, probeURL(env.cfg))
	cancel()
	online := err == nil
	if !online {
		env.logger.Warn("connectivity check failed", "error", err)
	}

	w, err := store.Watch()
	if err != nil {
		// the app still works, it just won't see external edits
		env.logger.Warn("watching preferences failed", "error", err)
	} else {
		defer w.Close()
	}

	return tui.Run(tui.RunOpts{
		Cfg:    env.cfg,
		Prefs:  store,
		Loader: l,
		Opener: browser.New(env.cfg.Browser),
		Logger: env.logger,
		Online: online,
	})
}
