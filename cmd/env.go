package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/fruitcakej/GuardianNews/internal/config"
	"github.com/fruitcakej/GuardianNews/internal/feed"
	"github.com/fruitcakej/GuardianNews/internal/guardian"
	"github.com/fruitcakej/GuardianNews/internal/loader"
	"github.com/fruitcakej/GuardianNews/internal/logging"
	"github.com/fruitcakej/GuardianNews/internal/output"
	"github.com/fruitcakej/GuardianNews/internal/prefs"
	"github.com/fruitcakej/GuardianNews/internal/query"
)

// appEnv is what every command needs: config, a file logger and a printer.
type appEnv struct {
	cfg     *config.Config
	logger  *slog.Logger
	printer *output.Printer
	logFile io.Closer
}

func setup(cmd *cobra.Command) (*appEnv, error) {
	if err := config.LoadEnv(); err != nil {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	level := logging.ParseLevel(cfg.LogLevel)
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger, logFile, err := logging.OpenFile(config.LogPath(), level)
	if err != nil {
		return nil, fmt.Errorf("opening log: %w", err)
	}
	slog.SetDefault(logger)
	logger.Debug("starting", "command", cmd.Name(), "version", version, "source", cfg.Source)

	return &appEnv{
		cfg:     cfg,
		logger:  logger,
		printer: output.NewPrinterWithWriters(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.UseColors()),
		logFile: logFile,
	}, nil
}

func (e *appEnv) Close() {
	if e.logFile != nil {
		e.logFile.Close()
	}
}

func prefsDefaults(cfg *config.Config) prefs.Defaults {
	return prefs.Defaults{
		PageSize:     query.DefaultPageSize,
		OrderBy:      query.DefaultOrderBy,
		Sections:     cfg.DefaultSections,
		SectionLabel: cfg.SectionLabel,
		OrderLabel:   cfg.OrderLabel,
	}
}

func openPrefs(e *appEnv) (*prefs.Store, error) {
	store, err := prefs.Open(config.PrefsPath(), prefsDefaults(e.cfg), e.logger)
	if err != nil {
		return nil, fmt.Errorf("opening preferences: %w", err)
	}
	return store, nil
}

func currentRequest(cfg *config.Config, store *prefs.Store) query.Request {
	v := store.Values()
	return query.NewRequest(v.PageSize, v.OrderBy, v.Sections, cfg.DefaultSections)
}

// newFetcher picks the content API or the RSS fallback per config.
func newFetcher(cfg *config.Config, logger *slog.Logger) loader.Fetcher {
	if cfg.Source == config.SourceRSS {
		return feed.NewFetcher(cfg.RSSBase, &http.Client{Timeout: cfg.Timeout()}, cfg.SectionLabel)
	}
	return guardian.NewClient(guardian.Options{
		Endpoint: query.Endpoint{
			BaseURL:    cfg.API.Endpoint,
			APIKey:     cfg.APIKey(),
			ShowFields: cfg.API.ShowFields,
			ShowTags:   cfg.API.ShowTags,
		},
		Timeout:           cfg.Timeout(),
		RequestsPerSecond: cfg.RequestsPerSecond(),
		Logger:            logger,
		UserAgent:         "guardiannews/" + version,
	})
}

// probeURL is the host the launch connectivity check dials.
func probeURL(cfg *config.Config) string {
	if cfg.Source == config.SourceRSS {
		return cfg.RSSBase
	}
	return cfg.API.Endpoint
}
