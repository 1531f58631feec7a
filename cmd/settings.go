package cmd

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fruitcakej/GuardianNews/internal/config"
	"github.com/fruitcakej/GuardianNews/internal/output"
	"github.com/fruitcakej/GuardianNews/internal/prefs"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change saved preferences",
	Long: `Show or change the preferences that shape the article query.

Examples:
  guardiannews settings show
  guardiannews settings set page-size 20
  guardiannews settings set order-by oldest
  guardiannews settings set sections world science
  guardiannews settings set sections         # back to the default sections
  guardiannews settings reset`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print current preferences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		store, err := openPrefs(env)
		if err != nil {
			return err
		}
		return showSettings(env.printer, env.cfg, store)
	},
}

var settingsSetCmd = &cobra.Command{
	Use:       "set <page-size|order-by|sections> [value...]",
	Short:     "Change one preference",
	Args:      cobra.MinimumNArgs(1),
	ValidArgs: []string{"page-size", "order-by", "sections"},
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		store, err := openPrefs(env)
		if err != nil {
			return err
		}
		changed, err := applySetting(env.cfg, store, args[0], args[1:])
		if err != nil {
			return err
		}
		if !changed {
			env.printer.Info("Unchanged")
			return nil
		}
		env.printer.Success("Saved %s to %s", args[0], store.Path())
		return nil
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget all saved preferences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		store, err := openPrefs(env)
		if err != nil {
			return err
		}
		changed, err := store.Reset()
		if err != nil {
			return err
		}
		if changed {
			env.printer.Success("Preferences reset to defaults")
		} else {
			env.printer.Info("Already at defaults")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd, settingsResetCmd)
}

func showSettings(p *output.Printer, cfg *config.Config, store *prefs.Store) error {
	p.Header("Preferences")
	table := output.NewTable(p.Out(), []string{"Key", "Value"})
	table.AddRow(prefs.KeyPageSize, store.Summary(prefs.KeyPageSize))
	table.AddRow(prefs.KeyOrderBy, store.Summary(prefs.KeyOrderBy))
	table.AddRow(prefs.KeySections, store.Summary(prefs.KeySections))
	if err := table.Render(); err != nil {
		return err
	}
	p.Print("%s", p.Dim("file: "+store.Path()))

	p.Header("Available sections")
	p.Print("%s", strings.Join(cfg.SectionValues(), " "))
	return nil
}

// applySetting validates args against the config catalogue and stores them.
func applySetting(cfg *config.Config, store *prefs.Store, name string, args []string) (bool, error) {
	switch name {
	case "page-size":
		if len(args) != 1 {
			return false, fmt.Errorf("page-size takes exactly one value")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || !slices.Contains(cfg.PageSizes, n) {
			return false, fmt.Errorf("invalid page size %q (choose from %s)", args[0], joinInts(cfg.PageSizes))
		}
		return store.SetPageSize(args[0])

	case "order-by":
		if len(args) != 1 {
			return false, fmt.Errorf("order-by takes exactly one value")
		}
		values := optionValues(cfg.OrderBy)
		if !slices.Contains(values, args[0]) {
			return false, fmt.Errorf("invalid order %q (choose from %s)", args[0], strings.Join(values, ", "))
		}
		return store.SetOrderBy(args[0])

	case "sections":
		known := cfg.SectionValues()
		for _, s := range args {
			if !slices.Contains(known, s) {
				return false, fmt.Errorf("unknown section %q (see `guardiannews settings show`)", s)
			}
		}
		return store.SetSections(args)
	}
	return false, fmt.Errorf("unknown setting %q (valid: page-size, order-by, sections)", name)
}

func optionValues(opts []config.Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Value
	}
	return out
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
