package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/panels/internal/app"
	"github.com/five82/panels/internal/config"
	"github.com/five82/panels/internal/instance"
	"github.com/five82/panels/internal/logtail"
)

func rootCmd() *cobra.Command {
	var (
		configPath string
		prefsPath  string
		focus      string
	)

	cmd := &cobra.Command{
		Use:   "panels",
		Short: "Terminal viewer for a numbered comic catalog",
		Long: `panels shows items from an xkcd-style catalog, one display per configured
instance, and advances each display on its own schedule.

Configuration is read from --config, $PANELS_CONFIG or
~/.config/panels/config.toml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), app.Options{
				ConfigPath: configPath,
				PrefsPath:  prefsPath,
				Instance:   focus,
			})
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/panels/config.toml)")
	cmd.Flags().StringVar(&prefsPath, "prefs", "", "preferences file (default ~/.config/panels/prefs.toml)")
	cmd.Flags().StringVar(&focus, "instance", "", "instance to focus at start")

	cmd.AddCommand(stepCmd(&configPath))
	cmd.AddCommand(fetchCmd(&configPath))
	cmd.AddCommand(logsCmd(&configPath))
	return cmd
}

func stepCmd(configPath *string) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "step [first|latest|previous|next|random|N]",
		Short: "Move one instance once and print its item",
		Long: `Resolve the start-up position of an instance (persisted pointer first,
then the configured initial position), apply an optional move and print the
resulting item. The pointer is saved, so running "panels step next" from cron
walks a display through the catalog.

Examples:
  panels step
  panels step next --instance hall
  panels step 353`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := app.StepOptions{ConfigPath: *configPath, Instance: id}
			if len(args) == 1 {
				c, err := instance.ParseCommand(args[0])
				if err != nil {
					return err
				}
				if !c.Navigational() {
					return fmt.Errorf("step: %s is not a move", strings.ToLower(c.Kind.String()))
				}
				opts.Command = &c
			}

			res, err := app.Step(cmd.Context(), opts)
			if err != nil {
				return err
			}
			printItem(cmd.OutOrStdout(), res.Item, res.Count)
			for _, w := range res.Warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), warnColor.Sprint("warning: "+w))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&id, "instance", "i", "", "instance id (default: first configured)")
	return cmd
}

func fetchCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch [latest|N]",
		Short: "Fetch one item straight from the catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			which := "latest"
			if len(args) == 1 {
				which = args[0]
			}
			item, err := app.Fetch(cmd.Context(), *configPath, which)
			if err != nil {
				return err
			}
			printItem(cmd.OutOrStdout(), item, 0)
			return nil
		},
	}
}

func logsCmd(configPath *string) *cobra.Command {
	var lines int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the end of the panels log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out, err := logtail.Read(cfg.Logging.File, lines)
			if err != nil {
				return err
			}
			for _, line := range out {
				printLogLine(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "number of lines (0 for all)")
	return cmd
}
