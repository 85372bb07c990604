package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"eastereggs/internal/app"
)

func main() {
	cfg := app.DefaultConfig()
	if err := app.LoadEnv(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, "eastereggs:", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(&cfg).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// newRootCmd binds flags over cfg, which already carries defaults and the
// environment, so an explicit flag always wins.
func newRootCmd(cfg *app.Config) *cobra.Command {
	root := &cobra.Command{
		Use:          "eastereggs",
		Short:        "A portfolio page with hidden achievements",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cmd.Context(), *cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Run(cmd.Context())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory for persisted achievements and logs")
	pf.StringVar(&cfg.Store, "store", cfg.Store, "storage backend: sqlite, badger or memory")
	pf.StringVar(&cfg.CatalogPath, "catalog", cfg.CatalogPath, "YAML achievement catalog replacing the built-in one")
	pf.StringVar(&cfg.LogPath, "log", cfg.LogPath, "JSON event log path")
	pf.BoolVar(&cfg.ASCIIOnly, "ascii", cfg.ASCIIOnly, "draw without unicode glyphs")

	f := root.Flags()
	f.BoolVar(&cfg.Dev, "dev", cfg.Dev, "serve the dev HTTP surface alongside the page")
	f.StringVar(&cfg.DevHTTP, "dev-http", cfg.DevHTTP, "dev HTTP listen address")
	f.BoolVar(&cfg.Debug, "debug", cfg.Debug, "log UI internals")
	f.StringVar(&cfg.Style, "style", cfg.Style, "color scheme: midnight or retro")
	f.DurationVar(&cfg.IdleTimeout, "idle-timeout", cfg.IdleTimeout, "inactivity before the idle achievement")
	f.DurationVar(&cfg.SessionMilestone, "session-milestone", cfg.SessionMilestone, "session length for the time milestone")
	f.IntVar(&cfg.MaxToasts, "max-toasts", cfg.MaxToasts, "toasts on screen at once")

	root.AddCommand(newHubCmd(cfg), newTriggerCmd(cfg))
	return root
}

func newHubCmd(cfg *app.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "hub",
		Short: "Print unlocked achievements and hints for the rest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.PrintHub(cmd.Context(), *cfg, cmd.OutOrStdout())
		},
	}
}

func newTriggerCmd(cfg *app.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "trigger <id>",
		Short: "Unlock an achievement as an external page would",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			newly, err := app.Trigger(cmd.Context(), *cfg, args[0])
			if err != nil {
				return err
			}
			if newly {
				fmt.Fprintf(cmd.OutOrStdout(), "unlocked %s\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s was already unlocked\n", args[0])
			}
			return nil
		},
	}
}
