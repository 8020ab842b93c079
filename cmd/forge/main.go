package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/apiforge/forge/internal/api"
	"github.com/apiforge/forge/internal/config"
	"github.com/apiforge/forge/internal/dashboard"
	"github.com/apiforge/forge/internal/events"
	"github.com/apiforge/forge/internal/logging"
	"github.com/apiforge/forge/internal/nav"
	"github.com/apiforge/forge/internal/search"
	"github.com/apiforge/forge/internal/store"
	"github.com/apiforge/forge/internal/tui"
)

var (
	version = "0.1.0"

	flagServer string
	flagToken  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "forge",
	Short: "forge - terminal workspace dashboard for APIForge",
	Long: `forge is a terminal dashboard over an APIForge backend: browse request
collections, manage mock servers and routes, switch environments, tail mock
logs and revisit request history.

The backend address and token live in ~/.forge/config.yaml and can be
overridden per invocation.

Examples:
  forge                                  # connect using the saved config
  forge --server https://api.example.com/api
  forge --token $FORGE_TOKEN`,
	Version: version,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.Flags().StringVar(&flagServer, "server", "", "backend base URL (overrides config)")
	rootCmd.Flags().StringVar(&flagToken, "token", "", "bearer token (overrides config)")
}

func run() error {
	if err := config.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}
	settings, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if flagServer != "" {
		settings.Server = flagServer
	}
	if flagToken != "" {
		settings.Token = flagToken
	}

	// The TUI owns the terminal, so logs go to a file.
	if err := logging.SetOutput(config.LogFile); err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	log := logging.NewLogger("main")

	st, err := store.Open(config.StorePath)
	if err != nil {
		return fmt.Errorf("failed to open selection store: %w", err)
	}
	defer st.Close()

	timeout := time.Duration(settings.Preferences.RequestTimeout) * time.Second
	client := api.New(api.Config{
		BaseURL:         settings.Server,
		AuthToken:       settings.Token,
		Timeout:         timeout,
		FollowRedirects: settings.Preferences.FollowRedirects,
		SSLVerify:       settings.Preferences.SSLVerify,
	})

	bus := events.NewBus()
	navc := nav.NewCoordinator()
	index := search.NewBuilder(client)
	ctl := dashboard.New(client, st, bus, navc, index)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := ctl.InitSession(ctx); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	log.WithField("workspace", ctl.ActiveWorkspaceID()).Info("session ready")

	return tui.Run(tui.New(ctl, client, st, bus, navc))
}
