package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rmacdonaldsmith/tagsub-go/internal/config"
)

const (
	// Application info
	appName    = "tagsub"
	appVersion = "0.1.0"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := newRootCommand(cfg).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCommand builds the command tree. Flag defaults come from cfg, so TAGSUB_
// environment variables apply unless a flag is given.
func newRootCommand(cfg *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Content-based event routing over tagged events",
		Long: `tagsub matches tagged events against named equality filters.
Subscriptions are loaded from a YAML manifest and events are read as JSON lines
or length-delimited protobuf. Two matching strategies are available: linear,
which evaluates every filter for every event, and tree, which routes events
through a trie shared by all subscriptions.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return setupLogging(cfg, cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfg.Strategy, "strategy", cfg.Strategy, "Matching strategy: linear or tree")
	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: console or json")

	rootCmd.AddCommand(newMatchCommand(cfg))
	rootCmd.AddCommand(newEncodeCommand())
	rootCmd.AddCommand(newDecodeCommand())
	rootCmd.AddCommand(newBenchCommand(cfg))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// setupLogging configures the global zerolog logger
func setupLogging(cfg *config.Config, w io.Writer) error {
	lvl, err := cfg.ParsedLogLevel()
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(lvl)

	if cfg.LogFormat == "json" {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
		return nil
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s v%s\n", appName, appVersion)
			return err
		},
	}
}

// openInput returns stdin for "-" and the named file otherwise
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}
