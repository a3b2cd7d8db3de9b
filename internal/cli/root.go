package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "rqctl",
		Short: "CLI tool for the rightsquest API",
		Long: `rqctl is a CLI tool for interacting with the rightsquest JSON API.

It connects wallets, works through learning modules, and makes and
inspects token payments on behalf of a user.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load user from file if not provided via flag/env
			if err := cfg.LoadUser(); err != nil {
				return err
			}

			var trace io.Writer
			if cfg.Verbose {
				trace = cmd.ErrOrStderr()
			}
			client = NewClient(cfg.ServerURL, trace)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: RQCTL_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.UserID, "user", cfg.UserID, "User id (env: RQCTL_USER)")
	rootCmd.PersistentFlags().StringVar(&cfg.UserFile, "user-file", cfg.UserFile, "User id file path (env: RQCTL_USER_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Trace requests to stderr")

	// Add subcommands
	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newCatalogCmd())
	rootCmd.AddCommand(newUserCmd())
	rootCmd.AddCommand(newModuleCmd())
	rootCmd.AddCommand(newPayCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func output(cmd *cobra.Command) *Output {
	return NewOutput(cfg.Output, cmd.OutOrStdout())
}
