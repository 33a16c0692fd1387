package main

import (
	"fmt"
	"os"

	"github.com/alimgiray/gmash/pkg/config"
	"github.com/alimgiray/gmash/pkg/logger"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mashctl",
	Short: "Merge a GitHub and a Bitbucket account into one profile summary.",
	Long: `mashctl queries the public GitHub and Bitbucket APIs for two usernames and
merges repository counts, stars, watchers, commits, languages and topics
into a single summary. It can print the summary or serve it over HTTP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
}

// loadConfig reads the configuration and initializes logging, honoring --verbose
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Log.Level = "debug"
	}
	logger.Init(cfg.Log)
	logger.SetOutput(os.Stderr)
	return cfg, nil
}
