// Package cmd implements the command-line interface for the content-expiry
// service.
package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// rootCmd represents the root command for the content-expiry CLI.
	rootCmd = &cobra.Command{
		Use:   "content-expiry",
		Short: "Content expiry tracking service",
		Long:  `Tracks expiry dates and compliance numbers for versioned CMS content.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yml", "path to configuration file")

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(backfillCommand())
}
