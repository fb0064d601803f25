package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nordiccms/content-expiry/internal/bootstrap"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and event consumer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return bootstrap.Serve(cfgFile)
		},
	}
}
