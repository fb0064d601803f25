package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nordiccms/content-expiry/internal/bootstrap"
)

func backfillCommand() *cobra.Command {
	var expiryDate string
	var expiryDateFormat string

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Create expiry records for versions that lack one",
		Long: `Creates an expiry record for every version without one. By default the
expiry date is the version's modified time plus the default duration for its
content type; --expiry-date forces a fixed date onto every created record.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			progress := func(line string) {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return bootstrap.Backfill(cmd.Context(), cfgFile, expiryDate, expiryDateFormat, progress)
		},
	}

	cmd.Flags().StringVar(&expiryDate, "expiry-date", "", "fixed expiry date for all created records")
	cmd.Flags().StringVar(&expiryDateFormat, "expiry-date-format", "2006-01-02", "layout for --expiry-date")

	return cmd
}
