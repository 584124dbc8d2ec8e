package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewFetchCommand creates the fetch command.
func NewFetchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Download the model artifact if it is missing",
		Long: `Download the model artifact if it is missing.

An artifact already present at model.path is kept as is. Delete it first
to force a new download.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.logger.Sync()

			store, err := a.openLedger()
			if err != nil {
				return err
			}
			defer store.Close()

			outcome, err := a.provisioner(store).Ensure(cmd.Context())
			if err != nil {
				a.logger.Error("fetch failed", zap.Error(err))
				return err
			}
			out := cmd.OutOrStdout()
			if !outcome.Fetched {
				fmt.Fprintf(out, "%s already present\n", outcome.Path)
				return nil
			}
			fmt.Fprintf(out, "fetched %s (%d bytes, sha256 %s) in %s\n",
				outcome.Path, outcome.Record.Bytes, outcome.Record.SHA256, outcome.Record.Duration)
			return nil
		},
	}
}
