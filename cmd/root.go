// Package cmd wires the heartcheck command line.
package cmd

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
}

// NewRootCommand creates the heartcheck root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "heartcheck",
		Short: "Heart disease risk checker",
		Long: `heartcheck scores a patient questionnaire against a pre-trained
heart disease classifier and reports a verdict with its confidence.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "config.yaml", "path to the YAML config file")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewFetchCommand(opts))
	cmd.AddCommand(NewPredictCommand(opts))

	return cmd
}
