package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "server",
		Short:         "Sales day visit orchestration backend",
		Long:          "Plans a field sales day: loads the client roster, computes a driving route, tracks visits and renders stop maps. Configuration comes from .env and the environment.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(
		newServeCmd(),
		newWalkthroughCmd(),
		newSeedCmd(),
	)

	return root
}
