package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	verbose bool
	dbPath  string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "resonate",
		Short:         "Resonate moves songs and playlists between music services through plugin pipelines",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringVar(&flags.dbPath, "db", "resonate.db", "Path to the SQLite database")

	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newRunCmd(flags))
	cmd.AddCommand(newAppletsCmd(flags))
	cmd.AddCommand(newEnableCmd(flags))
	cmd.AddCommand(newDisableCmd(flags))
	cmd.AddCommand(newPluginsCmd(flags))
	cmd.AddCommand(newHistoryCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
