package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHistoryCmd(flags *rootFlags) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history <applet-id>",
		Short: "Show an applet's run records, most recent first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			if runID != "" {
				rec, err := app.store.Records().Run(runID)
				if err != nil {
					return err
				}
				printRecord(cmd, rec)
				return nil
			}

			records, err := app.store.Records().ListRuns(args[0], limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
				return nil
			}

			for _, rec := range records {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-9s  started=%s  duration=%s\n",
					rec.ID, rec.State,
					rec.StartedAt.Local().Format("2006-01-02 15:04:05"),
					rec.EndedAt.Sub(rec.StartedAt).Round(timePrecision))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	cmd.Flags().StringVar(&runID, "run", "", "Show full detail for one run id instead")
	return cmd
}
