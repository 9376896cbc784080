package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MauliQT/resonate/internal/engine"
)

func newRunCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run <applet-id>",
		Short: "Execute one applet immediately and print the run outcome",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			a, err := app.store.Applets().Applet(args[0])
			if err != nil {
				return err
			}

			rec, err := app.engine.Run(cmd.Context(), a)
			if err != nil {
				return err
			}

			printRecord(cmd, rec)
			if rec.State == engine.StateFailed {
				return fmt.Errorf("run %s failed: %s", rec.ID, rec.Error)
			}
			return nil
		},
	}
}

func printRecord(cmd *cobra.Command, rec *engine.RunRecord) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s  applet=%s  state=%s  duration=%s\n",
		rec.ID, rec.AppletID, rec.State, rec.EndedAt.Sub(rec.StartedAt).Round(timePrecision))

	for _, stage := range rec.Stages {
		line := fmt.Sprintf("  [%s] %-20s %s", stage.Category, stage.Plugin, stage.Status)
		if stage.Message != "" {
			line += "  (" + stage.Message + ")"
		}
		fmt.Fprintln(out, line)
	}
	for _, warning := range rec.Warnings {
		fmt.Fprintf(out, "  warning: %s\n", warning)
	}
	if rec.Error != "" {
		fmt.Fprintf(out, "  error: %s\n", rec.Error)
	}
}
