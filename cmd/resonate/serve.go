package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MauliQT/resonate/internal/scheduler"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the daemon: host triggers for enabled applets until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sched := scheduler.New(app.registry, app.resolver, app.engine, app.store.Applets(), app.log)
			sched.Start(ctx)
			defer sched.Stop()

			applets, err := app.store.Applets().List()
			if err != nil {
				return err
			}
			for _, a := range applets {
				if !a.Enabled {
					continue
				}
				if err := sched.SetEnabled(a.ID, true); err != nil {
					app.log.WithApplet(a.ID).Error(err, "failed to start triggers")
					continue
				}
				app.log.WithApplet(a.ID).Info("triggers started")
			}

			app.log.Info("daemon running, press ctrl+c to stop")
			<-ctx.Done()
			app.log.Info("shutting down")
			return nil
		},
	}
}
