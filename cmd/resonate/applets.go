package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MauliQT/resonate/internal/applet"
)

func newAppletsCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "applets",
		Short: "Manage applet definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newAppletsListCmd(flags))
	cmd.AddCommand(newAppletsAddCmd(flags))
	cmd.AddCommand(newAppletsRemoveCmd(flags))
	cmd.AddCommand(newAppletsShowCmd(flags))

	return cmd
}

func newAppletsListCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored applets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			applets, err := app.store.Applets().List()
			if err != nil {
				return err
			}
			if len(applets) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no applets stored")
				return nil
			}

			for _, a := range applets {
				state := "enabled"
				if !a.Enabled {
					state = "disabled"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-9s %s\n", a.ID, state, a.DisplayName())
			}
			return nil
		},
	}
}

func newAppletsAddCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "add <file.yaml>",
		Short: "Validate an applet definition file and store it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := applet.ParseFile(args[0])
			if err != nil {
				return err
			}

			app, err := newAppContext(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.store.Applets().Save(a); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored applet '%s'\n", a.ID)
			return nil
		},
	}
}

func newAppletsRemoveCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <applet-id>",
		Short: "Delete an applet definition (run history is kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.store.Applets().Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed applet '%s'\n", args[0])
			return nil
		},
	}
}

func newAppletsShowCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <applet-id>",
		Short: "Print an applet definition as YAML",
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

			data, err := applet.Marshal(a)
			if err != nil {
				return err
			}
			cmd.OutOrStdout().Write(data)
			return nil
		},
	}
}

func newEnableCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "enable <applet-id>",
		Short: "Enable an applet so the daemon hosts its triggers",
		Args:  cobra.ExactArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return setEnabled(cmd, flags, args[0], true) },
	}
}

func newDisableCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "disable <applet-id>",
		Short: "Disable an applet and stop scheduling it",
		Args:  cobra.ExactArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return setEnabled(cmd, flags, args[0], false) },
	}
}

func setEnabled(cmd *cobra.Command, flags *rootFlags, id string, enabled bool) error {
	app, err := newAppContext(flags)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.store.Applets().SetEnabled(id, enabled); err != nil {
		return err
	}

	verb := "enabled"
	if !enabled {
		verb = "disabled"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s applet '%s'\n", verb, id)
	return nil
}
