package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPluginsCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "List registered plugins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			for _, info := range app.registry.List() {
				modes := ""
				if info.Modes.Playlists {
					modes = "playlists"
				}
				if info.Modes.Songs {
					if modes != "" {
						modes += "+"
					}
					modes += "songs"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-9s %-16s %s\n", info.Name, info.Category, modes, info.Description)
			}
			return nil
		},
	}

	cmd.AddCommand(newPluginsTestCmd(flags))
	return cmd
}

func newPluginsTestCmd(flags *rootFlags) *cobra.Command {
	var settingPairs []string

	cmd := &cobra.Command{
		Use:   "test <plugin-name>",
		Short: "Run a plugin's connectivity check with resolved settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			snap := app.registry.Snapshot()
			info, err := snap.Describe(args[0])
			if err != nil {
				return err
			}

			instance, err := parseSettingPairs(settingPairs)
			if err != nil {
				return err
			}

			resolved, err := app.resolver.Resolve(info, instance)
			if err != nil {
				return err
			}

			p, err := snap.Plugin(info.Name)
			if err != nil {
				return err
			}

			if err := p.Test(cmd.Context(), resolved); err != nil {
				return fmt.Errorf("plugin '%s' test failed: %w", info.Name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "plugin '%s' test passed\n", info.Name)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&settingPairs, "setting", "s", nil, "Instance setting as key=value (repeatable)")
	return cmd
}
