package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newtron-network/swreconcile/pkg/cli"
	"github.com/newtron-network/swreconcile/pkg/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage persistent settings",
	Long: `Manage persistent settings stored in ~/.swreconcile/settings.json.

Settings provide defaults for flags:
  - platform_file: Used when -P is not specified
  - redis_addr:    Used when apply has neither --publish nor --ssh
  - redis_db:      Redis database for publication
  - audit_log:     Audit log file
  - ssh_user, ssh_key_file, known_hosts: --ssh tunnel credentials

Examples:
  swreconcile settings show
  swreconcile settings set platform_file /etc/swreconcile/wedge.yaml
  swreconcile settings set redis_addr 10.0.0.5:6379
  swreconcile settings clear`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := app.settings
		fmt.Fprintf(cmd.OutOrStdout(), "Settings file: %s\n\n", settings.DefaultSettingsPath())

		t := cli.NewTable("SETTING", "VALUE").WithWriter(cmd.OutOrStdout(), cli.TerminalWidth())
		for _, key := range settings.Keys {
			value, _ := s.Get(key)
			if value == "" {
				value = cli.Dim("(not set)")
			}
			t.Row(key, value)
		}
		t.Flush()
		return nil
	},
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <setting>",
	Short: "Get a setting value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := app.settings.Get(args[0])
		if err != nil {
			return err
		}
		if value == "" {
			value = "(not set)"
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <setting> <value>",
	Short: "Set a setting value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.settings.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := app.settings.Save(); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s set to: %s\n", args[0], args[1])
		return nil
	},
}

var settingsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		app.settings.Clear()
		if err := app.settings.Save(); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Settings cleared")
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd, settingsGetCmd, settingsSetCmd, settingsClearCmd)
}
