// swreconcile - switch state reconciliation tool
//
// Reconciles a switch configuration file against a platform's initial
// state and prints the resulting state delta:
//
//	swreconcile apply -P wedge.yaml [--from old.yaml] new.yaml [--json]
//	swreconcile apply -P wedge.yaml new.yaml --publish 10.0.0.5:6379
//	swreconcile apply -P wedge.yaml new.yaml --ssh rsw1 --ssh-user admin
//	swreconcile validate -P wedge.yaml new.yaml
//	swreconcile audit list --last 24h
//	swreconcile settings set platform_file /etc/swreconcile/wedge.yaml
package main

import (
	"fmt"
	"os"
	"os/user"

	"github.com/spf13/cobra"

	"github.com/newtron-network/swreconcile/pkg/audit"
	"github.com/newtron-network/swreconcile/pkg/platform"
	"github.com/newtron-network/swreconcile/pkg/settings"
	"github.com/newtron-network/swreconcile/pkg/util"
	"github.com/newtron-network/swreconcile/pkg/version"
)

// appState holds global flags and the state set up before each command.
type appState struct {
	platformFile string
	switchName   string
	verbose      bool
	jsonLogs     bool

	settings *settings.Settings
	user     string
}

var app = &appState{}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "swreconcile",
	Short:             "Switch state reconciliation tool",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `swreconcile computes the switch state a configuration file produces.

Every pass starts from the platform's initial state, reconciles the
configuration into a new immutable state, and reports the delta.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if app.verbose {
			util.SetLogLevel("debug")
		} else {
			util.SetLogLevel("warn")
		}
		if app.jsonLogs {
			util.SetJSONFormat()
		}

		var err error
		app.settings, err = settings.Load()
		if err != nil {
			util.Warnf("Could not load settings: %v", err)
			app.settings = &settings.Settings{}
		}
		app.user = "unknown"
		if u, err := user.Current(); err == nil {
			app.user = u.Username
		}
		if app.platformFile == "" {
			app.platformFile = app.settings.PlatformFile
		}

		if isSettingsOrHelp(cmd) {
			return nil
		}
		auditLogger, err := audit.NewFileLogger(app.settings.GetAuditLog(), audit.RotationConfig{
			MaxSize:    10 * 1024 * 1024,
			MaxBackups: 10,
		})
		if err != nil {
			util.Warnf("Could not initialize audit logging: %v", err)
		} else {
			audit.SetDefaultLogger(auditLogger)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&app.platformFile, "platform", "P", "", "Platform description file")
	rootCmd.PersistentFlags().StringVar(&app.switchName, "switch", "switch", "Switch name recorded in audit events")
	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&app.jsonLogs, "log-json", false, "Log in JSON")

	rootCmd.AddGroup(
		&cobra.Group{ID: "reconcile", Title: "Reconciliation:"},
		&cobra.Group{ID: "meta", Title: "Configuration & Meta:"},
	)
	for _, cmd := range []*cobra.Command{applyCmd, validateCmd} {
		cmd.GroupID = "reconcile"
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{settingsCmd, auditCmd, versionCmd} {
		cmd.GroupID = "meta"
		rootCmd.AddCommand(cmd)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		if version.Version == "dev" {
			fmt.Fprintln(cmd.OutOrStdout(), "swreconcile dev build (use 'make build' for version info)")
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "swreconcile %s\n", version.Info())
		}
	},
}

// isSettingsOrHelp reports whether cmd needs no audit logger.
func isSettingsOrHelp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "settings", "help", "version":
			return true
		}
	}
	return false
}

// loadPlatform reads the platform file from -P or the settings.
func loadPlatform() (*platform.Static, error) {
	if app.platformFile == "" {
		return nil, fmt.Errorf("platform required: use -P <file> or 'swreconcile settings set platform_file <file>'")
	}
	return platform.Load(app.platformFile)
}
