package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/newtron-network/swreconcile/pkg/audit"
	"github.com/newtron-network/swreconcile/pkg/cli"
	"github.com/newtron-network/swreconcile/pkg/config"
	"github.com/newtron-network/swreconcile/pkg/platform"
	"github.com/newtron-network/swreconcile/pkg/reconcile"
	"github.com/newtron-network/swreconcile/pkg/state"
)

var validateCmd = &cobra.Command{
	Use:   "validate <config>...",
	Short: "Run a full reconciliation pass and report errors",
	Long: `Validate configurations by reconciling each against the platform's
initial state. Nothing is published.

Examples:
  swreconcile validate -P wedge.yaml switch.yaml
  swreconcile validate -P wedge.yaml configs/*.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plat, err := loadPlatform()
		if err != nil {
			return err
		}
		orig, err := platform.InitialState(plat)
		if err != nil {
			return err
		}
		orig.Publish()

		width := 0
		for _, path := range args {
			width = max(width, len(path)+4)
		}
		failed := 0
		for _, path := range args {
			start := time.Now()
			event := audit.NewEvent(app.user, app.switchName, audit.OpValidate).WithConfigPath(path)
			domains, err := validateFile(orig, plat, path)
			event.WithDuration(time.Since(start))
			status := cli.Green("ok")
			if err != nil {
				failed++
				status = cli.Red("FAIL") + " " + err.Error()
				event.WithError(err)
			} else {
				event.WithSuccess().WithDomains(domains)
				if len(domains) > 0 {
					status += cli.Dim(" (" + strings.Join(domains, ", ") + ")")
				}
			}
			audit.Log(event)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", cli.DotPad(path, width), status)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d configurations failed validation", failed, len(args))
		}
		return nil
	},
}

// validateFile reconciles one file and returns the domains it would change.
func validateFile(orig *state.SwitchState, plat platform.Platform, path string) ([]string, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	c, err := reconcile.Run(orig, cfg, plat, nil)
	if err != nil {
		return nil, err
	}
	return c.Changed(), nil
}
