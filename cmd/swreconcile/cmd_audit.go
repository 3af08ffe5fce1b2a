package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/newtron-network/swreconcile/pkg/audit"
	"github.com/newtron-network/swreconcile/pkg/cli"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "View audit logs",
	Long: `View the audit log of reconciliation passes.

Every apply and validate is logged with:
  - Timestamp and user
  - Switch and configuration file
  - Resulting generation and changed domains
  - Success/failure status

Examples:
  swreconcile audit list --switch-name rsw1
  swreconcile audit list --last 24h
  swreconcile audit list --domain routes --failures`,
}

var auditFlags struct {
	switchName string
	user       string
	domain     string
	last       string
	limit      int
	failures   bool
	jsonOutput bool
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit events",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := audit.Filter{
			Switch:      auditFlags.switchName,
			User:        auditFlags.user,
			Domain:      auditFlags.domain,
			Limit:       auditFlags.limit,
			FailureOnly: auditFlags.failures,
		}

		if auditFlags.last != "" {
			duration, err := time.ParseDuration(auditFlags.last)
			if err != nil {
				return fmt.Errorf("invalid duration: %s", auditFlags.last)
			}
			filter.StartTime = time.Now().Add(-duration)
		}

		events, err := audit.Query(filter)
		if err != nil {
			return fmt.Errorf("querying audit log: %w", err)
		}

		out := cmd.OutOrStdout()
		if auditFlags.jsonOutput {
			return json.NewEncoder(out).Encode(events)
		}

		if len(events) == 0 {
			fmt.Fprintln(out, "No audit events found")
			return nil
		}

		t := cli.NewTable("TIMESTAMP", "USER", "SWITCH", "OPERATION", "GEN", "DOMAINS", "STATUS").
			WithWriter(out, cli.TerminalWidth())
		for _, event := range events {
			status := cli.Green("ok")
			if !event.Success {
				status = cli.Red("failed: " + event.Error)
			}
			t.Row(
				event.Timestamp.Format("2006-01-02 15:04:05"),
				event.User,
				event.Switch,
				event.Operation,
				fmt.Sprint(event.Generation),
				strings.Join(event.Domains, ","),
				status,
			)
		}
		t.Flush()
		return nil
	},
}

func init() {
	f := auditListCmd.Flags()
	f.StringVar(&auditFlags.switchName, "switch-name", "", "Filter by switch")
	f.StringVar(&auditFlags.user, "user", "", "Filter by user")
	f.StringVar(&auditFlags.domain, "domain", "", "Filter by changed state domain")
	f.StringVar(&auditFlags.last, "last", "", "Show events from last duration (e.g., 24h)")
	f.IntVar(&auditFlags.limit, "limit", 100, "Maximum events to show")
	f.BoolVar(&auditFlags.failures, "failures", false, "Show only failed passes")
	f.BoolVar(&auditFlags.jsonOutput, "json", false, "Print events as JSON")

	auditCmd.AddCommand(auditListCmd)
}
