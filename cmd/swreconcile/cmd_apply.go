package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/newtron-network/swreconcile/pkg/agent"
	"github.com/newtron-network/swreconcile/pkg/cli"
	"github.com/newtron-network/swreconcile/pkg/publish"
	"github.com/newtron-network/swreconcile/pkg/state"
	"github.com/newtron-network/swreconcile/pkg/util"
)

var applyFlags struct {
	from        string
	jsonOutput  bool
	publishAddr string
	redisDB     int
	sshHost     string
	sshUser     string
	sshKey      string
	metricsFile string
}

var applyCmd = &cobra.Command{
	Use:   "apply <config>",
	Short: "Reconcile a configuration and print the state delta",
	Long: `Reconcile a configuration against the platform's initial state.

With --from, the earlier configuration is applied first and the delta
printed is the one between the two configurations. With --publish or
--ssh, every pass is also written to Redis as TABLE|key hashes.

Examples:
  swreconcile apply -P wedge.yaml switch.yaml
  swreconcile apply -P wedge.yaml --from old.yaml new.yaml --json
  swreconcile apply -P wedge.yaml new.yaml --publish 10.0.0.5:6379
  swreconcile apply -P wedge.yaml new.yaml --ssh rsw1 --ssh-user admin`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		plat, err := loadPlatform()
		if err != nil {
			return err
		}

		reg := prometheus.NewRegistry()
		opts := agent.Options{
			Switch:  app.switchName,
			User:    app.user,
			Metrics: agent.NewMetrics(reg),
		}
		sink, closeSink, err := openPublisher(ctx)
		if err != nil {
			return err
		}
		defer closeSink()
		if sink != nil {
			opts.Sink = sink
		}

		a, err := agent.NewApplier(plat, opts)
		if err != nil {
			return err
		}
		if applyFlags.from != "" {
			if _, err := a.ApplyFile(ctx, applyFlags.from); err != nil {
				return fmt.Errorf("applying %s: %w", applyFlags.from, err)
			}
		}
		res, err := a.ApplyFile(ctx, args[0])
		if res == nil {
			return err
		}

		if applyFlags.jsonOutput {
			if perr := printDeltaJSON(cmd.OutOrStdout(), res); perr != nil {
				return perr
			}
		} else {
			printDelta(cmd.OutOrStdout(), res)
		}
		if applyFlags.metricsFile != "" {
			if merr := prometheus.WriteToTextfile(applyFlags.metricsFile, reg); merr != nil {
				util.Warnf("Could not write metrics: %v", merr)
			}
		}
		return err
	},
}

func init() {
	f := applyCmd.Flags()
	f.StringVar(&applyFlags.from, "from", "", "Configuration applied before <config>")
	f.BoolVar(&applyFlags.jsonOutput, "json", false, "Print the delta as JSON")
	f.StringVar(&applyFlags.publishAddr, "publish", "", "Redis address to publish deltas to (default from settings)")
	f.IntVar(&applyFlags.redisDB, "redis-db", 0, "Redis database (default from settings, else 4)")
	f.StringVar(&applyFlags.sshHost, "ssh", "", "Publish to the Redis of this switch through an SSH tunnel")
	f.StringVar(&applyFlags.sshUser, "ssh-user", "", "SSH user (default from settings)")
	f.StringVar(&applyFlags.sshKey, "ssh-key", "", "SSH private key (default from settings)")
	f.StringVar(&applyFlags.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file")
	applyCmd.MarkFlagsMutuallyExclusive("publish", "ssh")
}

// openPublisher connects the Redis sink requested by flags or settings.
// It returns a nil sink when nothing is to be published.
func openPublisher(ctx context.Context) (*publish.Publisher, func(), error) {
	noop := func() {}
	addr := applyFlags.publishAddr
	if addr == "" && applyFlags.sshHost == "" {
		addr = app.settings.RedisAddr
	}
	db := applyFlags.redisDB
	if db == 0 {
		db = app.settings.RedisDB
	}
	if db == 0 {
		db = publish.DefaultDB
	}

	var tunnel *publish.Tunnel
	if applyFlags.sshHost != "" {
		cfg := publish.TunnelConfig{
			Host:       applyFlags.sshHost,
			User:       firstNonEmpty(applyFlags.sshUser, app.settings.SSHUser, app.user),
			KeyFile:    firstNonEmpty(applyFlags.sshKey, app.settings.SSHKeyFile),
			KnownHosts: app.settings.KnownHosts,
		}
		if cfg.KeyFile == "" {
			pass, err := readPassword(fmt.Sprintf("%s@%s's password: ", cfg.User, cfg.Host))
			if err != nil {
				return nil, noop, err
			}
			cfg.Password = pass
		}
		var err error
		tunnel, err = publish.NewTunnel(cfg)
		if err != nil {
			return nil, noop, err
		}
		addr = tunnel.LocalAddr()
	}
	if addr == "" {
		return nil, noop, nil
	}

	p := publish.NewPublisher(addr, db)
	closeAll := func() {
		p.Close()
		if tunnel != nil {
			tunnel.Close()
		}
	}
	if err := p.Connect(ctx); err != nil {
		closeAll()
		return nil, noop, err
	}
	return p, closeAll, nil
}

func readPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("SSH password required but stdin is not a terminal: use --ssh-key")
	}
	fmt.Fprint(os.Stderr, prompt)
	pass, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(pass), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func changeLabel(kind state.ChangeKind) string {
	switch kind {
	case state.Added:
		return cli.Green(string(kind))
	case state.Removed:
		return cli.Red(string(kind))
	default:
		return cli.Yellow(string(kind))
	}
}

func printDelta(w io.Writer, res *agent.Result) {
	if !res.Changed() {
		fmt.Fprintln(w, "No changes")
		return
	}
	fmt.Fprintf(w, "%s generation %d, %d entries in %d domains\n\n",
		cli.Bold("State"), res.New.Generation(), len(res.Entries), len(res.Domains))
	t := cli.NewTable("DOMAIN", "KEY", "CHANGE").WithWriter(w, cli.TerminalWidth())
	for _, e := range res.Entries {
		t.Row(e.Domain, e.Key, changeLabel(e.Kind))
	}
	t.Flush()
}

type jsonEntry struct {
	Domain string            `json:"domain"`
	Key    string            `json:"key"`
	Kind   state.ChangeKind  `json:"kind"`
	Fields map[string]string `json:"fields,omitempty"`
}

type jsonDelta struct {
	Generation uint64      `json:"generation"`
	Domains    []string    `json:"domains"`
	Entries    []jsonEntry `json:"entries"`
}

func printDeltaJSON(w io.Writer, res *agent.Result) error {
	out := jsonDelta{
		Generation: res.New.Generation(),
		Domains:    res.Domains,
		Entries:    []jsonEntry{},
	}
	if out.Domains == nil {
		out.Domains = []string{}
	}
	for _, e := range res.Entries {
		je := jsonEntry{Domain: e.Domain, Key: e.Key, Kind: e.Kind}
		if e.New != nil {
			fields, err := publish.HashFields(e.New)
			if err != nil {
				return fmt.Errorf("rendering %s %s: %w", e.Domain, e.Key, err)
			}
			je.Fields = fields
		}
		out.Entries = append(out.Entries, je)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
