// Package cmd provides the command-line interface for rh-issue.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/danielolaszy/rh-issue/internal/config"
	"github.com/danielolaszy/rh-issue/internal/console"
	"github.com/danielolaszy/rh-issue/internal/logging"
	"github.com/danielolaszy/rh-issue/internal/plugin"
	"github.com/danielolaszy/rh-issue/internal/plugins"
)

// Process exit codes.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitConfig      = 2
	ExitInterrupted = 130
)

// globals are the flags every command accepts.
type globals struct {
	logLevel string
	noColor  bool
	noAI     bool

	// failed is set when a command reports failure.
	failed bool
}

// Execute runs the command line in os.Args and returns the exit code.
func Execute(ctx context.Context) int {
	return run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, plugins.All())
}

func run(ctx context.Context, argv []string, stdin io.Reader, stdout, stderr io.Writer, all []plugin.Plugin) int {
	reg := plugin.NewRegistry()
	for _, p := range all {
		if err := reg.Register(p); err != nil {
			fmt.Fprintf(stderr, "❌ %v\n", err)
			return ExitConfig
		}
	}

	g := &globals{}
	root := newRootCmd(reg, g, stdin, stdout, stderr)
	root.SetArgs(argv)

	err := root.ExecuteContext(ctx)
	switch {
	case ctx.Err() != nil:
		console.New(stdout, stderr, !g.noColor).Warn("interrupted")
		return ExitInterrupted
	case err != nil:
		// Commands report their own failures; anything returned here is a
		// usage or configuration problem found before a command ran.
		logging.Debug("command rejected", "error", err)
		console.New(stdout, stderr, !g.noColor).Fail("%v", err)
		return ExitConfig
	case g.failed:
		return ExitFailure
	}
	return ExitOK
}

func newRootCmd(reg *plugin.Registry, g *globals, stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "rh-issue",
		Short: "Create, improve and triage Jira issues from the command line",
		Long: `rh-issue manages Jira issues from the command line.

Issue text (descriptions, acceptance criteria, comments) can be improved by a
configurable AI provider. Improved text is fingerprinted so unchanged fields
are never sent to the provider twice.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if g.noColor {
				color.NoColor = true
			}
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &config.Error{Reason: c.Name(), Err: err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn or error (default from JIRA_LOG_LEVEL)")
	pf.BoolVar(&g.noColor, "no-color", false, "disable colored output")
	pf.BoolVar(&g.noAI, "no-ai", false, "never call the AI provider")

	for _, group := range reg.ByCategory() {
		id := string(group.Category)
		root.AddGroup(&cobra.Group{ID: id, Title: color.New(color.Bold).Sprint(id) + ":"})
		for _, p := range group.Plugins {
			c := newPluginCmd(p, g, stdin, stdout, stderr)
			c.GroupID = id
			root.AddCommand(c)
		}
	}
	return root
}

func newPluginCmd(p plugin.Plugin, g *globals, stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	spec := plugin.NewArgSpec(p.Name())
	p.Arguments(spec)

	c := &cobra.Command{
		Use:     spec.Usage(),
		Short:   p.Help(),
		Example: indent(p.Examples()),
		Args:    cobra.ArbitraryArgs,
		// "_" is accepted for "-" in command names.
		Aliases: aliases(p.Name()),
		RunE: func(cmd *cobra.Command, argv []string) error {
			args, err := spec.Resolve(cmd.Flags(), argv)
			if err != nil {
				return err
			}

			cfg, err := config.LoadConfig()
			if err != nil {
				return asConfigError(err)
			}
			closeLog, err := setupLogging(cfg, g)
			if err != nil {
				return asConfigError(err)
			}
			defer closeLog()

			noAI := g.noAI
			if v, err := cmd.Flags().GetBool("no-ai"); err == nil && v {
				noAI = true
			}

			out := console.New(stdout, stderr, !g.noColor)
			env, err := buildEnv(cfg, plugin.NeedsOf(p), noAI, out, stdin)
			if err != nil {
				return err
			}

			logging.Debug("running command", "command", p.Name(), "args", argv, "flags", flagNames(cmd.Flags()))
			if !p.Execute(cmd.Context(), env, args) {
				g.failed = true
			}
			return nil
		},
	}
	spec.Bind(c.Flags())
	return c
}

// setupLogging points the logger at the configured level and file. The
// returned func closes the log file, if one was opened.
func setupLogging(cfg *config.Config, g *globals) (func(), error) {
	level := cfg.LogLevel
	if g.logLevel != "" {
		level = g.logLevel
	}

	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	if cfg.LogFile == "" {
		logging.SetupLogger(os.Stderr, lvl)
		return func() {}, nil
	}
	f, err := logging.OpenLogFile(cfg.LogFile)
	if err != nil {
		return nil, err
	}
	logging.SetupLogger(f, lvl)
	return func() { f.Close() }, nil
}

func asConfigError(err error) error {
	var cerr *config.Error
	if errors.As(err, &cerr) {
		return err
	}
	return &config.Error{Reason: "configuration", Err: err}
}

func aliases(name string) []string {
	if alt := strings.ReplaceAll(name, "-", "_"); alt != name {
		return []string{alt}
	}
	return nil
}

func indent(lines []string) string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = "  " + l
	}
	return strings.Join(out, "\n")
}

// flagNames lists the flags set on fs, for debug logging.
func flagNames(fs *pflag.FlagSet) []string {
	var names []string
	fs.Visit(func(f *pflag.Flag) { names = append(names, f.Name) })
	return names
}
