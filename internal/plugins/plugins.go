// Package plugins holds the command handlers. Each file registers one
// command from init; the command line front end picks them up through All.
package plugins

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/danielolaszy/rh-issue/internal/plugin"
	"github.com/danielolaszy/rh-issue/internal/prompts"
	"github.com/danielolaszy/rh-issue/pkg/models"
)

var factories []func() plugin.Plugin

func register(factory func() plugin.Plugin) {
	factories = append(factories, factory)
}

// All returns a fresh instance of every command.
func All() []plugin.Plugin {
	out := make([]plugin.Plugin, 0, len(factories))
	for _, f := range factories {
		out = append(out, f())
	}
	return out
}

// meta implements the descriptive half of plugin.Plugin.
type meta struct {
	name     string
	category plugin.Category
	help     string
	examples []string
}

func (m meta) Name() string              { return m.name }
func (m meta) Category() plugin.Category { return m.category }
func (m meta) Help() string              { return m.help }
func (m meta) Examples() []string        { return m.examples }

// local marks commands that touch neither Jira nor a provider.
type local struct{}

func (local) Needs() plugin.Needs { return plugin.NeedsNothing }

// trackerOnly marks commands that never generate text.
type trackerOnly struct{}

func (trackerOnly) Needs() plugin.Needs { return plugin.NeedsTracker }

const noAIFlag = "no-ai"

func declareNoAI(spec *plugin.ArgSpec) {
	spec.BoolFlag(noAIFlag, "", "skip AI text improvement")
}

// improve runs text through the enhancer unless --no-ai was given or no
// enhancer is wired. A provider failure is reported as a warning and the
// original text is kept.
func improve(ctx context.Context, env *plugin.Env, args *plugin.Args, key, field, prompt, text string) string {
	out, _ := tryImprove(ctx, env, args, key, field, prompt, text)
	return out
}

// tryImprove is improve that also reports whether the returned text came
// from the provider or the cache.
func tryImprove(ctx context.Context, env *plugin.Env, args *plugin.Args, key, field, prompt, text string) (string, bool) {
	if args.Bool(noAIFlag) || env.Enhancer == nil || strings.TrimSpace(text) == "" {
		return text, false
	}
	r := env.Enhancer.Improve(ctx, key, field, prompt, text)
	if r.Err != nil {
		env.Out.Warn("AI enhancement failed, keeping the original text: %v", r.Err)
		return r.Text, false
	}
	return r.Text, true
}

// library returns env's prompt library, falling back to the built-in one.
func library(env *plugin.Env) *prompts.Library {
	if env.Prompts != nil {
		return env.Prompts
	}
	return prompts.New("")
}

// readInput returns text from --file, from stdin with --stdin, or the joined
// variadic positional name, in that order.
func readInput(env *plugin.Env, args *plugin.Args, name string) (string, error) {
	if path := args.String("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}
		return string(data), nil
	}
	if args.Bool("stdin") {
		in := env.Stdin
		if in == nil {
			in = os.Stdin
		}
		data, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	return args.Text(name), nil
}

func issueTypeNames() []string {
	names := make([]string, len(models.IssueTypes))
	for i, t := range models.IssueTypes {
		names[i] = string(t)
	}
	return names
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func browseURL(env *plugin.Env, key string) string {
	if env.Config == nil || env.Config.Jira.URL == "" {
		return ""
	}
	return strings.TrimRight(env.Config.Jira.URL, "/") + "/browse/" + key
}
