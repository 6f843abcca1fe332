package cmd

import (
	"io"

	"github.com/danielolaszy/rh-issue/internal/cache"
	"github.com/danielolaszy/rh-issue/internal/config"
	"github.com/danielolaszy/rh-issue/internal/console"
	"github.com/danielolaszy/rh-issue/internal/enhance"
	"github.com/danielolaszy/rh-issue/internal/github"
	"github.com/danielolaszy/rh-issue/internal/jira"
	"github.com/danielolaszy/rh-issue/internal/logging"
	"github.com/danielolaszy/rh-issue/internal/plugin"
	"github.com/danielolaszy/rh-issue/internal/prompts"
	"github.com/danielolaszy/rh-issue/internal/provider"
)

// buildEnv wires the services a command asked for. Every error is a
// *config.Error and is returned before the command touches anything.
func buildEnv(cfg *config.Config, needs plugin.Needs, noAI bool, out *console.Printer, stdin io.Reader) (*plugin.Env, error) {
	env := &plugin.Env{Out: out, Config: cfg, Stdin: stdin}

	if needs.Has(plugin.NeedsTracker) {
		if err := config.ValidateJiraConfig(cfg); err != nil {
			return nil, err
		}
		client, err := jira.NewClient(cfg.Jira, cfg.Fields, cfg.HTTPTimeout)
		if err != nil {
			return nil, asConfigError(err)
		}
		env.Tracker = client
	}

	if needs.Has(plugin.NeedsProvider) {
		ai := cfg.AI
		if noAI {
			ai.Provider = "noop"
		}
		p, err := provider.New(ai)
		if err != nil {
			return nil, asConfigError(err)
		}
		logging.Debug("AI provider ready", "provider", provider.Normalize(ai.Provider), "model", ai.Model)
		env.Enhancer = enhance.New(p, cache.Open(cfg.CacheFile))
		env.Prompts = prompts.New(cfg.AI.PromptDir)
	}

	if needs.Has(plugin.NeedsGitHub) {
		if err := config.ValidateGitHubConfig(cfg); err != nil {
			return nil, err
		}
		client, err := github.NewClient(cfg.GitHub, cfg.HTTPTimeout)
		if err != nil {
			return nil, asConfigError(err)
		}
		env.GitHub = client
	}

	return env, nil
}
