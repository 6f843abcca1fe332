package plugins

import (
	"context"
	"errors"
	"path/filepath"
	"sort"

	"github.com/danielolaszy/rh-issue/internal/cache"
	"github.com/danielolaszy/rh-issue/internal/config"
	"github.com/danielolaszy/rh-issue/internal/plugin"
)

func init() {
	register(func() plugin.Plugin {
		return &configCommand{meta: meta{
			name:     "config",
			category: plugin.CategoryUtilities,
			help:     "Show or initialize the configuration file",
			examples: []string{
				"rh-issue config show",
				"rh-issue config init --force",
				"rh-issue config path",
			},
		}}
	})
	register(func() plugin.Plugin {
		return &cacheClear{meta: meta{
			name:     "cache-clear",
			category: plugin.CategoryUtilities,
			help:     "Forget stored enhancement fingerprints",
			examples: []string{
				"rh-issue cache-clear AAP-123",
				"rh-issue cache-clear --all",
			},
		}}
	})
}

type configCommand struct {
	meta
	local
}

func (c *configCommand) Arguments(spec *plugin.ArgSpec) {
	spec.Enum("action", "what to do", "show", "init", "path")
	spec.BoolFlag("force", "", "overwrite an existing file on init")
}

func (c *configCommand) Execute(ctx context.Context, env *plugin.Env, args *plugin.Args) bool {
	path := filepath.Join(env.Config.ConfigDir, config.ConfigFileName)

	switch args.String("action") {
	case "path":
		env.Out.Info("%s", path)
		return true

	case "init":
		err := config.WriteSettings(path, env.Config.Settings(), args.Bool("force"))
		if errors.Is(err, config.ErrSettingsExist) {
			env.Out.Fail("%s already exists, pass --force to overwrite it", path)
			return false
		}
		if err != nil {
			env.Out.Fail("%v", err)
			return false
		}
		env.Out.Success("Wrote %s", path)
		return true
	}

	data, err := env.Config.Settings().Marshal()
	if err != nil {
		env.Out.Fail("%v", err)
		return false
	}
	if env.Config.ConfigFile != "" {
		env.Out.Heading("# %s", env.Config.ConfigFile)
	} else {
		env.Out.Heading("# defaults and environment (no %s)", path)
	}
	env.Out.Info("%s", data)

	secrets := env.Config.Secrets()
	names := make([]string, 0, len(secrets))
	for name := range secrets {
		names = append(names, name)
	}
	sort.Strings(names)
	env.Out.Heading("# credentials")
	for _, name := range names {
		env.Out.Field(name, secrets[name])
	}
	return true
}

type cacheClear struct {
	meta
	local
}

func (c *cacheClear) Arguments(spec *plugin.ArgSpec) {
	spec.OptionalKey("issue-key", "issue whose fingerprints to drop")
	spec.BoolFlag("all", "", "drop every fingerprint")
}

func (c *cacheClear) Execute(ctx context.Context, env *plugin.Env, args *plugin.Args) bool {
	key := args.String("issue-key")
	all := args.Bool("all")
	if key == "" && !all {
		env.Out.Fail("give an issue key or --all")
		return false
	}
	if key != "" && all {
		env.Out.Fail("give either an issue key or --all, not both")
		return false
	}

	store := cache.Open(env.Config.CacheFile)
	if all {
		n := store.ClearAll()
		env.Out.Success("Cleared %d cached issue(s) from %s", n, store.Path())
		return true
	}
	if store.Clear(key) {
		env.Out.Success("Cleared cached fingerprints of %s", key)
	} else {
		env.Out.Info("Nothing cached for %s", key)
	}
	return true
}
