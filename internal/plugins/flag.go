package plugins

import (
	"context"

	"github.com/danielolaszy/rh-issue/internal/plugin"
)

func init() {
	register(func() plugin.Plugin {
		return &boardFlag{on: true, meta: meta{
			name:     "add-flag",
			category: plugin.CategoryBlocking,
			help:     "Flag an issue on its board",
			examples: []string{"rh-issue add-flag AAP-123"},
		}}
	})
	register(func() plugin.Plugin {
		return &boardFlag{meta: meta{
			name:     "remove-flag",
			category: plugin.CategoryBlocking,
			help:     "Remove an issue's board flag",
			examples: []string{"rh-issue remove-flag AAP-123"},
		}}
	})
}

// boardFlag sets or clears the board flag, depending on on.
type boardFlag struct {
	meta
	trackerOnly
	on bool
}

func (c *boardFlag) Arguments(spec *plugin.ArgSpec) {
	spec.Key("issue-key", "issue to flag")
}

func (c *boardFlag) Execute(ctx context.Context, env *plugin.Env, args *plugin.Args) bool {
	key := args.String("issue-key")
	if err := env.Tracker.SetFlag(ctx, key, c.on); err != nil {
		env.Out.Fail("%v", err)
		return false
	}
	if c.on {
		env.Out.Success("Flagged %s", key)
	} else {
		env.Out.Success("Removed the flag from %s", key)
	}
	return true
}
