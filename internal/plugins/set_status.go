package plugins

import (
	"context"

	"github.com/danielolaszy/rh-issue/internal/plugin"
)

func init() {
	register(func() plugin.Plugin {
		return &setStatus{meta: meta{
			name:     "set-status",
			category: plugin.CategoryModification,
			help:     "Move an issue through its workflow",
			examples: []string{`rh-issue set-status AAP-123 "In Progress"`},
		}}
	})
}

type setStatus struct {
	meta
	trackerOnly
}

func (c *setStatus) Arguments(spec *plugin.ArgSpec) {
	spec.Key("issue-key", "issue to move")
	spec.Rest("status", "target status or transition name", true)
}

func (c *setStatus) Execute(ctx context.Context, env *plugin.Env, args *plugin.Args) bool {
	key, status := args.String("issue-key"), args.Text("status")
	if err := env.Tracker.Transition(ctx, key, status); err != nil {
		env.Out.Fail("%v", err)
		return false
	}
	env.Out.Success("Moved %s to %s", key, status)
	return true
}
