package plugins

import (
	"context"

	"github.com/danielolaszy/rh-issue/internal/plugin"
)

func init() {
	register(func() plugin.Plugin {
		return &assign{meta: meta{
			name:     "assign",
			category: plugin.CategoryModification,
			help:     "Assign an issue to a user",
			examples: []string{"rh-issue assign AAP-123 jdoe"},
		}}
	})
	register(func() plugin.Plugin {
		return &unassign{meta: meta{
			name:     "unassign",
			category: plugin.CategoryModification,
			help:     "Remove an issue's assignee",
			examples: []string{"rh-issue unassign AAP-123"},
		}}
	})
}

type assign struct {
	meta
	trackerOnly
}

func (c *assign) Arguments(spec *plugin.ArgSpec) {
	spec.Key("issue-key", "issue to assign")
	spec.String("user", "user name")
}

func (c *assign) Execute(ctx context.Context, env *plugin.Env, args *plugin.Args) bool {
	key, user := args.String("issue-key"), args.String("user")
	if err := env.Tracker.Assign(ctx, key, user); err != nil {
		env.Out.Fail("%v", err)
		return false
	}
	env.Out.Success("Assigned %s to %s", key, user)
	return true
}

type unassign struct {
	meta
	trackerOnly
}

func (c *unassign) Arguments(spec *plugin.ArgSpec) {
	spec.Key("issue-key", "issue to unassign")
}

func (c *unassign) Execute(ctx context.Context, env *plugin.Env, args *plugin.Args) bool {
	key := args.String("issue-key")
	if err := env.Tracker.Assign(ctx, key, ""); err != nil {
		env.Out.Fail("%v", err)
		return false
	}
	env.Out.Success("Unassigned %s", key)
	return true
}
