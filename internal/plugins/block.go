package plugins

import (
	"context"

	"github.com/danielolaszy/rh-issue/internal/plugin"
	"github.com/danielolaszy/rh-issue/pkg/models"
)

func init() {
	register(func() plugin.Plugin {
		return &block{meta: meta{
			name:     "block",
			category: plugin.CategoryBlocking,
			help:     "Mark an issue as blocked",
			examples: []string{`rh-issue block AAP-123 "Waiting on the storage team"`},
		}}
	})
	register(func() plugin.Plugin {
		return &unblock{meta: meta{
			name:     "unblock",
			category: plugin.CategoryBlocking,
			help:     "Clear an issue's blocked flag and reason",
			examples: []string{"rh-issue unblock AAP-123"},
		}}
	})
}

type block struct {
	meta
	trackerOnly
}

func (c *block) Arguments(spec *plugin.ArgSpec) {
	spec.Key("issue-key", "issue to block")
	spec.Rest("reason", "why the issue is blocked", true)
}

func (c *block) Execute(ctx context.Context, env *plugin.Env, args *plugin.Args) bool {
	key := args.String("issue-key")
	err := env.Tracker.SetFields(ctx, key, map[string]any{
		models.FieldBlocked:       true,
		models.FieldBlockedReason: args.Text("reason"),
	})
	if err != nil {
		env.Out.Fail("%v", err)
		return false
	}
	env.Out.Success("Marked %s as blocked", key)
	return true
}

type unblock struct {
	meta
	trackerOnly
}

func (c *unblock) Arguments(spec *plugin.ArgSpec) {
	spec.Key("issue-key", "issue to unblock")
}

func (c *unblock) Execute(ctx context.Context, env *plugin.Env, args *plugin.Args) bool {
	key := args.String("issue-key")
	err := env.Tracker.SetFields(ctx, key, map[string]any{
		models.FieldBlocked:       false,
		models.FieldBlockedReason: "",
	})
	if err != nil {
		env.Out.Fail("%v", err)
		return false
	}
	env.Out.Success("Unblocked %s", key)
	return true
}
