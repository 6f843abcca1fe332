package plugins

import (
	"context"

	"github.com/danielolaszy/rh-issue/internal/plugin"
	"github.com/danielolaszy/rh-issue/pkg/models"
)

func init() {
	register(func() plugin.Plugin {
		return &setWorkstream{meta: meta{
			name:     "set-workstream",
			category: plugin.CategoryModification,
			help:     "Set an issue's workstream",
			examples: []string{
				"rh-issue set-workstream AAP-123",
				"rh-issue set-workstream AAP-123 --workstream-id 4711",
			},
		}}
	})
}

type setWorkstream struct {
	meta
	trackerOnly
}

func (c *setWorkstream) Arguments(spec *plugin.ArgSpec) {
	spec.Key("issue-key", "issue to update")
	spec.StringFlag("workstream-id", "", "", "workstream id (default JIRA_WORKSTREAM_ID)")
}

func (c *setWorkstream) Execute(ctx context.Context, env *plugin.Env, args *plugin.Args) bool {
	key := args.String("issue-key")
	id := args.String("workstream-id")
	if id == "" {
		id = env.Config.Jira.WorkstreamID
	}
	if id == "" {
		env.Out.Fail("no --workstream-id given and JIRA_WORKSTREAM_ID is not set")
		return false
	}

	if err := env.Tracker.SetField(ctx, key, models.FieldWorkstream, id); err != nil {
		env.Out.Fail("%v", err)
		return false
	}
	env.Out.Success("Set workstream of %s to %s", key, id)
	return true
}
