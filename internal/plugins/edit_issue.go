package plugins

import (
	"context"

	"github.com/danielolaszy/rh-issue/internal/plugin"
	"github.com/danielolaszy/rh-issue/internal/prompts"
	"github.com/danielolaszy/rh-issue/pkg/models"
)

func init() {
	register(func() plugin.Plugin {
		return &editIssue{meta: meta{
			name:     "edit-issue",
			category: plugin.CategoryCreation,
			help:     "Improve an issue's description and acceptance criteria",
			examples: []string{
				"rh-issue edit-issue AAP-123",
				`rh-issue edit-issue AAP-123 --description "New text"`,
			},
		}}
	})
}

type editIssue struct{ meta }

func (c *editIssue) Arguments(spec *plugin.ArgSpec) {
	spec.Key("issue-key", "issue to edit")
	spec.StringFlag("description", "d", "", "replace the description")
	spec.StringFlag("acceptance-criteria", "a", "", "replace the acceptance criteria")
	declareNoAI(spec)
}

func (c *editIssue) Execute(ctx context.Context, env *plugin.Env, args *plugin.Args) bool {
	key := args.String("issue-key")
	ticket, err := env.Tracker.GetIssue(ctx, key)
	if err != nil {
		env.Out.Fail("%v", err)
		return false
	}

	t, _ := models.ParseIssueType(ticket.Type)
	lib := library(env)
	fields := []struct {
		field  string
		flag   string
		prompt string
	}{
		{models.FieldDescription, "description", lib.ForIssueType(t)},
		{models.FieldAcceptanceCriteria, "acceptance-criteria", lib.For(prompts.KindAcceptanceCriteria)},
	}

	updates := make(map[string]any)
	for _, f := range fields {
		current := ticket.Field(f.field)
		text := current
		if args.Changed(f.flag) {
			text = args.String(f.flag)
		}
		out := improve(ctx, env, args, key, f.field, f.prompt, text)
		if out != current {
			updates[f.field] = out
		}
	}

	if len(updates) == 0 {
		env.Out.Info("%s is up to date", key)
		return true
	}
	if err := env.Tracker.SetFields(ctx, key, updates); err != nil {
		env.Out.Fail("%v", err)
		return false
	}
	env.Out.Success("Updated %s", key)
	return true
}
