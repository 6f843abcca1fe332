package plugins

import (
	"context"
	"strings"

	"github.com/danielolaszy/rh-issue/internal/plugin"
	"github.com/danielolaszy/rh-issue/internal/prompts"
	"github.com/danielolaszy/rh-issue/pkg/models"
)

func init() {
	register(func() plugin.Plugin {
		return &updateDescription{meta: meta{
			name:     "update-description",
			category: plugin.CategoryCreation,
			help:     "Replace an issue's description",
			examples: []string{
				`rh-issue update-description AAP-123 "The new description"`,
				"rh-issue update-description AAP-123 --file notes.md",
				"cat notes.md | rh-issue update-description AAP-123 --stdin",
			},
		}}
	})
}

type updateDescription struct{ meta }

func (c *updateDescription) Arguments(spec *plugin.ArgSpec) {
	spec.Key("issue-key", "issue to update")
	spec.Rest("text", "description text", false)
	spec.StringFlag("file", "f", "", "read the description from a file")
	spec.BoolFlag("stdin", "", "read the description from standard input")
	declareNoAI(spec)
}

func (c *updateDescription) Execute(ctx context.Context, env *plugin.Env, args *plugin.Args) bool {
	key := args.String("issue-key")
	text, err := readInput(env, args, "text")
	if err != nil {
		env.Out.Fail("%v", err)
		return false
	}
	if strings.TrimSpace(text) == "" {
		env.Out.Fail("no description given: pass text, --file or --stdin")
		return false
	}

	prompt := library(env).For(prompts.KindDefault)
	if ticket, err := env.Tracker.GetIssue(ctx, key); err == nil {
		t, _ := models.ParseIssueType(ticket.Type)
		prompt = library(env).ForIssueType(t)
	}

	text = improve(ctx, env, args, key, models.FieldDescription, prompt, text)
	if err := env.Tracker.SetField(ctx, key, models.FieldDescription, text); err != nil {
		env.Out.Fail("%v", err)
		return false
	}
	env.Out.Success("Updated description of %s", key)
	return true
}
