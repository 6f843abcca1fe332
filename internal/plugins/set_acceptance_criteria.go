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
		return &setAcceptanceCriteria{meta: meta{
			name:     "set-acceptance-criteria",
			category: plugin.CategoryModification,
			help:     "Set an issue's acceptance criteria",
			examples: []string{
				`rh-issue set-acceptance-criteria AAP-123 "Uploads retry three times"`,
				"rh-issue set-acceptance-criteria AAP-123 --ai-from-description",
			},
		}}
	})
}

type setAcceptanceCriteria struct{ meta }

func (c *setAcceptanceCriteria) Arguments(spec *plugin.ArgSpec) {
	spec.Key("issue-key", "issue to update")
	spec.Rest("text", "acceptance criteria", false)
	spec.BoolFlag("ai-from-description", "", "generate the criteria from the description")
	declareNoAI(spec)
}

func (c *setAcceptanceCriteria) Execute(ctx context.Context, env *plugin.Env, args *plugin.Args) bool {
	key := args.String("issue-key")
	field := models.FieldAcceptanceCriteria

	var text string
	generated := false
	if args.Bool("ai-from-description") {
		if args.Bool(noAIFlag) || env.Enhancer == nil || env.Enhancer.Disabled() {
			env.Out.Fail("--ai-from-description needs an AI provider")
			return false
		}
		desc, err := env.Tracker.GetField(ctx, key, models.FieldDescription)
		if err != nil {
			env.Out.Fail("%v", err)
			return false
		}
		if strings.TrimSpace(desc) == "" {
			env.Out.Fail("%s has no description to work from", key)
			return false
		}
		r := env.Enhancer.Improve(ctx, "", field, prompts.AcceptanceCriteriaFromDescription(), desc)
		if r.Err != nil {
			env.Out.Fail("could not generate acceptance criteria: %v", r.Err)
			return false
		}
		text = r.Text
		generated = true
	} else {
		text = args.Text("text")
		if strings.TrimSpace(text) == "" {
			env.Out.Fail("no acceptance criteria given")
			return false
		}
		text = improve(ctx, env, args, key, field, library(env).For(prompts.KindAcceptanceCriteria), text)
	}

	if err := env.Tracker.SetField(ctx, key, field, text); err != nil {
		env.Out.Fail("%v", err)
		return false
	}
	if generated {
		env.Enhancer.Remember(key, field, text)
	}
	env.Out.Success("Updated acceptance criteria of %s", key)
	return true
}
