package plugins

import (
	"context"
	"strings"

	"github.com/danielolaszy/rh-issue/internal/plugin"
	"github.com/danielolaszy/rh-issue/internal/prompts"
)

func init() {
	register(func() plugin.Plugin {
		return &addComment{meta: meta{
			name:     "add-comment",
			category: plugin.CategoryModification,
			help:     "Comment on an issue",
			examples: []string{
				`rh-issue add-comment AAP-123 "Merged the fix, waiting on QE"`,
				"rh-issue add-comment AAP-123 --file update.md --no-ai",
			},
		}}
	})
}

type addComment struct{ meta }

func (c *addComment) Arguments(spec *plugin.ArgSpec) {
	spec.Key("issue-key", "issue to comment on")
	spec.Rest("text", "comment text", false)
	spec.StringFlag("file", "f", "", "read the comment from a file")
	spec.BoolFlag("stdin", "", "read the comment from standard input")
	declareNoAI(spec)
}

func (c *addComment) Execute(ctx context.Context, env *plugin.Env, args *plugin.Args) bool {
	key := args.String("issue-key")
	text, err := readInput(env, args, "text")
	if err != nil {
		env.Out.Fail("%v", err)
		return false
	}
	if strings.TrimSpace(text) == "" {
		env.Out.Fail("no comment given")
		return false
	}

	// Comments are append-only, so there is no stored field to compare with.
	text = improve(ctx, env, args, "", "comment", library(env).For(prompts.KindComment), text)
	if err := env.Tracker.AddComment(ctx, key, text); err != nil {
		env.Out.Fail("%v", err)
		return false
	}
	env.Out.Success("Commented on %s", key)
	return true
}
