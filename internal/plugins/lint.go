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
		return &lint{meta: meta{
			name:     "lint",
			category: plugin.CategoryQuality,
			help:     "Check an issue for missing fields and unclear text",
			examples: []string{
				"rh-issue lint AAP-123",
				"rh-issue lint AAP-123 --no-ai",
			},
		}}
	})
}

type lint struct{ meta }

func (c *lint) Arguments(spec *plugin.ArgSpec) {
	spec.Key("issue-key", "issue to check")
	spec.BoolFlag("no-cache", "", "review text even if it passed before")
	declareNoAI(spec)
}

func (c *lint) Execute(ctx context.Context, env *plugin.Env, args *plugin.Args) bool {
	t, err := env.Tracker.GetIssue(ctx, args.String("issue-key"))
	if err != nil {
		env.Out.Fail("%v", err)
		return false
	}

	problems := lintTicket(ctx, env, args, t)
	if len(problems) == 0 {
		env.Out.Success("%s passed all checks", t.Key)
		return true
	}
	env.Out.Heading("%s has %d problem(s):", t.Key, len(problems))
	for _, p := range problems {
		env.Out.Info("  %s", p)
	}
	return false
}

func isStatus(t *models.Ticket, names ...string) bool {
	for _, n := range names {
		if strings.EqualFold(t.Status, n) {
			return true
		}
	}
	return false
}

// lintTicket returns one line per problem found on t.
func lintTicket(ctx context.Context, env *plugin.Env, args *plugin.Args, t *models.Ticket) []string {
	var problems []string
	inProgress := isStatus(t, "In Progress")
	early := isStatus(t, "New", "Refinement")

	if inProgress && t.Assignee == "" {
		problems = append(problems, "❌ Issue is In Progress but unassigned")
	}
	if !strings.EqualFold(t.Type, "Epic") && !early && t.Epic == "" {
		problems = append(problems, "❌ Issue has no assigned Epic")
	}
	if inProgress && t.Sprint == "" {
		problems = append(problems, "❌ Issue is In Progress but not assigned to a Sprint")
	}
	if t.Priority == "" {
		problems = append(problems, "❌ Priority not set")
	}
	if !early && t.StoryPoints == nil {
		problems = append(problems, "❌ Story points not assigned")
	}
	if t.Blocked && strings.TrimSpace(t.BlockedReason) == "" {
		problems = append(problems, "❌ Issue is blocked but has no blocked reason")
	}

	return append(problems, reviewTicket(ctx, env, args, t)...)
}

// reviewTicket asks the provider about the ticket's text fields. Provider
// failures are warnings, not problems.
func reviewTicket(ctx context.Context, env *plugin.Env, args *plugin.Args, t *models.Ticket) []string {
	if args.Bool(noAIFlag) || env.Enhancer == nil || env.Enhancer.Disabled() {
		return nil
	}

	review := env.Enhancer.Review
	if args.Bool("no-cache") {
		review = env.Enhancer.Recheck
	}

	var problems []string
	for _, f := range []struct{ field, label string }{
		{models.FieldSummary, "Summary"},
		{models.FieldDescription, "Description"},
		{models.FieldAcceptanceCriteria, "Acceptance Criteria"},
	} {
		text := t.Field(f.field)
		if strings.TrimSpace(text) == "" {
			continue
		}
		r := review(ctx, t.Key, f.field, prompts.Review(f.label), text)
		switch {
		case r.Err != nil:
			env.Out.Warn("%s: could not review %s: %v", t.Key, strings.ToLower(f.label), r.Err)
		case !r.OK():
			problems = append(problems, "❌ "+f.label+": "+r.Reply)
		}
	}
	return problems
}
