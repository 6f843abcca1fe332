package plugins

import (
	"context"

	"github.com/danielolaszy/rh-issue/internal/plugin"
	"github.com/danielolaszy/rh-issue/pkg/models"
)

func init() {
	register(func() plugin.Plugin {
		return &listBlocked{meta: meta{
			name:     "list-blocked",
			category: plugin.CategorySearch,
			help:     "List blocked issues and why they are blocked",
			examples: []string{"rh-issue list-blocked --assignee jdoe"},
		}}
	})
}

type listBlocked struct {
	meta
	trackerOnly
}

func (c *listBlocked) Arguments(spec *plugin.ArgSpec) {
	declareFilters(spec)
}

func (c *listBlocked) Execute(ctx context.Context, env *plugin.Env, args *plugin.Args) bool {
	tickets, err := env.Tracker.Search(ctx, issueQuery(env, args), args.Int("max-results"))
	if err != nil {
		env.Out.Fail("%v", err)
		return false
	}

	var blocked []models.Ticket
	for _, t := range tickets {
		if t.Blocked {
			blocked = append(blocked, t)
		}
	}
	if len(blocked) == 0 {
		env.Out.Success("No blocked issues")
		return true
	}

	rows := make([][]string, 0, len(blocked))
	for _, t := range blocked {
		rows = append(rows, []string{t.Key, orDash(t.Status), orDash(t.Assignee), orDash(truncate(t.BlockedReason, 50)), truncate(t.Summary, 50)})
	}
	env.Out.Table([]string{"key", "status", "assignee", "reason", "summary"}, rows)
	return true
}
