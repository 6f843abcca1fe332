package plugins

import (
	"context"
	"fmt"
	"strings"

	"github.com/danielolaszy/rh-issue/internal/plugin"
	"github.com/danielolaszy/rh-issue/pkg/models"
)

func init() {
	register(func() plugin.Plugin {
		return &viewIssue{meta: meta{
			name:     "view-issue",
			category: plugin.CategorySearch,
			help:     "Show an issue's fields",
			examples: []string{"rh-issue view-issue AAP-123"},
		}}
	})
}

type viewIssue struct {
	meta
	trackerOnly
}

func (c *viewIssue) Arguments(spec *plugin.ArgSpec) {
	spec.Key("issue-key", "issue to show")
}

func (c *viewIssue) Execute(ctx context.Context, env *plugin.Env, args *plugin.Args) bool {
	t, err := env.Tracker.GetIssue(ctx, args.String("issue-key"))
	if err != nil {
		env.Out.Fail("%v", err)
		return false
	}

	env.Out.Heading("%s: %s", t.Key, t.Summary)
	env.Out.Field("Type", t.Type)
	env.Out.Field("Status", t.Status)
	env.Out.Field("Priority", t.Priority)
	env.Out.Field("Assignee", t.Assignee)
	env.Out.Field("Reporter", t.Reporter)
	env.Out.Field("Story points", storyPoints(t))
	env.Out.Field("Sprint", t.Sprint)
	env.Out.Field("Epic", t.Epic)
	env.Out.Field("Components", strings.Join(t.Components, ", "))
	if t.Blocked {
		env.Out.Field("Blocked", "yes")
		env.Out.Field("Blocked reason", t.BlockedReason)
	} else {
		env.Out.Field("Blocked", "no")
	}
	if u := browseURL(env, t.Key); u != "" {
		env.Out.Field("URL", u)
	}
	env.Out.Block("Description", t.Description)
	env.Out.Block("Acceptance criteria", t.AcceptanceCriteria)
	return true
}

func storyPoints(t *models.Ticket) string {
	if t.StoryPoints == nil {
		return ""
	}
	return fmt.Sprintf("%g", *t.StoryPoints)
}

var ticketHeaders = []string{"key", "type", "status", "priority", "assignee", "summary"}

func ticketRows(tickets []models.Ticket) [][]string {
	rows := make([][]string, 0, len(tickets))
	for _, t := range tickets {
		rows = append(rows, []string{
			t.Key,
			orDash(t.Type),
			orDash(t.Status),
			orDash(t.Priority),
			orDash(t.Assignee),
			truncate(t.Summary, 60),
		})
	}
	return rows
}
