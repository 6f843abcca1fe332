package plugins

import (
	"context"
	"fmt"
	"strings"

	"github.com/danielolaszy/rh-issue/internal/plugin"
	"github.com/danielolaszy/rh-issue/pkg/models"
)

// closingStatuses are tried in order when retiring a migrated issue.
var closingStatuses = []string{"Done", "Closed", "Cancelled"}

func init() {
	register(func() plugin.Plugin {
		return &migrateTo{meta: meta{
			name:     "migrate-to",
			category: plugin.CategoryCreation,
			help:     "Recreate an issue as another type and close the old one",
			examples: []string{"rh-issue migrate-to story AAP-123"},
		}}
	})
}

type migrateTo struct {
	meta
	trackerOnly
}

func (c *migrateTo) Arguments(spec *plugin.ArgSpec) {
	spec.Enum("type", "type of the new issue", issueTypeNames()...)
	spec.Key("issue-key", "issue to migrate")
}

func (c *migrateTo) Execute(ctx context.Context, env *plugin.Env, args *plugin.Args) bool {
	old := args.String("issue-key")
	typ := models.IssueType(args.String("type"))

	t, err := env.Tracker.GetIssue(ctx, old)
	if err != nil {
		env.Out.Fail("%v", err)
		return false
	}

	nt := models.NewTicket{
		Project:     strings.SplitN(old, "-", 2)[0],
		Type:        typ,
		Summary:     t.Summary,
		Description: t.Description,
		Priority:    t.Priority,
	}
	if nt.Summary == "" {
		nt.Summary = "Migrated from " + old
	}
	if typ == models.TypeEpic {
		nt.EpicName = nt.Summary
	}
	key, err := env.Tracker.CreateIssue(ctx, nt)
	if err != nil {
		env.Out.Fail("%v", err)
		return false
	}

	url := browseURL(env, key)
	note := fmt.Sprintf("Migrated to %s as %s.", key, typ.JiraName())
	if url != "" {
		note = fmt.Sprintf("Migrated to [%s|%s] as %s.", key, url, typ.JiraName())
	}
	if err := env.Tracker.AddComment(ctx, old, note); err != nil {
		env.Out.Warn("could not comment on %s: %v", old, err)
	}
	if !closeIssue(ctx, env, old) {
		env.Out.Warn("%s has no Done, Closed or Cancelled transition; close it by hand", old)
	}

	env.Out.Success("Migrated %s to %s %s", old, typ.JiraName(), key)
	if url != "" {
		env.Out.Info("%s", url)
	}
	return true
}

func closeIssue(ctx context.Context, env *plugin.Env, key string) bool {
	for _, status := range closingStatuses {
		if err := env.Tracker.Transition(ctx, key, status); err == nil {
			return true
		}
	}
	return false
}
