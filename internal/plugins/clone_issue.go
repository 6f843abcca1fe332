package plugins

import (
	"context"
	"strings"

	"github.com/danielolaszy/rh-issue/internal/logging"
	"github.com/danielolaszy/rh-issue/internal/plugin"
	"github.com/danielolaszy/rh-issue/pkg/models"
)

const clonePrefix = "CLONE - "

func init() {
	register(func() plugin.Plugin {
		return &cloneIssue{meta: meta{
			name:     "clone-issue",
			category: plugin.CategoryCreation,
			help:     "Copy an issue into a new one linked as its clone",
			examples: []string{
				"rh-issue clone-issue AAP-123",
				`rh-issue clone-issue AAP-123 --summary "Retry uploads (2.6)"`,
			},
		}}
	})
}

type cloneIssue struct {
	meta
	trackerOnly
}

func (c *cloneIssue) Arguments(spec *plugin.ArgSpec) {
	spec.Key("issue-key", "issue to clone")
	spec.StringFlag("summary", "s", "", `summary of the copy (default "CLONE - <summary>")`)
}

func (c *cloneIssue) Execute(ctx context.Context, env *plugin.Env, args *plugin.Args) bool {
	source := args.String("issue-key")
	t, err := env.Tracker.GetIssue(ctx, source)
	if err != nil {
		env.Out.Fail("%v", err)
		return false
	}

	nt := cloneTicket(t, args.String("summary"))
	key, err := env.Tracker.CreateIssue(ctx, nt)
	if err != nil {
		env.Out.Fail("%v", err)
		return false
	}

	// The copy is the outward "clones" side of the link.
	if err := env.Tracker.AddLink(ctx, "Cloners", source, key); err != nil {
		logging.Warn("failed to link clone", "source", source, "clone", key, "error", err)
		env.Out.Warn("created %s but could not link it to %s: %v", key, source, err)
	}
	if strings.TrimSpace(t.AcceptanceCriteria) != "" {
		if err := env.Tracker.SetField(ctx, key, models.FieldAcceptanceCriteria, t.AcceptanceCriteria); err != nil {
			env.Out.Warn("created %s but could not copy the acceptance criteria: %v", key, err)
		}
	}

	env.Out.Success("Cloned %s as %s", source, key)
	if url := browseURL(env, key); url != "" {
		env.Out.Info("%s", url)
	}
	return true
}

// cloneTicket builds the create payload for a copy of t. The project is taken
// from t's key.
func cloneTicket(t *models.Ticket, summary string) models.NewTicket {
	if summary == "" {
		summary = clonePrefix + t.Summary
	}
	typ, _ := models.ParseIssueType(t.Type)
	nt := models.NewTicket{
		Project:     strings.SplitN(t.Key, "-", 2)[0],
		Type:        typ,
		Summary:     summary,
		Description: t.Description,
		Priority:    t.Priority,
		StoryPoints: t.StoryPoints,
		Epic:        t.Epic,
	}
	if len(t.Components) > 0 {
		nt.Component = t.Components[0]
	}
	if typ == models.TypeEpic {
		nt.EpicName = summary
		nt.Epic = ""
	}
	return nt
}
