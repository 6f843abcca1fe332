package plugins

import (
	"context"
	"os"
	"strconv"

	"github.com/danielolaszy/rh-issue/internal/plugin"
	"github.com/danielolaszy/rh-issue/pkg/models"
)

func init() {
	register(func() plugin.Plugin {
		return &createIssue{meta: meta{
			name:     "create-issue",
			category: plugin.CategoryCreation,
			help:     "Create a new issue, improving its description with AI",
			examples: []string{
				`rh-issue create-issue story "Add retry to uploads" -d "Uploads fail on flaky networks"`,
				"rh-issue create-issue bug \"Crash on login\" --file report.md --priority Major",
				"rh-issue create-issue task x --input-file ticket.yaml --dry-run",
			},
		}}
	})
}

type createIssue struct{ meta }

func (c *createIssue) Arguments(spec *plugin.ArgSpec) {
	spec.Enum("type", "issue type", issueTypeNames()...)
	spec.String("summary", "one-line summary")
	spec.StringFlag("description", "d", "", "description text")
	spec.StringFlag("file", "f", "", "read the description from a file")
	spec.StringFlag("input-file", "", "", "read the whole ticket from a JSON or YAML file")
	spec.StringFlag("priority", "p", "", "priority name, defaults to JIRA_PRIORITY")
	spec.StringFlag("story-points", "", "", "story points, stories only")
	spec.BoolFlag("dry-run", "", "print the ticket instead of creating it")
	spec.BoolFlag("quiet", "q", "print only the new key")
	declareNoAI(spec)
}

func (c *createIssue) Execute(ctx context.Context, env *plugin.Env, args *plugin.Args) bool {
	d := ticketDraft{
		Type:        args.String("type"),
		Summary:     args.String("summary"),
		Description: args.String("description"),
		Priority:    args.String("priority"),
	}

	if path := args.String("input-file"); path != "" {
		loaded, err := loadDraft(path)
		if err != nil {
			env.Out.Fail("%v", err)
			return false
		}
		d = mergeDraft(d, loaded)
	}

	if path := args.String("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			env.Out.Fail("failed to read %s: %v", path, err)
			return false
		}
		d.Description = string(data)
	}

	if args.Changed("story-points") {
		n, err := strconv.ParseFloat(args.String("story-points"), 64)
		if err != nil {
			env.Out.Fail("invalid story points %q", args.String("story-points"))
			return false
		}
		if t, _ := models.ParseIssueType(d.Type); t != models.TypeStory {
			env.Out.Warn("story points are only set on stories, ignoring them")
		}
		d.StoryPoints = &n
	}

	dryRun := args.Bool("dry-run")
	key, nt, err := createFromDraft(ctx, env, args, d, dryRun)
	if err != nil {
		env.Out.Fail("failed to create issue: %v", err)
		return false
	}

	if dryRun {
		printDraft(env, nt)
		return true
	}
	if args.Bool("quiet") {
		env.Out.Info("%s", key)
		return true
	}
	env.Out.Success("Created %s", key)
	if u := browseURL(env, key); u != "" {
		env.Out.Info("%s", u)
	}
	return true
}

// mergeDraft lets values from an input file fill in what the command line
// left empty. The positional type and summary win unless the file sets them.
func mergeDraft(cli, file ticketDraft) ticketDraft {
	out := file
	if out.Type == "" {
		out.Type = cli.Type
	}
	if out.Summary == "" {
		out.Summary = cli.Summary
	}
	if cli.Description != "" {
		out.Description = cli.Description
	}
	if cli.Priority != "" {
		out.Priority = cli.Priority
	}
	return out
}
