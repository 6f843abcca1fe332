package plugins

import (
	"context"
	"fmt"
	"strings"

	"github.com/danielolaszy/rh-issue/internal/logging"
	"github.com/danielolaszy/rh-issue/internal/plugin"
	"github.com/danielolaszy/rh-issue/pkg/models"
)

func init() {
	register(func() plugin.Plugin {
		return &importGitHub{meta: meta{
			name:     "import-github",
			category: plugin.CategoryCreation,
			help:     "Create issues from GitHub issues",
			examples: []string{
				"rh-issue import-github acme/app 12 15",
				"rh-issue import-github acme/app --label bug --type bug --tag",
			},
		}}
	})
}

type importGitHub struct{ meta }

func (c *importGitHub) Needs() plugin.Needs {
	return plugin.DefaultNeeds | plugin.NeedsGitHub
}

func (c *importGitHub) Arguments(spec *plugin.ArgSpec) {
	spec.String("repository", "GitHub repository as owner/name")
	spec.RestInts("numbers", "issue numbers; all matching issues when omitted", false)
	spec.EnumFlag("type", "task", "issue type to create", issueTypeNames()...)
	spec.EnumFlag("state", "open", "GitHub issue state to import", "open", "closed", "all")
	spec.StringsFlag("label", "l", "only import issues carrying this label")
	spec.BoolFlag("tag", "", "label imported GitHub issues with their new key")
	spec.BoolFlag("dry-run", "", "print what would be created")
	declareNoAI(spec)
}

func (c *importGitHub) Execute(ctx context.Context, env *plugin.Env, args *plugin.Args) bool {
	repo := args.String("repository")
	var report plugin.BatchReport

	if numbers := args.Ints("numbers"); len(numbers) > 0 {
		for _, n := range numbers {
			issue, err := env.GitHub.GetIssue(ctx, repo, n)
			if err != nil {
				report.Fail(fmt.Sprintf("%s#%d", repo, n), err)
				continue
			}
			c.importOne(ctx, env, args, repo, *issue, &report)
		}
		return report.Print(env.Out)
	}

	issues, err := env.GitHub.ListIssues(ctx, repo, args.String("state"), args.Strings("label"))
	if err != nil {
		env.Out.Fail("%v", err)
		return false
	}
	if len(issues) == 0 {
		env.Out.Info("no matching issues in %s", repo)
		return true
	}
	for _, issue := range issues {
		c.importOne(ctx, env, args, repo, issue, &report)
	}
	return report.Print(env.Out)
}

// importOne creates the ticket for one GitHub issue and records the outcome.
func (c *importGitHub) importOne(ctx context.Context, env *plugin.Env, args *plugin.Args, repo string, issue models.GitHubIssue, report *plugin.BatchReport) {
	item := fmt.Sprintf("%s#%d", repo, issue.Number)
	if existing := issue.JiraKey(); existing != "" {
		report.Succeed(item, "already imported as "+existing)
		return
	}

	d := ticketDraft{
		Type:        args.String("type"),
		Summary:     issue.Title,
		Description: importedDescription(issue),
	}
	dryRun := args.Bool("dry-run")
	key, _, err := createFromDraft(ctx, env, args, d, dryRun)
	if err != nil {
		report.Fail(item, err)
		return
	}
	if dryRun {
		report.Succeed(item, fmt.Sprintf("would create %q", issue.Title))
		return
	}
	if args.Bool("tag") {
		if err := env.GitHub.AddLabels(ctx, repo, issue.Number, models.JiraLabelPrefix+key); err != nil {
			logging.Warn("failed to label GitHub issue", "issue", item, "error", err)
			env.Out.Warn("%s: created %s but could not label the GitHub issue: %v", item, key, err)
		}
	}
	report.Succeed(item, "created "+key)
}

func importedDescription(issue models.GitHubIssue) string {
	body := strings.TrimSpace(issue.Description)
	if issue.URL == "" {
		return body
	}
	return body + "\n\n----\nImported from GitHub issue " + issue.URL
}
