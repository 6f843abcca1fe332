package plugins

import (
	"context"
	"fmt"
	"strings"

	"github.com/danielolaszy/rh-issue/internal/plugin"
)

func init() {
	register(func() plugin.Plugin {
		return &listIssues{meta: meta{
			name:     "list-issues",
			category: plugin.CategorySearch,
			help:     "List open issues in the project",
			examples: []string{
				"rh-issue list-issues",
				`rh-issue list-issues --status "In Progress" --assignee jdoe`,
			},
		}}
	})
}

type listIssues struct {
	meta
	trackerOnly
}

// declareFilters adds the flags issueQuery reads.
func declareFilters(spec *plugin.ArgSpec) {
	spec.StringFlag("project", "", "", "project key, defaults to JIRA_PROJECT_KEY")
	spec.StringFlag("component", "", "", "component, defaults to JIRA_COMPONENT_NAME")
	spec.StringFlag("assignee", "", "", "assignee user name, defaults to the current user")
	spec.StringFlag("reporter", "", "", "reporter user name")
	spec.IntFlag("max-results", "m", defaultMaxResults, "maximum number of issues")
}

func (c *listIssues) Arguments(spec *plugin.ArgSpec) {
	declareFilters(spec)
	spec.StringFlag("status", "s", "", "only this status")
}

func (c *listIssues) Execute(ctx context.Context, env *plugin.Env, args *plugin.Args) bool {
	tickets, err := env.Tracker.Search(ctx, issueQuery(env, args), args.Int("max-results"))
	if err != nil {
		env.Out.Fail("%v", err)
		return false
	}
	if len(tickets) == 0 {
		env.Out.Info("No issues found")
		return true
	}
	env.Out.Table(ticketHeaders, ticketRows(tickets))
	return true
}

// issueQuery builds the JQL for the project listing commands. Without an
// explicit assignee or reporter it lists the current user's issues; closed
// issues are always excluded.
func issueQuery(env *plugin.Env, args *plugin.Args) string {
	project := args.String("project")
	component := args.String("component")
	if env.Config != nil {
		if project == "" {
			project = env.Config.Jira.ProjectKey
		}
		if component == "" {
			component = env.Config.Jira.Component
		}
	}

	var clauses []string
	if project != "" {
		clauses = append(clauses, fmt.Sprintf("project=%q", project))
	}
	if component != "" {
		clauses = append(clauses, fmt.Sprintf("component=%q", component))
	}

	assignee := args.String("assignee")
	reporter := args.String("reporter")
	switch {
	case assignee != "":
		clauses = append(clauses, fmt.Sprintf("assignee=%q", assignee))
	case reporter == "":
		clauses = append(clauses, "assignee=currentUser()")
	}
	if reporter != "" {
		clauses = append(clauses, fmt.Sprintf("reporter=%q", reporter))
	}
	if status := args.String("status"); status != "" {
		clauses = append(clauses, fmt.Sprintf("status=%q", status))
	}
	clauses = append(clauses, `status NOT IN ("Closed","Done","Cancelled")`)

	return strings.Join(clauses, " AND ") + " ORDER BY updated DESC"
}
