package plugins

import (
	"context"

	"github.com/danielolaszy/rh-issue/internal/plugin"
)

const defaultMaxResults = 50

func init() {
	register(func() plugin.Plugin {
		return &search{meta: meta{
			name:     "search",
			category: plugin.CategorySearch,
			help:     "Search issues with JQL",
			examples: []string{`rh-issue search 'project = AAP AND status = "In Progress"'`},
		}}
	})
}

type search struct {
	meta
	trackerOnly
}

func (c *search) Arguments(spec *plugin.ArgSpec) {
	spec.Rest("jql", "JQL query", true)
	spec.IntFlag("max-results", "m", defaultMaxResults, "maximum number of issues")
}

func (c *search) Execute(ctx context.Context, env *plugin.Env, args *plugin.Args) bool {
	tickets, err := env.Tracker.Search(ctx, args.Text("jql"), args.Int("max-results"))
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
