package plugins

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/danielolaszy/rh-issue/internal/plugin"
)

func init() {
	register(func() plugin.Plugin {
		return &lintAll{meta: meta{
			name:     "lint-all",
			category: plugin.CategoryQuality,
			help:     "Lint every open issue matching the filters",
			examples: []string{
				"rh-issue lint-all",
				"rh-issue lint-all --reporter jdoe --no-ai",
			},
		}}
	})
}

type lintAll struct{ meta }

func (c *lintAll) Arguments(spec *plugin.ArgSpec) {
	declareFilters(spec)
	spec.BoolFlag("no-cache", "", "review text even if it passed before")
	declareNoAI(spec)
}

func (c *lintAll) Execute(ctx context.Context, env *plugin.Env, args *plugin.Args) bool {
	tickets, err := env.Tracker.Search(ctx, issueQuery(env, args), args.Int("max-results"))
	if err != nil {
		env.Out.Fail("%v", err)
		return false
	}
	if len(tickets) == 0 {
		env.Out.Info("No issues found")
		return true
	}

	var report plugin.BatchReport
	rows := make([][]string, 0, len(tickets))
	for i := range tickets {
		t := &tickets[i]
		problems := lintTicket(ctx, env, args, t)
		if len(problems) == 0 {
			report.Succeed(t.Key, "passed")
			rows = append(rows, []string{t.Key, orDash(t.Status), "✅", "0"})
			continue
		}
		report.Fail(t.Key, errors.New(strings.Join(problems, "; ")))
		rows = append(rows, []string{t.Key, orDash(t.Status), "❌", strconv.Itoa(len(problems))})
	}

	env.Out.Table([]string{"key", "status", "result", "problems"}, rows)
	return report.Print(env.Out)
}
