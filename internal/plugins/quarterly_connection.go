package plugins

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/danielolaszy/rh-issue/internal/plugin"
	"github.com/danielolaszy/rh-issue/internal/prompts"
	"github.com/danielolaszy/rh-issue/pkg/models"
)

const (
	quarterDays      = 90
	reportMaxResults = 1000
	reportField      = "quarterly_report"
)

func init() {
	register(func() plugin.Plugin {
		return &quarterlyConnection{meta: meta{
			name:     "quarterly-connection",
			category: plugin.CategoryReporting,
			help:     "Summarize your recent Jira activity for a quarterly connection",
			examples: []string{
				"rh-issue quarterly-connection",
				"rh-issue quarterly-connection --days 30 --no-ai",
			},
		}}
	})
}

type quarterlyConnection struct{ meta }

func (c *quarterlyConnection) Arguments(spec *plugin.ArgSpec) {
	spec.IntFlag("days", "", quarterDays, "how far back to look")
	spec.IntFlag("max-results", "m", reportMaxResults, "maximum issues to include")
	declareNoAI(spec)
}

// activityQuery selects issues the current user worked on in the last days.
func activityQuery(days int) string {
	return fmt.Sprintf("(assignee = currentUser() OR reporter = currentUser() OR comment ~ currentUser()) "+
		"AND updated >= -%dd ORDER BY updated DESC", days)
}

func (c *quarterlyConnection) Execute(ctx context.Context, env *plugin.Env, args *plugin.Args) bool {
	days := args.Int("days")
	if days <= 0 {
		env.Out.Fail("--days must be positive")
		return false
	}

	env.Out.Info("Building the report for the last %d days", days)
	tickets, err := env.Tracker.Search(ctx, activityQuery(days), args.Int("max-results"))
	if err != nil {
		env.Out.Fail("%v", err)
		return false
	}

	// CVE trackers are left out.
	relevant := tickets[:0:0]
	for _, t := range tickets {
		if !strings.Contains(strings.ToUpper(t.Summary), "CVE") {
			relevant = append(relevant, t)
		}
	}
	if len(relevant) == 0 {
		env.Out.Success("No issues to report")
		return true
	}

	env.Out.Heading("Issues in this report (%d)", len(relevant))
	for _, t := range relevant {
		env.Out.Info("%s: %s", t.Key, t.Summary)
	}

	if summary, ok := c.summarize(ctx, env, args, relevant); ok {
		env.Out.Block("Quarterly report", summary)
		return true
	}
	printActivityCounts(env, relevant)
	return true
}

// summarize asks the provider for the narrative report. It reports false
// when AI is off or the provider failed.
func (c *quarterlyConnection) summarize(ctx context.Context, env *plugin.Env, args *plugin.Args, tickets []models.Ticket) (string, bool) {
	if args.Bool(noAIFlag) || env.Enhancer == nil || env.Enhancer.Disabled() {
		return "", false
	}
	r := env.Enhancer.Improve(ctx, "", reportField, library(env).For(prompts.KindQuarterly), reportInput(tickets))
	if r.Err != nil {
		env.Out.Warn("AI summary unavailable: %v", r.Err)
		return "", false
	}
	return r.Text, true
}

func reportInput(tickets []models.Ticket) string {
	parts := make([]string, 0, len(tickets))
	for _, t := range tickets {
		var b strings.Builder
		fmt.Fprintf(&b, "[%s] %s", t.Key, t.Summary)
		if d := strings.TrimSpace(t.Description); d != "" {
			fmt.Fprintf(&b, "\nDescription: %s", truncate(d, 200))
		}
		fmt.Fprintf(&b, "\nType: %s, Status: %s", orDash(t.Type), orDash(t.Status))
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "\n\n")
}

// printActivityCounts is the report without a provider: issue counts by
// type and by status.
func printActivityCounts(env *plugin.Env, tickets []models.Ticket) {
	byType := map[string]int{}
	byStatus := map[string]int{}
	for _, t := range tickets {
		byType[orDash(t.Type)]++
		byStatus[orDash(t.Status)]++
	}
	env.Out.Heading("Issue types")
	env.Out.Table([]string{"TYPE", "COUNT"}, countRows(byType))
	env.Out.Heading("Status distribution")
	env.Out.Table([]string{"STATUS", "COUNT"}, countRows(byStatus))
}

func countRows(counts map[string]int) [][]string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{name, strconv.Itoa(counts[name])})
	}
	return rows
}
