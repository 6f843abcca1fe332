package plugins

import (
	"context"

	"github.com/danielolaszy/rh-issue/internal/plugin"
	"github.com/danielolaszy/rh-issue/pkg/models"
)

const userMaxResults = 10

func init() {
	register(func() plugin.Plugin {
		return &viewUser{meta: meta{
			name:     "view-user",
			category: plugin.CategorySearch,
			help:     "Show a Jira account",
			examples: []string{"rh-issue view-user jdoe"},
		}}
	})
	register(func() plugin.Plugin {
		return &searchUsers{meta: meta{
			name:     "search-users",
			category: plugin.CategorySearch,
			help:     "Find Jira accounts by name or email",
			examples: []string{
				"rh-issue search-users doe",
				"rh-issue search-users jdoe@example.com -m 3",
			},
		}}
	})
}

type viewUser struct {
	meta
	trackerOnly
}

func (c *viewUser) Arguments(spec *plugin.ArgSpec) {
	spec.String("username", "account user name")
}

func (c *viewUser) Execute(ctx context.Context, env *plugin.Env, args *plugin.Args) bool {
	u, err := env.Tracker.GetUser(ctx, args.String("username"))
	if err != nil {
		env.Out.Fail("Unable to retrieve user: %v", err)
		return false
	}
	env.Out.Heading("%s", u.Name)
	printUser(env, u)
	return true
}

type searchUsers struct {
	meta
	trackerOnly
}

func (c *searchUsers) Arguments(spec *plugin.ArgSpec) {
	spec.Rest("query", "name, user name or email to match", true)
	spec.IntFlag("max-results", "m", userMaxResults, "maximum number of accounts")
}

func (c *searchUsers) Execute(ctx context.Context, env *plugin.Env, args *plugin.Args) bool {
	users, err := env.Tracker.SearchUsers(ctx, args.Text("query"), args.Int("max-results"))
	if err != nil {
		env.Out.Fail("Unable to search users: %v", err)
		return false
	}
	if len(users) == 0 {
		env.Out.Warn("No users found")
		return false
	}

	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{u.Name, orDash(u.DisplayName), orDash(u.Email), activeLabel(u.Active)})
	}
	env.Out.Table([]string{"name", "display name", "email", "active"}, rows)
	return true
}

func printUser(env *plugin.Env, u *models.User) {
	env.Out.Field("Display name", u.DisplayName)
	env.Out.Field("Key", u.Key)
	env.Out.Field("Email", u.Email)
	env.Out.Field("Time zone", u.TimeZone)
	env.Out.Field("Active", activeLabel(u.Active))
}

func activeLabel(active bool) string {
	if active {
		return "yes"
	}
	return "no"
}
