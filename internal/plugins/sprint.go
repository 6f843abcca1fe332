package plugins

import (
	"context"
	"strconv"

	"github.com/danielolaszy/rh-issue/internal/plugin"
)

func init() {
	register(func() plugin.Plugin {
		return &addToSprint{meta: meta{
			name:     "add-to-sprint",
			category: plugin.CategorySprint,
			help:     "Move an issue into a sprint",
			examples: []string{"rh-issue add-to-sprint AAP-123 4521"},
		}}
	})
	register(func() plugin.Plugin {
		return &removeSprint{meta: meta{
			name:     "remove-sprint",
			category: plugin.CategorySprint,
			help:     "Move an issue back to the backlog",
			examples: []string{"rh-issue remove-sprint AAP-123"},
		}}
	})
	register(func() plugin.Plugin {
		return &getSprint{meta: meta{
			name:     "get-sprint",
			category: plugin.CategorySprint,
			help:     "Print the name of the board's active sprint",
			examples: []string{"rh-issue get-sprint"},
		}}
	})
	register(func() plugin.Plugin {
		return &listSprints{meta: meta{
			name:     "list-sprints",
			category: plugin.CategorySprint,
			help:     "List the sprints of a board",
			examples: []string{
				"rh-issue list-sprints",
				"rh-issue list-sprints --board-id 123 --state future",
			},
		}}
	})
}

type addToSprint struct {
	meta
	trackerOnly
}

func (c *addToSprint) Arguments(spec *plugin.ArgSpec) {
	spec.Key("issue-key", "issue to move")
	spec.Int("sprint-id", "numeric sprint id, see list-sprints")
}

func (c *addToSprint) Execute(ctx context.Context, env *plugin.Env, args *plugin.Args) bool {
	key, id := args.String("issue-key"), args.Int("sprint-id")
	if err := env.Tracker.AddToSprint(ctx, key, id); err != nil {
		env.Out.Fail("%v", err)
		return false
	}
	env.Out.Success("Added %s to sprint %d", key, id)
	return true
}

type removeSprint struct {
	meta
	trackerOnly
}

func (c *removeSprint) Arguments(spec *plugin.ArgSpec) {
	spec.Key("issue-key", "issue to move to the backlog")
}

func (c *removeSprint) Execute(ctx context.Context, env *plugin.Env, args *plugin.Args) bool {
	key := args.String("issue-key")
	if err := env.Tracker.RemoveFromSprint(ctx, key); err != nil {
		env.Out.Fail("%v", err)
		return false
	}
	env.Out.Success("Moved %s to the backlog", key)
	return true
}

type getSprint struct {
	meta
	trackerOnly
}

func (c *getSprint) Arguments(spec *plugin.ArgSpec) {
	spec.IntFlag("board-id", "b", 0, "board id, defaults to JIRA_BOARD_ID")
}

func (c *getSprint) Execute(ctx context.Context, env *plugin.Env, args *plugin.Args) bool {
	board, ok := boardID(env, args)
	if !ok {
		return false
	}
	sprints, err := env.Tracker.ListSprints(ctx, board, "active")
	if err != nil {
		env.Out.Fail("%v", err)
		return false
	}
	if len(sprints) == 0 {
		env.Out.Warn("Board %d has no active sprint", board)
		return false
	}
	env.Out.Info("%s", sprints[0].Name)
	return true
}

type listSprints struct {
	meta
	trackerOnly
}

func (c *listSprints) Arguments(spec *plugin.ArgSpec) {
	spec.IntFlag("board-id", "b", 0, "board id, defaults to JIRA_BOARD_ID")
	spec.EnumFlag("state", "active", "sprint state", "active", "future", "closed", "all")
}

func (c *listSprints) Execute(ctx context.Context, env *plugin.Env, args *plugin.Args) bool {
	board, ok := boardID(env, args)
	if !ok {
		return false
	}

	state := args.String("state")
	if state == "all" {
		state = ""
	}
	sprints, err := env.Tracker.ListSprints(ctx, board, state)
	if err != nil {
		env.Out.Fail("%v", err)
		return false
	}
	if len(sprints) == 0 {
		env.Out.Info("No sprints found")
		return true
	}

	rows := make([][]string, 0, len(sprints))
	for _, s := range sprints {
		rows = append(rows, []string{strconv.Itoa(s.ID), s.Name, s.State})
	}
	env.Out.Table([]string{"id", "name", "state"}, rows)
	return true
}

func boardID(env *plugin.Env, args *plugin.Args) (int, bool) {
	board := args.Int("board-id")
	if board == 0 && env.Config != nil {
		board = env.Config.Jira.BoardID
	}
	if board == 0 {
		env.Out.Fail("no board given: pass --board-id or set JIRA_BOARD_ID")
		return 0, false
	}
	return board, true
}
