package plugins

import (
	"context"

	"github.com/danielolaszy/rh-issue/internal/plugin"
)

func init() {
	register(func() plugin.Plugin {
		return &voteStoryPoints{meta: meta{
			name:     "vote-story-points",
			category: plugin.CategoryQuality,
			help:     "Cast a planning poker vote on an issue",
			examples: []string{"rh-issue vote-story-points AAP-123 5"},
		}}
	})
}

type voteStoryPoints struct {
	meta
	trackerOnly
}

func (c *voteStoryPoints) Arguments(spec *plugin.ArgSpec) {
	spec.Key("issue-key", "issue to vote on")
	spec.Int("points", "story points")
}

func (c *voteStoryPoints) Execute(ctx context.Context, env *plugin.Env, args *plugin.Args) bool {
	key, points := args.String("issue-key"), args.Int("points")
	if points < 0 {
		env.Out.Fail("story points cannot be negative")
		return false
	}
	if err := env.Tracker.VoteStoryPoints(ctx, key, points); err != nil {
		env.Out.Fail("%v", err)
		return false
	}
	env.Out.Success("Voted %d points on %s", points, key)
	return true
}
