package plugins

import (
	"context"

	"github.com/danielolaszy/rh-issue/internal/plugin"
)

// linkTypes maps the command's relation words to Jira link type names.
var linkTypes = map[string]string{
	"blocks":     "Blocks",
	"blocked-by": "Blocks",
	"relates":    "Relates",
	"duplicates": "Duplicate",
	"clones":     "Cloners",
}

func init() {
	register(func() plugin.Plugin {
		return &addLink{meta: meta{
			name:     "add-link",
			category: plugin.CategoryRelationships,
			help:     "Link two issues",
			examples: []string{
				"rh-issue add-link AAP-1 blocks AAP-2",
				"rh-issue add-link AAP-2 blocked-by AAP-1",
			},
		}}
	})
}

type addLink struct {
	meta
	trackerOnly
}

func (c *addLink) Arguments(spec *plugin.ArgSpec) {
	spec.Key("from", "source issue")
	spec.Enum("relation", "how from relates to to", "blocks", "blocked-by", "relates", "duplicates", "clones")
	spec.Key("to", "target issue")
}

func (c *addLink) Execute(ctx context.Context, env *plugin.Env, args *plugin.Args) bool {
	from, relation, to := args.String("from"), args.String("relation"), args.String("to")

	// The outward issue is the subject of the link type ("X blocks Y").
	inward, outward := to, from
	if relation == "blocked-by" {
		inward, outward = from, to
	}
	if err := env.Tracker.AddLink(ctx, linkTypes[relation], inward, outward); err != nil {
		env.Out.Fail("%v", err)
		return false
	}
	env.Out.Success("Linked %s %s %s", from, relation, to)
	return true
}
