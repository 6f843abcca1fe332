package plugins

import (
	"context"
	"strings"

	"github.com/danielolaszy/rh-issue/internal/plugin"
	"github.com/danielolaszy/rh-issue/pkg/models"
)

// setter is a command that writes one field from one positional value.
type setter struct {
	meta
	trackerOnly
	field   string
	label   string
	declare func(spec *plugin.ArgSpec)
	// convert turns the parsed arguments into the value to write.
	convert func(args *plugin.Args) any
}

func (s *setter) Arguments(spec *plugin.ArgSpec) {
	spec.Key("issue-key", "issue to update")
	s.declare(spec)
}

func (s *setter) Execute(ctx context.Context, env *plugin.Env, args *plugin.Args) bool {
	key := args.String("issue-key")
	value := s.convert(args)
	if err := env.Tracker.SetField(ctx, key, s.field, value); err != nil {
		env.Out.Fail("%v", err)
		return false
	}
	env.Out.Success("Set %s of %s to %v", s.label, key, value)
	return true
}

func init() {
	register(func() plugin.Plugin {
		return &setter{
			meta: meta{
				name:     "set-summary",
				category: plugin.CategoryModification,
				help:     "Change an issue's summary",
				examples: []string{`rh-issue set-summary AAP-123 "Retry uploads on timeout"`},
			},
			field:   models.FieldSummary,
			label:   "summary",
			declare: func(spec *plugin.ArgSpec) { spec.Rest("summary", "new summary", true) },
			convert: func(args *plugin.Args) any { return args.Text("summary") },
		}
	})

	register(func() plugin.Plugin {
		return &setter{
			meta: meta{
				name:     "set-priority",
				category: plugin.CategoryModification,
				help:     "Change an issue's priority",
				examples: []string{"rh-issue set-priority AAP-123 major"},
			},
			field: models.FieldPriority,
			label: "priority",
			declare: func(spec *plugin.ArgSpec) {
				spec.Enum("priority", "new priority", "Critical", "Major", "Normal", "Minor")
			},
			convert: func(args *plugin.Args) any { return args.String("priority") },
		}
	})

	register(func() plugin.Plugin {
		return &setter{
			meta: meta{
				name:     "set-story-points",
				category: plugin.CategoryModification,
				help:     "Set an issue's story points",
				examples: []string{"rh-issue set-story-points AAP-123 5"},
			},
			field:   models.FieldStoryPoints,
			label:   "story points",
			declare: func(spec *plugin.ArgSpec) { spec.Int("points", "story points") },
			convert: func(args *plugin.Args) any { return args.Int("points") },
		}
	})

	register(func() plugin.Plugin {
		return &setter{
			meta: meta{
				name:     "set-component",
				category: plugin.CategoryModification,
				help:     "Set an issue's component",
				examples: []string{`rh-issue set-component AAP-123 "Automation Controller"`},
			},
			field:   models.FieldComponent,
			label:   "component",
			declare: func(spec *plugin.ArgSpec) { spec.Rest("component", "component name", true) },
			convert: func(args *plugin.Args) any { return args.Text("component") },
		}
	})

	register(func() plugin.Plugin {
		return &setter{
			meta: meta{
				name:     "set-project",
				category: plugin.CategoryModification,
				help:     "Move an issue to another project",
				examples: []string{"rh-issue set-project AAP-123 RHEL"},
			},
			field:   models.FieldProject,
			label:   "project",
			declare: func(spec *plugin.ArgSpec) { spec.String("project", "project key") },
			convert: func(args *plugin.Args) any { return strings.ToUpper(args.String("project")) },
		}
	})

	register(func() plugin.Plugin {
		return &setter{
			meta: meta{
				name:     "change-type",
				category: plugin.CategoryModification,
				help:     "Change an issue's type in place",
				examples: []string{"rh-issue change-type AAP-123 spike"},
			},
			field:   models.FieldIssueType,
			label:   "type",
			declare: func(spec *plugin.ArgSpec) { spec.Enum("type", "new issue type", issueTypeNames()...) },
			convert: func(args *plugin.Args) any { return args.String("type") },
		}
	})

	register(func() plugin.Plugin {
		return &setter{
			meta: meta{
				name:     "set-story-epic",
				category: plugin.CategoryRelationships,
				help:     "Link a story to its epic",
				examples: []string{"rh-issue set-story-epic AAP-123 AAP-100"},
			},
			field:   models.FieldEpic,
			label:   "epic",
			declare: func(spec *plugin.ArgSpec) { spec.Key("epic-key", "epic to link to") },
			convert: func(args *plugin.Args) any { return args.String("epic-key") },
		}
	})
}
