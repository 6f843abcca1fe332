package plugins

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/danielolaszy/rh-issue/internal/logging"
	"github.com/danielolaszy/rh-issue/internal/plugin"
)

func init() {
	register(func() plugin.Plugin {
		return &batchCreate{meta: meta{
			name:     "batch-create",
			category: plugin.CategoryCreation,
			help:     "Create one issue per JSON or YAML file in a directory",
			examples: []string{
				"rh-issue batch-create ./tickets",
				"rh-issue batch-create ./tickets --dry-run --no-ai",
			},
		}}
	})
}

type batchCreate struct{ meta }

func (c *batchCreate) Arguments(spec *plugin.ArgSpec) {
	spec.String("directory", "directory holding the ticket files")
	spec.BoolFlag("dry-run", "", "validate the files without creating anything")
	declareNoAI(spec)
}

func (c *batchCreate) Execute(ctx context.Context, env *plugin.Env, args *plugin.Args) bool {
	files, err := draftFiles(args.String("directory"))
	if err != nil {
		env.Out.Fail("%v", err)
		return false
	}
	if len(files) == 0 {
		env.Out.Warn("no .json, .yaml or .yml files in %s", args.String("directory"))
		return true
	}

	dryRun := args.Bool("dry-run")
	var report plugin.BatchReport
	for _, path := range files {
		if ctx.Err() != nil {
			report.Fail(filepath.Base(path), ctx.Err())
			break
		}

		name := filepath.Base(path)
		d, err := loadDraft(path)
		if err != nil {
			report.Fail(name, err)
			continue
		}
		key, nt, err := createFromDraft(ctx, env, args, d, dryRun)
		if err != nil {
			logging.Warn("batch item failed", "file", name, "error", err)
			report.Fail(name, err)
			continue
		}
		if dryRun {
			report.Succeed(name, fmt.Sprintf("would create %s %q", nt.Type.JiraName(), nt.Summary))
			continue
		}
		report.Succeed(name, "created "+key)
	}
	return report.Print(env.Out)
}

// draftFiles lists ticket files in dir in name order.
func draftFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json", ".yaml", ".yml":
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}
