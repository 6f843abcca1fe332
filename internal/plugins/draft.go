package plugins

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/danielolaszy/rh-issue/internal/plugin"
	"github.com/danielolaszy/rh-issue/pkg/models"
)

// ticketDraft is a ticket described in a JSON or YAML file. yaml.v3 reads
// both since JSON is valid YAML.
type ticketDraft struct {
	Type        string   `yaml:"type"`
	Summary     string   `yaml:"summary"`
	Description string   `yaml:"description"`
	Priority    string   `yaml:"priority"`
	StoryPoints *float64 `yaml:"story_points"`
	Component   string   `yaml:"component"`
	Epic        string   `yaml:"epic"`
}

func loadDraft(path string) (ticketDraft, error) {
	var d ticketDraft
	data, err := os.ReadFile(path)
	if err != nil {
		return d, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &d); err != nil {
		return d, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return d, nil
}

func (d ticketDraft) validate() (models.IssueType, error) {
	t, ok := models.ParseIssueType(d.Type)
	if !ok {
		return t, fmt.Errorf("unknown issue type %q", d.Type)
	}
	if strings.TrimSpace(d.Summary) == "" {
		return t, fmt.Errorf("summary is required")
	}
	return t, nil
}

// buildTicket fills a draft in with the configured project defaults.
func buildTicket(env *plugin.Env, d ticketDraft) (models.NewTicket, error) {
	t, err := d.validate()
	if err != nil {
		return models.NewTicket{}, err
	}

	cfg := env.Config.Jira
	nt := models.NewTicket{
		Project:     cfg.ProjectKey,
		Type:        t,
		Summary:     strings.TrimSpace(d.Summary),
		Description: d.Description,
		Priority:    d.Priority,
		Component:   d.Component,
		Epic:        d.Epic,
	}
	if nt.Project == "" {
		return nt, fmt.Errorf("JIRA_PROJECT_KEY is not set")
	}
	if nt.Priority == "" {
		nt.Priority = cfg.Priority
	}
	if nt.Component == "" {
		nt.Component = cfg.Component
	}

	switch t {
	case models.TypeBug:
		nt.AffectsVersion = cfg.AffectsVersion
	case models.TypeStory:
		if nt.Epic == "" {
			nt.Epic = cfg.EpicKey
		}
		nt.StoryPoints = d.StoryPoints
	case models.TypeEpic:
		nt.EpicName = nt.Summary
		nt.Epic = ""
	}
	return nt, nil
}

// createFromDraft improves the draft's description with the type prompt and
// creates the ticket. With dryRun set nothing is created and the key is "".
func createFromDraft(ctx context.Context, env *plugin.Env, args *plugin.Args, d ticketDraft, dryRun bool) (string, models.NewTicket, error) {
	nt, err := buildTicket(env, d)
	if err != nil {
		return "", nt, err
	}

	desc, enhanced := tryImprove(ctx, env, args, "", models.FieldDescription, library(env).ForIssueType(nt.Type), nt.Description)
	nt.Description = desc
	if dryRun {
		return "", nt, nil
	}

	key, err := env.Tracker.CreateIssue(ctx, nt)
	if err != nil {
		return "", nt, err
	}
	if enhanced {
		env.Enhancer.Remember(key, models.FieldDescription, nt.Description)
	}
	return key, nt, nil
}

func printDraft(env *plugin.Env, nt models.NewTicket) {
	env.Out.Heading("Dry run: %s %q", nt.Type.JiraName(), nt.Summary)
	env.Out.Field("Project", nt.Project)
	env.Out.Field("Priority", nt.Priority)
	env.Out.Field("Component", nt.Component)
	env.Out.Field("Epic", nt.Epic)
	env.Out.Field("Affects version", nt.AffectsVersion)
	if nt.StoryPoints != nil {
		env.Out.Field("Story points", fmt.Sprintf("%g", *nt.StoryPoints))
	}
	env.Out.Block("Description", nt.Description)
}
