// Package prompts holds the system prompts sent to text generation
// providers, one per kind of text.
package prompts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/danielolaszy/rh-issue/internal/logging"
	"github.com/danielolaszy/rh-issue/pkg/models"
)

// Kind selects a prompt.
type Kind string

const (
	KindDefault            Kind = "default"
	KindComment            Kind = "comment"
	KindTask               Kind = "task"
	KindStory              Kind = "story"
	KindBug                Kind = "bug"
	KindEpic               Kind = "epic"
	KindAcceptanceCriteria Kind = "acceptance_criteria"
	// KindQuarterly summarizes a quarter of work for a connection report.
	KindQuarterly Kind = "qc"
)

const formatting = `CRITICAL FORMATTING REQUIREMENTS:
- Use proper JIRA wiki markup syntax
- Structure sections with h2. headings
- Use bullet points (*) for lists, NOT numbered lists (1., 2., 3.)
- Ensure proper spacing between sections`

var builtin = map[Kind]string{
	KindDefault: "As a professional Principal Software Engineer, you write acute and clear summaries " +
		"and descriptions for JIRA issues. You focus on clarity and completeness.",

	KindComment: "As a professional Principal Software Engineer, you write great comments that are " +
		"clear and helpful. You focus on providing context and clarity.",

	KindTask: "As a professional Principal Software Engineer, you write acute and clear task descriptions " +
		"with proper JIRA formatting.\n\n" + formatting + "\n\n" +
		"Focus on actionable items and clear acceptance criteria.",

	KindStory: "As a professional Principal Software Engineer, you write acute, well-defined Jira " +
		"user stories with strong focus on clarity, structure, and detail.\n\n" + formatting + "\n" +
		"- Write clear, concise sentences\n\n" +
		"Focus on:\n" +
		"- Clear user value proposition in the User Story section\n" +
		"- Specific, testable Acceptance Criteria as bullet points\n" +
		"- Concrete, measurable Definition of Done items",

	KindBug: "As a professional Principal Software Engineer, you write acute and clear bug reports " +
		"with proper JIRA formatting.\n\n" + formatting + "\n\n" +
		"Focus on reproducibility and impact with clear steps to reproduce.",

	KindEpic: "As a professional Principal Software Engineer, you write acute and clear epic descriptions " +
		"with proper JIRA formatting.\n\n" + formatting + "\n\n" +
		"Focus on high-level goals and value with clear success criteria.",

	KindAcceptanceCriteria: "As a professional Principal Software Engineer, you write specific, testable " +
		"acceptance criteria for JIRA issues.\n\n" + formatting + "\n\n" +
		"Return only the acceptance criteria as a bullet list, without headings or commentary.",

	KindQuarterly: "You are a software engineering manager with expertise in quarterly planning and " +
		"connection tracking. You focus on strategic alignment and measurable outcomes.\n\n" +
		"Summarize the issues that follow into a short quarterly report: themes of the work, " +
		"notable outcomes, and what is still in flight.",
}

// Library resolves prompts, preferring "<dir>/<kind>.txt" when present.
type Library struct {
	dir string
}

// New returns a library that reads overrides from dir. An empty dir uses the
// built-in prompts only.
func New(dir string) *Library {
	return &Library{dir: dir}
}

// For returns the prompt for kind, falling back to the default prompt for
// unknown kinds.
func (l *Library) For(kind Kind) string {
	if l != nil && l.dir != "" {
		path := filepath.Join(l.dir, string(kind)+".txt")
		data, err := os.ReadFile(path)
		if err == nil && len(strings.TrimSpace(string(data))) > 0 {
			return string(data)
		}
		if err != nil && !os.IsNotExist(err) {
			logging.Warn("failed to read prompt override", "path", path, "error", err)
		}
	}

	if p, ok := builtin[kind]; ok {
		return p
	}
	return builtin[KindDefault]
}

// ForIssueType returns the description prompt for an issue type. Spikes use
// the task prompt.
func (l *Library) ForIssueType(t models.IssueType) string {
	switch t {
	case models.TypeStory:
		return l.For(KindStory)
	case models.TypeBug:
		return l.For(KindBug)
	case models.TypeEpic:
		return l.For(KindEpic)
	case models.TypeTask, models.TypeSpike:
		return l.For(KindTask)
	}
	return l.For(KindDefault)
}

// Review is the quality check prompt for a field. Providers answer "OK" when
// the text is fine and explain the problem otherwise.
func Review(fieldLabel string) string {
	return fmt.Sprintf("Check the quality of the following Jira %s. "+
		"Is it clear, concise, and informative? Respond with 'OK' if fine or explain why not.", fieldLabel)
}

// AcceptanceCriteriaFromDescription asks for criteria derived from a
// description, which is passed as the text.
func AcceptanceCriteriaFromDescription() string {
	return builtin[KindAcceptanceCriteria] + "\n\n" +
		"Derive the acceptance criteria from the issue description that follows."
}
