// Package models defines data structures shared across the application.
package models

import (
	"regexp"
	"strings"
	"time"
)

// Logical field names used by handlers, the tracker client and the enhancement
// cache. The tracker client maps them to concrete Jira field ids.
const (
	FieldSummary            = "summary"
	FieldDescription        = "description"
	FieldAcceptanceCriteria = "acceptance_criteria"
	FieldPriority           = "priority"
	FieldStoryPoints        = "story_points"
	FieldSprint             = "sprint"
	FieldEpic               = "epic"
	FieldEpicName           = "epic_name"
	FieldBlocked            = "blocked"
	FieldBlockedReason      = "blocked_reason"
	FieldAssignee           = "assignee"
	FieldComponent          = "component"
	FieldWorkstream         = "workstream"
	FieldProject            = "project"
	FieldIssueType          = "issuetype"
)

// IssueType is the Jira issue type of a ticket.
type IssueType string

const (
	TypeStory IssueType = "story"
	TypeBug   IssueType = "bug"
	TypeEpic  IssueType = "epic"
	TypeSpike IssueType = "spike"
	TypeTask  IssueType = "task"
)

// IssueTypes lists the supported issue types in display order.
var IssueTypes = []IssueType{TypeStory, TypeBug, TypeEpic, TypeSpike, TypeTask}

// ParseIssueType converts a user or Jira supplied type name into an IssueType.
// The second return value is false for names outside IssueTypes.
func ParseIssueType(name string) (IssueType, bool) {
	t := IssueType(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range IssueTypes {
		if t == known {
			return t, true
		}
	}
	return t, false
}

// JiraName returns the capitalized type name Jira expects (e.g. "Story").
func (t IssueType) JiraName() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

// GitHubIssue represents a GitHub issue with its essential fields
type GitHubIssue struct {
	// Number is the issue number in GitHub (e.g., 42)
	Number int

	// Repository is the "owner/repo" the issue belongs to
	Repository string

	// Title is the issue's title or summary
	Title string

	// Description is the full body text of the issue
	Description string

	// URL is the HTML link to the issue
	URL string

	// State is the current state of the issue
	State string

	// CreatedAt is the timestamp when the issue was created
	CreatedAt time.Time

	// UpdatedAt is the timestamp when the issue was last updated
	UpdatedAt time.Time

	// ClosedAt is the timestamp when the issue was closed
	ClosedAt *time.Time

	// Labels is a slice of label names attached to the issue
	Labels []string
}

// JiraLabelPrefix starts the GitHub label that records the Jira ticket an
// issue was imported into, e.g. "jira-id: AAP-123".
const JiraLabelPrefix = "jira-id: "

var jiraLabelPattern = regexp.MustCompile(`^jira-id:\s*([A-Z][A-Z0-9]+-\d+)$`)

// JiraKey returns the ticket key recorded in the issue's labels, or "".
func (g GitHubIssue) JiraKey() string {
	for _, label := range g.Labels {
		if m := jiraLabelPattern.FindStringSubmatch(label); m != nil {
			return m[1]
		}
	}
	return ""
}

// Ticket represents a Jira ticket with the fields the CLI works with.
type Ticket struct {
	// Key is the full Jira ticket identifier (e.g., "AAP-123")
	Key string

	// Summary is the ticket's one-line title
	Summary string

	// Description is the full body text of the ticket
	Description string

	// AcceptanceCriteria is the content of the acceptance criteria custom field
	AcceptanceCriteria string

	// Type is the Jira issue type name as returned by Jira (e.g., "Story")
	Type string

	// Status is the workflow status name (e.g., "In Progress")
	Status string

	// Priority is the priority name, empty when unset
	Priority string

	// Assignee is the display name of the assignee, empty when unassigned
	Assignee string

	// Reporter is the display name of the reporter
	Reporter string

	// StoryPoints is nil when the field is unset
	StoryPoints *float64

	// Sprint is the name of the active sprint, empty when the ticket is in the backlog
	Sprint string

	// Epic is the key of the parent epic, empty when not linked
	Epic string

	// Blocked reports the value of the blocked custom field
	Blocked bool

	// BlockedReason is the text of the blocked reason custom field
	BlockedReason string

	// Components are the component names set on the ticket
	Components []string
}

// Field returns the textual value of a logical field name. Unknown names
// return the empty string.
func (t *Ticket) Field(name string) string {
	switch name {
	case FieldSummary:
		return t.Summary
	case FieldDescription:
		return t.Description
	case FieldAcceptanceCriteria:
		return t.AcceptanceCriteria
	case FieldPriority:
		return t.Priority
	case FieldSprint:
		return t.Sprint
	case FieldEpic:
		return t.Epic
	case FieldBlockedReason:
		return t.BlockedReason
	case FieldAssignee:
		return t.Assignee
	}
	return ""
}

// NewTicket is the input for creating a ticket.
type NewTicket struct {
	Project        string
	Type           IssueType
	Summary        string
	Description    string
	Priority       string
	StoryPoints    *float64
	AffectsVersion string
	Component      string
	Epic           string
	EpicName       string
}

// User is a Jira account.
type User struct {
	Name        string
	Key         string
	DisplayName string
	Email       string
	TimeZone    string
	Active      bool
}

// Sprint is an agile sprint on a Jira board.
type Sprint struct {
	ID    int
	Name  string
	State string
}
