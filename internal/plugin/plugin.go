// Package plugin defines the command handler contract and the registry the
// command line front end dispatches through.
package plugin

import (
	"context"
	"io"

	"github.com/danielolaszy/rh-issue/internal/config"
	"github.com/danielolaszy/rh-issue/internal/console"
	"github.com/danielolaszy/rh-issue/internal/enhance"
	"github.com/danielolaszy/rh-issue/internal/prompts"
	"github.com/danielolaszy/rh-issue/pkg/models"
)

// Category groups commands in help output.
type Category string

const (
	CategoryCreation      Category = "Issue Creation & Management"
	CategorySearch        Category = "Search & View"
	CategoryModification  Category = "Issue Modification"
	CategorySprint        Category = "Sprint Management"
	CategoryRelationships Category = "Issue Relationships"
	CategoryBlocking      Category = "Blocking & Issues"
	CategoryQuality       Category = "Quality & Validation"
	CategoryReporting     Category = "Reporting"
	CategoryUtilities     Category = "Utilities"
	CategoryOther         Category = "Other"
)

// categoryOrder is the order groups appear in help.
var categoryOrder = []Category{
	CategoryCreation,
	CategorySearch,
	CategoryModification,
	CategorySprint,
	CategoryRelationships,
	CategoryBlocking,
	CategoryQuality,
	CategoryReporting,
	CategoryUtilities,
	CategoryOther,
}

// Plugin is one command.
type Plugin interface {
	// Name is the command verb, e.g. "set-priority".
	Name() string
	Category() Category
	// Help is the one-line description shown in listings.
	Help() string
	Examples() []string
	// Arguments declares the positionals and flags the command accepts.
	Arguments(spec *ArgSpec)
	// Execute runs the command and reports success. Failures are printed
	// through env.Out; Execute never panics on tracker or provider errors.
	Execute(ctx context.Context, env *Env, args *Args) bool
}

// Needs is a set of services a plugin uses.
type Needs uint8

const (
	NeedsTracker Needs = 1 << iota
	NeedsProvider
	NeedsGitHub

	NeedsNothing Needs = 0
	// DefaultNeeds applies to plugins that do not implement Requirer.
	DefaultNeeds = NeedsTracker | NeedsProvider
)

// Has reports whether n includes all of other.
func (n Needs) Has(other Needs) bool {
	return n&other == other
}

// Requirer narrows the services wired into a plugin's Env.
type Requirer interface {
	Needs() Needs
}

// NeedsOf returns what p needs.
func NeedsOf(p Plugin) Needs {
	if r, ok := p.(Requirer); ok {
		return r.Needs()
	}
	return DefaultNeeds
}

// Tracker is the ticket tracker operations commands use.
type Tracker interface {
	GetField(ctx context.Context, key, field string) (string, error)
	SetField(ctx context.Context, key, field string, value any) error
	// SetFields writes several fields in one update.
	SetFields(ctx context.Context, key string, values map[string]any) error
	GetIssue(ctx context.Context, key string) (*models.Ticket, error)
	CreateIssue(ctx context.Context, t models.NewTicket) (string, error)
	Search(ctx context.Context, jql string, max int) ([]models.Ticket, error)
	AddLink(ctx context.Context, linkType, inward, outward string) error
	Transition(ctx context.Context, key, status string) error
	AddComment(ctx context.Context, key, body string) error
	// Assign sets the assignee; an empty user unassigns.
	Assign(ctx context.Context, key, user string) error
	AddToSprint(ctx context.Context, key string, sprintID int) error
	RemoveFromSprint(ctx context.Context, key string) error
	ListSprints(ctx context.Context, boardID int, state string) ([]models.Sprint, error)
	// SetFlag adds or removes the board flag.
	SetFlag(ctx context.Context, key string, flagged bool) error
	VoteStoryPoints(ctx context.Context, key string, points int) error
	GetUser(ctx context.Context, username string) (*models.User, error)
	SearchUsers(ctx context.Context, query string, max int) ([]models.User, error)
}

// IssueSource reads issues from GitHub.
type IssueSource interface {
	GetIssue(ctx context.Context, repo string, number int) (*models.GitHubIssue, error)
	// ListIssues returns issues in state carrying every label, skipping pull
	// requests.
	ListIssues(ctx context.Context, repo, state string, labels []string) ([]models.GitHubIssue, error)
	AddLabels(ctx context.Context, repo string, number int, labels ...string) error
}

// Env carries everything a plugin may use. Services a plugin did not ask
// for are nil.
type Env struct {
	Tracker  Tracker
	Enhancer *enhance.Enhancer
	Prompts  *prompts.Library
	GitHub   IssueSource
	Out      *console.Printer
	Config   *config.Config
	Stdin    io.Reader
}
