package plugins

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielolaszy/rh-issue/internal/cache"
	"github.com/danielolaszy/rh-issue/internal/config"
	"github.com/danielolaszy/rh-issue/internal/console"
	"github.com/danielolaszy/rh-issue/internal/enhance"
	"github.com/danielolaszy/rh-issue/internal/plugin"
	"github.com/danielolaszy/rh-issue/internal/provider"
	"github.com/danielolaszy/rh-issue/pkg/models"
)

// MockTracker implements plugin.Tracker. Unset funcs succeed with zero values.
type MockTracker struct {
	GetFieldFunc         func(ctx context.Context, key, field string) (string, error)
	SetFieldFunc         func(ctx context.Context, key, field string, value any) error
	SetFieldsFunc        func(ctx context.Context, key string, values map[string]any) error
	GetIssueFunc         func(ctx context.Context, key string) (*models.Ticket, error)
	CreateIssueFunc      func(ctx context.Context, t models.NewTicket) (string, error)
	SearchFunc           func(ctx context.Context, jql string, max int) ([]models.Ticket, error)
	AddLinkFunc          func(ctx context.Context, linkType, inward, outward string) error
	TransitionFunc       func(ctx context.Context, key, status string) error
	AddCommentFunc       func(ctx context.Context, key, body string) error
	AssignFunc           func(ctx context.Context, key, user string) error
	AddToSprintFunc      func(ctx context.Context, key string, sprintID int) error
	RemoveFromSprintFunc func(ctx context.Context, key string) error
	ListSprintsFunc      func(ctx context.Context, boardID int, state string) ([]models.Sprint, error)
	SetFlagFunc          func(ctx context.Context, key string, flagged bool) error
	VoteStoryPointsFunc  func(ctx context.Context, key string, points int) error
	GetUserFunc          func(ctx context.Context, username string) (*models.User, error)
	SearchUsersFunc      func(ctx context.Context, query string, max int) ([]models.User, error)
}

func (m *MockTracker) GetField(ctx context.Context, key, field string) (string, error) {
	if m.GetFieldFunc != nil {
		return m.GetFieldFunc(ctx, key, field)
	}
	return "", nil
}

func (m *MockTracker) SetField(ctx context.Context, key, field string, value any) error {
	if m.SetFieldFunc != nil {
		return m.SetFieldFunc(ctx, key, field, value)
	}
	return nil
}

func (m *MockTracker) SetFields(ctx context.Context, key string, values map[string]any) error {
	if m.SetFieldsFunc != nil {
		return m.SetFieldsFunc(ctx, key, values)
	}
	return nil
}

func (m *MockTracker) GetIssue(ctx context.Context, key string) (*models.Ticket, error) {
	if m.GetIssueFunc != nil {
		return m.GetIssueFunc(ctx, key)
	}
	return &models.Ticket{Key: key}, nil
}

func (m *MockTracker) CreateIssue(ctx context.Context, t models.NewTicket) (string, error) {
	if m.CreateIssueFunc != nil {
		return m.CreateIssueFunc(ctx, t)
	}
	return "AAP-1", nil
}

func (m *MockTracker) Search(ctx context.Context, jql string, max int) ([]models.Ticket, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, jql, max)
	}
	return nil, nil
}

func (m *MockTracker) AddLink(ctx context.Context, linkType, inward, outward string) error {
	if m.AddLinkFunc != nil {
		return m.AddLinkFunc(ctx, linkType, inward, outward)
	}
	return nil
}

func (m *MockTracker) Transition(ctx context.Context, key, status string) error {
	if m.TransitionFunc != nil {
		return m.TransitionFunc(ctx, key, status)
	}
	return nil
}

func (m *MockTracker) AddComment(ctx context.Context, key, body string) error {
	if m.AddCommentFunc != nil {
		return m.AddCommentFunc(ctx, key, body)
	}
	return nil
}

func (m *MockTracker) Assign(ctx context.Context, key, user string) error {
	if m.AssignFunc != nil {
		return m.AssignFunc(ctx, key, user)
	}
	return nil
}

func (m *MockTracker) AddToSprint(ctx context.Context, key string, sprintID int) error {
	if m.AddToSprintFunc != nil {
		return m.AddToSprintFunc(ctx, key, sprintID)
	}
	return nil
}

func (m *MockTracker) RemoveFromSprint(ctx context.Context, key string) error {
	if m.RemoveFromSprintFunc != nil {
		return m.RemoveFromSprintFunc(ctx, key)
	}
	return nil
}

func (m *MockTracker) ListSprints(ctx context.Context, boardID int, state string) ([]models.Sprint, error) {
	if m.ListSprintsFunc != nil {
		return m.ListSprintsFunc(ctx, boardID, state)
	}
	return nil, nil
}

func (m *MockTracker) SetFlag(ctx context.Context, key string, flagged bool) error {
	if m.SetFlagFunc != nil {
		return m.SetFlagFunc(ctx, key, flagged)
	}
	return nil
}

func (m *MockTracker) VoteStoryPoints(ctx context.Context, key string, points int) error {
	if m.VoteStoryPointsFunc != nil {
		return m.VoteStoryPointsFunc(ctx, key, points)
	}
	return nil
}

func (m *MockTracker) GetUser(ctx context.Context, username string) (*models.User, error) {
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, username)
	}
	return &models.User{Name: username}, nil
}

func (m *MockTracker) SearchUsers(ctx context.Context, query string, max int) ([]models.User, error) {
	if m.SearchUsersFunc != nil {
		return m.SearchUsersFunc(ctx, query, max)
	}
	return nil, nil
}

// MockProvider counts calls and delegates to ImproveFunc.
type MockProvider struct {
	ImproveFunc func(ctx context.Context, prompt, text string) (string, error)
	Calls       int
}

func (m *MockProvider) Improve(ctx context.Context, prompt, text string) (string, error) {
	m.Calls++
	if m.ImproveFunc != nil {
		return m.ImproveFunc(ctx, prompt, text)
	}
	return text, nil
}

// MockIssueSource implements plugin.IssueSource.
type MockIssueSource struct {
	GetIssueFunc   func(ctx context.Context, repo string, number int) (*models.GitHubIssue, error)
	ListIssuesFunc func(ctx context.Context, repo, state string, labels []string) ([]models.GitHubIssue, error)
	AddLabelsFunc  func(ctx context.Context, repo string, number int, labels ...string) error
}

func (m *MockIssueSource) GetIssue(ctx context.Context, repo string, number int) (*models.GitHubIssue, error) {
	return m.GetIssueFunc(ctx, repo, number)
}

func (m *MockIssueSource) ListIssues(ctx context.Context, repo, state string, labels []string) ([]models.GitHubIssue, error) {
	return m.ListIssuesFunc(ctx, repo, state, labels)
}

func (m *MockIssueSource) AddLabels(ctx context.Context, repo string, number int, labels ...string) error {
	if m.AddLabelsFunc != nil {
		return m.AddLabelsFunc(ctx, repo, number, labels...)
	}
	return nil
}

type testEnv struct {
	env    *plugin.Env
	out    *bytes.Buffer
	errOut *bytes.Buffer
	cache  *cache.Cache
}

func newTestEnv(t *testing.T, tracker plugin.Tracker, p provider.Provider) *testEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Jira: config.JiraConfig{
			URL:            "https://issues.example.com",
			ProjectKey:     "AAP",
			Component:      "Core",
			Priority:       "Normal",
			AffectsVersion: "2.5",
			EpicKey:        "AAP-100",
			BoardID:        7,
		},
		ConfigDir: dir,
		CacheFile: filepath.Join(dir, config.CacheFileName),
	}

	te := &testEnv{out: &bytes.Buffer{}, errOut: &bytes.Buffer{}, cache: cache.Open(cfg.CacheFile)}
	te.env = &plugin.Env{
		Tracker:  tracker,
		Enhancer: enhance.New(p, te.cache),
		Out:      console.New(te.out, te.errOut, false),
		Config:   cfg,
	}
	return te
}

func find(t *testing.T, name string) plugin.Plugin {
	t.Helper()
	for _, p := range All() {
		if p.Name() == name {
			return p
		}
	}
	t.Fatalf("no command %q", name)
	return nil
}

func (te *testEnv) run(t *testing.T, name string, argv ...string) bool {
	t.Helper()
	p := find(t, name)
	args, err := plugin.ParseFor(p, argv)
	require.NoError(t, err)
	return p.Execute(context.Background(), te.env, args)
}

func TestAllCommandsRegister(t *testing.T) {
	r := plugin.NewRegistry()
	for _, p := range All() {
		require.NoError(t, r.Register(p), p.Name())
		assert.NotEmpty(t, p.Help(), p.Name())
		assert.NotEmpty(t, p.Examples(), p.Name())
	}

	for _, name := range []string{
		"create-issue", "edit-issue", "update-description", "batch-create", "import-github",
		"view-issue", "search", "list-issues", "list-blocked",
		"set-summary", "set-priority", "set-story-points", "set-status", "set-component",
		"set-acceptance-criteria", "add-comment", "assign", "unassign",
		"add-to-sprint", "remove-sprint", "list-sprints",
		"add-link", "set-story-epic", "block", "unblock",
		"lint", "lint-all", "config", "cache-clear",
		"set-workstream", "set-project", "add-flag", "remove-flag", "clone-issue",
		"vote-story-points", "open-issue", "quarterly-connection", "change-type", "migrate-to",
		"get-sprint", "view-user", "search-users",
	} {
		_, ok := r.Resolve(name)
		assert.True(t, ok, name)
	}

	for _, g := range r.ByCategory() {
		assert.NotEqual(t, plugin.CategoryOther, g.Category)
	}
}

func TestNeeds(t *testing.T) {
	assert.Equal(t, plugin.NeedsNothing, plugin.NeedsOf(find(t, "config")))
	assert.Equal(t, plugin.NeedsNothing, plugin.NeedsOf(find(t, "cache-clear")))
	assert.Equal(t, plugin.NeedsTracker, plugin.NeedsOf(find(t, "set-priority")))
	assert.Equal(t, plugin.DefaultNeeds, plugin.NeedsOf(find(t, "add-comment")))
	assert.True(t, plugin.NeedsOf(find(t, "import-github")).Has(plugin.NeedsGitHub|plugin.NeedsProvider))
	assert.Equal(t, plugin.NeedsNothing, plugin.NeedsOf(find(t, "open-issue")))
	assert.Equal(t, plugin.NeedsTracker, plugin.NeedsOf(find(t, "clone-issue")))
	assert.Equal(t, plugin.DefaultNeeds, plugin.NeedsOf(find(t, "quarterly-connection")))
	assert.Equal(t, plugin.CategoryReporting, find(t, "quarterly-connection").Category())
}

func TestArgumentValidation(t *testing.T) {
	p := find(t, "set-priority")

	tests := []struct {
		name string
		argv []string
	}{
		{"lower case key", []string{"aap-1", "Major"}},
		{"key without number", []string{"AAP", "Major"}},
		{"unknown priority", []string{"AAP-1", "Urgent"}},
		{"missing value", []string{"AAP-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := plugin.ParseFor(p, tt.argv)
			require.Error(t, err)
			assert.True(t, config.IsConfigError(err))
		})
	}

	args, err := plugin.ParseFor(p, []string{"AAP-1", "major"})
	require.NoError(t, err)
	assert.Equal(t, "Major", args.String("priority"))

	_, err = plugin.ParseFor(find(t, "add-to-sprint"), []string{"AAP-1", "next"})
	assert.True(t, config.IsConfigError(err))

	_, err = plugin.ParseFor(find(t, "list-sprints"), []string{"--state", "sleeping"})
	assert.True(t, config.IsConfigError(err))
}

func TestEditIssueIsIdempotent(t *testing.T) {
	description := "rough notes about uploads"
	writes := 0
	tracker := &MockTracker{
		GetIssueFunc: func(ctx context.Context, key string) (*models.Ticket, error) {
			return &models.Ticket{Key: key, Type: "Story", Description: description}, nil
		},
		SetFieldsFunc: func(ctx context.Context, key string, values map[string]any) error {
			writes++
			description = values[models.FieldDescription].(string)
			return nil
		},
	}
	p := &MockProvider{ImproveFunc: func(ctx context.Context, prompt, text string) (string, error) {
		return "Uploads should retry on timeout.", nil
	}}
	te := newTestEnv(t, tracker, p)

	assert.True(t, te.run(t, "edit-issue", "AAP-1"))
	assert.True(t, te.run(t, "edit-issue", "AAP-1"))

	assert.Equal(t, 1, p.Calls)
	assert.Equal(t, 1, writes)
	assert.Equal(t, "Uploads should retry on timeout.", description)
	assert.Contains(t, te.out.String(), "AAP-1 is up to date")
}

func TestEditIssueNewTextCallsProviderAgain(t *testing.T) {
	description := "first"
	tracker := &MockTracker{
		GetIssueFunc: func(ctx context.Context, key string) (*models.Ticket, error) {
			return &models.Ticket{Key: key, Type: "Bug", Description: description}, nil
		},
		SetFieldsFunc: func(ctx context.Context, key string, values map[string]any) error {
			description = values[models.FieldDescription].(string)
			return nil
		},
	}
	p := &MockProvider{ImproveFunc: func(ctx context.Context, prompt, text string) (string, error) {
		return strings.ToUpper(text), nil
	}}
	te := newTestEnv(t, tracker, p)

	assert.True(t, te.run(t, "edit-issue", "AAP-1"))
	assert.True(t, te.run(t, "edit-issue", "AAP-1", "--description", "second"))

	assert.Equal(t, 2, p.Calls)
	assert.Equal(t, "SECOND", description)
}

func TestUpdateDescriptionProviderFailureKeepsOriginal(t *testing.T) {
	var written any
	tracker := &MockTracker{
		SetFieldFunc: func(ctx context.Context, key, field string, value any) error {
			assert.Equal(t, models.FieldDescription, field)
			written = value
			return nil
		},
	}
	p := &MockProvider{ImproveFunc: func(ctx context.Context, prompt, text string) (string, error) {
		return "", &provider.Error{Backend: "openai", Err: errors.New("HTTP 500: overloaded")}
	}}
	te := newTestEnv(t, tracker, p)

	assert.True(t, te.run(t, "update-description", "AAP-1", "the", "original", "text"))
	assert.Equal(t, "the original text", written)
	assert.Equal(t, 0, te.cache.Len())
	assert.Contains(t, te.errOut.String(), "AI enhancement failed")
}

func TestUpdateDescriptionFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "desc.md")
	require.NoError(t, os.WriteFile(path, []byte("from a file"), 0o644))

	var written any
	tracker := &MockTracker{
		SetFieldFunc: func(ctx context.Context, key, field string, value any) error {
			written = value
			return nil
		},
	}
	te := newTestEnv(t, tracker, &MockProvider{})

	assert.True(t, te.run(t, "update-description", "AAP-1", "--file", path, "--no-ai"))
	assert.Equal(t, "from a file", written)
}

func TestMissingDependencyStillCompletes(t *testing.T) {
	var body string
	tracker := &MockTracker{
		AddCommentFunc: func(ctx context.Context, key, b string) error {
			body = b
			return nil
		},
	}
	p := &MockProvider{ImproveFunc: func(ctx context.Context, prompt, text string) (string, error) {
		return "", &provider.Error{Backend: "gpt4all", Dependency: "gpt4all", Hint: "install the gpt4all CLI"}
	}}
	te := newTestEnv(t, tracker, p)

	assert.True(t, te.run(t, "add-comment", "AAP-1", "Merged", "the", "fix"))
	assert.Equal(t, "Merged the fix", body)
	assert.Contains(t, te.errOut.String(), "missing dependency gpt4all")
	assert.Equal(t, 0, te.cache.Len())
}

func TestCommentsAreNotCached(t *testing.T) {
	p := &MockProvider{}
	te := newTestEnv(t, &MockTracker{}, p)

	assert.True(t, te.run(t, "add-comment", "AAP-1", "same"))
	assert.True(t, te.run(t, "add-comment", "AAP-1", "same"))
	assert.Equal(t, 2, p.Calls)
	assert.Equal(t, 0, te.cache.Len())
}

func TestCreateIssueAppliesDefaults(t *testing.T) {
	var created models.NewTicket
	tracker := &MockTracker{
		CreateIssueFunc: func(ctx context.Context, nt models.NewTicket) (string, error) {
			created = nt
			return "AAP-42", nil
		},
	}
	p := &MockProvider{ImproveFunc: func(ctx context.Context, prompt, text string) (string, error) {
		return "Polished description.", nil
	}}
	te := newTestEnv(t, tracker, p)

	ok := te.run(t, "create-issue", "story", "Retry uploads", "-d", "uploads fail", "--story-points", "3")
	require.True(t, ok)

	assert.Equal(t, "AAP", created.Project)
	assert.Equal(t, models.TypeStory, created.Type)
	assert.Equal(t, "Retry uploads", created.Summary)
	assert.Equal(t, "Polished description.", created.Description)
	assert.Equal(t, "Normal", created.Priority)
	assert.Equal(t, "Core", created.Component)
	assert.Equal(t, "AAP-100", created.Epic)
	assert.Empty(t, created.AffectsVersion)
	require.NotNil(t, created.StoryPoints)
	assert.Equal(t, 3.0, *created.StoryPoints)

	assert.Equal(t, 1, te.cache.Len())
	assert.Contains(t, te.out.String(), "https://issues.example.com/browse/AAP-42")
}

func TestCreateIssueByType(t *testing.T) {
	var created models.NewTicket
	tracker := &MockTracker{
		CreateIssueFunc: func(ctx context.Context, nt models.NewTicket) (string, error) {
			created = nt
			return "AAP-2", nil
		},
	}
	te := newTestEnv(t, tracker, &MockProvider{})

	require.True(t, te.run(t, "create-issue", "bug", "Crash on login", "--no-ai"))
	assert.Equal(t, "2.5", created.AffectsVersion)
	assert.Empty(t, created.Epic)

	require.True(t, te.run(t, "create-issue", "epic", "Upload reliability", "--no-ai"))
	assert.Equal(t, "Upload reliability", created.EpicName)
	assert.Empty(t, created.Epic)
	assert.Equal(t, 0, te.cache.Len())
}

func TestCreateIssueDryRun(t *testing.T) {
	tracker := &MockTracker{
		CreateIssueFunc: func(ctx context.Context, nt models.NewTicket) (string, error) {
			t.Fatal("dry run must not create")
			return "", nil
		},
	}
	te := newTestEnv(t, tracker, &MockProvider{})

	assert.True(t, te.run(t, "create-issue", "task", "Rotate keys", "--dry-run", "--no-ai"))
	assert.Contains(t, te.out.String(), "Dry run")
}

func TestCreateIssueFromInputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ticket.yaml")
	require.NoError(t, os.WriteFile(path, []byte("type: bug\nsummary: From file\npriority: Major\n"), 0o644))

	var created models.NewTicket
	tracker := &MockTracker{
		CreateIssueFunc: func(ctx context.Context, nt models.NewTicket) (string, error) {
			created = nt
			return "AAP-3", nil
		},
	}
	te := newTestEnv(t, tracker, &MockProvider{})

	require.True(t, te.run(t, "create-issue", "task", "ignored", "--input-file", path, "--no-ai", "-q"))
	assert.Equal(t, models.TypeBug, created.Type)
	assert.Equal(t, "From file", created.Summary)
	assert.Equal(t, "Major", created.Priority)
	assert.Equal(t, "AAP-3\n", te.out.String())
}

func TestBatchCreatePartialFailure(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"1-first.yaml": "type: story\nsummary: one\n",
		"2-second.yml": "type: bug\nsummary: two\n",
		"3-third.json": `{"type": "task", "summary": "three"}`,
		"notes.txt":    "not a ticket",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}

	var created []string
	n := 0
	tracker := &MockTracker{
		CreateIssueFunc: func(ctx context.Context, nt models.NewTicket) (string, error) {
			if nt.Summary == "two" {
				return "", errors.New("jira create (HTTP 400): components is required")
			}
			n++
			created = append(created, nt.Summary)
			return fmt.Sprintf("AAP-%d", n), nil
		},
	}
	te := newTestEnv(t, tracker, &MockProvider{})

	ok := te.run(t, "batch-create", dir, "--no-ai")
	assert.False(t, ok)
	assert.Equal(t, []string{"one", "three"}, created)
	assert.Contains(t, te.errOut.String(), "2-second.yml")
	assert.Contains(t, te.errOut.String(), "1 of 3 items failed")
}

func TestLintAllPartialFailure(t *testing.T) {
	points := 3.0
	good := func(key string) models.Ticket {
		return models.Ticket{
			Key: key, Type: "Story", Status: "In Progress", Assignee: "jdoe",
			Epic: "AAP-100", Sprint: "Sprint 12", Priority: "Major", StoryPoints: &points,
		}
	}
	bad := good("AAP-2")
	bad.Priority = ""

	tracker := &MockTracker{
		SearchFunc: func(ctx context.Context, jql string, max int) ([]models.Ticket, error) {
			return []models.Ticket{good("AAP-1"), bad, good("AAP-3")}, nil
		},
	}
	te := newTestEnv(t, tracker, &MockProvider{})

	assert.False(t, te.run(t, "lint-all", "--no-ai"))
	assert.Contains(t, te.errOut.String(), "AAP-2: ❌ Priority not set")
	assert.Contains(t, te.errOut.String(), "1 of 3 items failed")
	assert.Contains(t, te.out.String(), "✅ AAP-1")
	assert.Contains(t, te.out.String(), "✅ AAP-3")
}

func TestLintRules(t *testing.T) {
	points := 2.0
	tests := []struct {
		name   string
		ticket models.Ticket
		want   []string
	}{
		{
			name: "clean",
			ticket: models.Ticket{
				Type: "Story", Status: "In Progress", Assignee: "a", Epic: "AAP-1",
				Sprint: "S", Priority: "Major", StoryPoints: &points,
			},
		},
		{
			name:   "in progress without owner or sprint",
			ticket: models.Ticket{Type: "Story", Status: "In Progress", Epic: "AAP-1", Priority: "Major", StoryPoints: &points},
			want: []string{
				"❌ Issue is In Progress but unassigned",
				"❌ Issue is In Progress but not assigned to a Sprint",
			},
		},
		{
			name:   "refinement skips epic and points",
			ticket: models.Ticket{Type: "Story", Status: "Refinement", Priority: "Major"},
		},
		{
			name:   "epics need no epic",
			ticket: models.Ticket{Type: "Epic", Status: "Backlog", Priority: "Major", StoryPoints: &points},
		},
		{
			name:   "backlog story",
			ticket: models.Ticket{Type: "Story", Status: "Backlog"},
			want: []string{
				"❌ Issue has no assigned Epic",
				"❌ Priority not set",
				"❌ Story points not assigned",
			},
		},
		{
			name:   "blocked without reason",
			ticket: models.Ticket{Type: "Epic", Status: "New", Priority: "Minor", Blocked: true},
			want:   []string{"❌ Issue is blocked but has no blocked reason"},
		},
	}

	args, err := plugin.ParseFor(find(t, "lint"), []string{"AAP-1", "--no-ai"})
	require.NoError(t, err)
	te := newTestEnv(t, &MockTracker{}, &MockProvider{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lintTicket(context.Background(), te.env, args, &tt.ticket)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLintReviewIsCached(t *testing.T) {
	points := 1.0
	tracker := &MockTracker{
		GetIssueFunc: func(ctx context.Context, key string) (*models.Ticket, error) {
			return &models.Ticket{
				Key: key, Type: "Epic", Status: "New", Priority: "Major", StoryPoints: &points,
				Summary: "Upload reliability", Description: "stuff",
			}, nil
		},
	}
	p := &MockProvider{ImproveFunc: func(ctx context.Context, prompt, text string) (string, error) {
		if strings.Contains(prompt, "Jira Description") {
			return "Too vague.", nil
		}
		return "OK", nil
	}}
	te := newTestEnv(t, tracker, p)

	assert.False(t, te.run(t, "lint", "AAP-1"))
	assert.Equal(t, 2, p.Calls)
	assert.Contains(t, te.out.String(), "❌ Description: Too vague.")

	assert.False(t, te.run(t, "lint", "AAP-1"))
	assert.Equal(t, 3, p.Calls, "the passing summary is not reviewed again")

	assert.False(t, te.run(t, "lint", "AAP-1", "--no-cache"))
	assert.Equal(t, 5, p.Calls)
}

func TestLintNoCacheStillRecordsPasses(t *testing.T) {
	points := 1.0
	tracker := &MockTracker{
		GetIssueFunc: func(ctx context.Context, key string) (*models.Ticket, error) {
			return &models.Ticket{
				Key: key, Type: "Epic", Status: "New", Priority: "Major", StoryPoints: &points,
				Summary: "Upload reliability", Description: "Retry failed uploads.",
			}, nil
		},
	}
	p := &MockProvider{ImproveFunc: func(ctx context.Context, prompt, text string) (string, error) {
		return "OK", nil
	}}
	te := newTestEnv(t, tracker, p)

	require.True(t, te.run(t, "lint", "AAP-1", "--no-cache"))
	assert.Equal(t, 2, p.Calls)
	assert.Equal(t, 1, te.cache.Len())

	require.True(t, te.run(t, "lint", "AAP-1"))
	assert.Equal(t, 2, p.Calls)
}

func TestAddLinkDirection(t *testing.T) {
	tests := []struct {
		relation string
		linkType string
		inward   string
		outward  string
	}{
		{"blocks", "Blocks", "AAP-2", "AAP-1"},
		{"blocked-by", "Blocks", "AAP-1", "AAP-2"},
		{"relates", "Relates", "AAP-2", "AAP-1"},
		{"duplicates", "Duplicate", "AAP-2", "AAP-1"},
		{"clones", "Cloners", "AAP-2", "AAP-1"},
	}
	for _, tt := range tests {
		t.Run(tt.relation, func(t *testing.T) {
			var gotType, gotIn, gotOut string
			tracker := &MockTracker{
				AddLinkFunc: func(ctx context.Context, linkType, inward, outward string) error {
					gotType, gotIn, gotOut = linkType, inward, outward
					return nil
				},
			}
			te := newTestEnv(t, tracker, nil)

			require.True(t, te.run(t, "add-link", "AAP-1", tt.relation, "AAP-2"))
			assert.Equal(t, tt.linkType, gotType)
			assert.Equal(t, tt.inward, gotIn)
			assert.Equal(t, tt.outward, gotOut)
		})
	}
}

func TestIssueQuery(t *testing.T) {
	te := newTestEnv(t, &MockTracker{}, nil)
	p := find(t, "list-issues")

	tests := []struct {
		name string
		argv []string
		want string
	}{
		{
			name: "defaults",
			want: `project="AAP" AND component="Core" AND assignee=currentUser() AND status NOT IN ("Closed","Done","Cancelled") ORDER BY updated DESC`,
		},
		{
			name: "reporter drops the current user",
			argv: []string{"--reporter", "jdoe", "--project", "ABC"},
			want: `project="ABC" AND component="Core" AND reporter="jdoe" AND status NOT IN ("Closed","Done","Cancelled") ORDER BY updated DESC`,
		},
		{
			name: "assignee and status",
			argv: []string{"--assignee", "jdoe", "--status", "In Progress"},
			want: `project="AAP" AND component="Core" AND assignee="jdoe" AND status="In Progress" AND status NOT IN ("Closed","Done","Cancelled") ORDER BY updated DESC`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := plugin.ParseFor(p, tt.argv)
			require.NoError(t, err)
			assert.Equal(t, tt.want, issueQuery(te.env, args))
		})
	}
}

func TestListBlockedFilters(t *testing.T) {
	tracker := &MockTracker{
		SearchFunc: func(ctx context.Context, jql string, max int) ([]models.Ticket, error) {
			assert.Equal(t, 10, max)
			return []models.Ticket{
				{Key: "AAP-1", Blocked: true, BlockedReason: "waiting on infra"},
				{Key: "AAP-2"},
			}, nil
		},
	}
	te := newTestEnv(t, tracker, nil)

	require.True(t, te.run(t, "list-blocked", "-m", "10"))
	assert.Contains(t, te.out.String(), "AAP-1")
	assert.Contains(t, te.out.String(), "waiting on infra")
	assert.NotContains(t, te.out.String(), "AAP-2")
}

func TestSetters(t *testing.T) {
	tests := []struct {
		command string
		argv    []string
		field   string
		value   any
	}{
		{"set-summary", []string{"AAP-1", "New", "title"}, models.FieldSummary, "New title"},
		{"set-priority", []string{"AAP-1", "critical"}, models.FieldPriority, "Critical"},
		{"set-story-points", []string{"AAP-1", "8"}, models.FieldStoryPoints, 8},
		{"set-component", []string{"AAP-1", "Automation", "Hub"}, models.FieldComponent, "Automation Hub"},
		{"set-story-epic", []string{"AAP-1", "AAP-100"}, models.FieldEpic, "AAP-100"},
		{"set-project", []string{"AAP-1", "rhel"}, models.FieldProject, "RHEL"},
		{"set-workstream", []string{"AAP-1", "--workstream-id", "12"}, models.FieldWorkstream, "12"},
		{"change-type", []string{"AAP-1", "spike"}, models.FieldIssueType, "spike"},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			var field string
			var value any
			tracker := &MockTracker{
				SetFieldFunc: func(ctx context.Context, key, f string, v any) error {
					assert.Equal(t, "AAP-1", key)
					field, value = f, v
					return nil
				},
			}
			te := newTestEnv(t, tracker, nil)

			require.True(t, te.run(t, tt.command, tt.argv...))
			assert.Equal(t, tt.field, field)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestTrackerFailureReturnsFalse(t *testing.T) {
	tracker := &MockTracker{
		TransitionFunc: func(ctx context.Context, key, status string) error {
			return errors.New(`jira transition AAP-1: no transition to "Shipped"`)
		},
	}
	te := newTestEnv(t, tracker, nil)

	assert.False(t, te.run(t, "set-status", "AAP-1", "Shipped"))
	assert.Contains(t, te.errOut.String(), "❌ ")
	assert.Contains(t, te.errOut.String(), "Shipped")
}

func TestBlockAndUnblock(t *testing.T) {
	var got map[string]any
	tracker := &MockTracker{
		SetFieldsFunc: func(ctx context.Context, key string, values map[string]any) error {
			got = values
			return nil
		},
	}
	te := newTestEnv(t, tracker, nil)

	require.True(t, te.run(t, "block", "AAP-1", "waiting", "on", "infra"))
	assert.Equal(t, map[string]any{models.FieldBlocked: true, models.FieldBlockedReason: "waiting on infra"}, got)

	require.True(t, te.run(t, "unblock", "AAP-1"))
	assert.Equal(t, map[string]any{models.FieldBlocked: false, models.FieldBlockedReason: ""}, got)
}

func TestAssignAndUnassign(t *testing.T) {
	var user string
	tracker := &MockTracker{
		AssignFunc: func(ctx context.Context, key, u string) error {
			user = u
			return nil
		},
	}
	te := newTestEnv(t, tracker, nil)

	require.True(t, te.run(t, "assign", "AAP-1", "jdoe"))
	assert.Equal(t, "jdoe", user)
	require.True(t, te.run(t, "unassign", "AAP-1"))
	assert.Equal(t, "", user)
}

func TestListSprintsUsesConfiguredBoard(t *testing.T) {
	tracker := &MockTracker{
		ListSprintsFunc: func(ctx context.Context, boardID int, state string) ([]models.Sprint, error) {
			assert.Equal(t, 7, boardID)
			assert.Equal(t, "", state)
			return []models.Sprint{{ID: 4521, Name: "Sprint 12", State: "active"}}, nil
		},
	}
	te := newTestEnv(t, tracker, nil)

	require.True(t, te.run(t, "list-sprints", "--state", "all"))
	assert.Contains(t, te.out.String(), "4521")
	assert.Contains(t, te.out.String(), "Sprint 12")
}

func TestGetSprint(t *testing.T) {
	tests := []struct {
		name    string
		sprints []models.Sprint
		wantOK  bool
		wantOut string
		wantErr string
	}{
		{
			name:    "active sprint",
			sprints: []models.Sprint{{ID: 4521, Name: "Sprint 12", State: "active"}},
			wantOK:  true,
			wantOut: "Sprint 12\n",
		},
		{name: "no active sprint", wantErr: "Board 7 has no active sprint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := &MockTracker{
				ListSprintsFunc: func(ctx context.Context, boardID int, state string) ([]models.Sprint, error) {
					assert.Equal(t, 7, boardID)
					assert.Equal(t, "active", state)
					return tt.sprints, nil
				},
			}
			te := newTestEnv(t, tracker, nil)

			assert.Equal(t, tt.wantOK, te.run(t, "get-sprint"))
			if tt.wantOut != "" {
				assert.Equal(t, tt.wantOut, te.out.String())
			}
			if tt.wantErr != "" {
				assert.Contains(t, te.errOut.String(), tt.wantErr)
			}
		})
	}
}

func TestGetSprintNeedsBoard(t *testing.T) {
	te := newTestEnv(t, &MockTracker{}, nil)
	te.env.Config.Jira.BoardID = 0

	assert.False(t, te.run(t, "get-sprint"))
	assert.Contains(t, te.errOut.String(), "JIRA_BOARD_ID")
}

func TestViewUser(t *testing.T) {
	tracker := &MockTracker{
		GetUserFunc: func(ctx context.Context, username string) (*models.User, error) {
			assert.Equal(t, "jdoe", username)
			return &models.User{Name: "jdoe", DisplayName: "Jane Doe", Email: "jdoe@example.com", Active: true}, nil
		},
	}
	te := newTestEnv(t, tracker, nil)

	require.True(t, te.run(t, "view-user", "jdoe"))
	assert.Contains(t, te.out.String(), "Jane Doe")
	assert.Contains(t, te.out.String(), "jdoe@example.com")

	tracker.GetUserFunc = func(ctx context.Context, username string) (*models.User, error) {
		return nil, errors.New("jira user (HTTP 404): user does not exist")
	}
	assert.False(t, te.run(t, "view-user", "ghost"))
	assert.Contains(t, te.errOut.String(), "Unable to retrieve user")
}

func TestSearchUsers(t *testing.T) {
	tracker := &MockTracker{
		SearchUsersFunc: func(ctx context.Context, query string, max int) ([]models.User, error) {
			assert.Equal(t, "jane doe", query)
			assert.Equal(t, 3, max)
			return []models.User{
				{Name: "jdoe", DisplayName: "Jane Doe", Active: true},
				{Name: "jdoe2", DisplayName: "Jane Doe"},
			}, nil
		},
	}
	te := newTestEnv(t, tracker, nil)

	require.True(t, te.run(t, "search-users", "jane", "doe", "-m", "3"))
	assert.Contains(t, te.out.String(), "jdoe2")
	assert.Contains(t, te.out.String(), "DISPLAY NAME")

	tracker.SearchUsersFunc = nil
	assert.False(t, te.run(t, "search-users", "nobody"))
	assert.Contains(t, te.errOut.String(), "No users found")
}

func TestSetAcceptanceCriteriaFromDescription(t *testing.T) {
	var written any
	tracker := &MockTracker{
		GetFieldFunc: func(ctx context.Context, key, field string) (string, error) {
			return "Uploads fail on flaky networks.", nil
		},
		SetFieldFunc: func(ctx context.Context, key, field string, value any) error {
			assert.Equal(t, models.FieldAcceptanceCriteria, field)
			written = value
			return nil
		},
	}
	p := &MockProvider{ImproveFunc: func(ctx context.Context, prompt, text string) (string, error) {
		return "* Uploads retry three times", nil
	}}
	te := newTestEnv(t, tracker, p)

	require.True(t, te.run(t, "set-acceptance-criteria", "AAP-1", "--ai-from-description"))
	assert.Equal(t, "* Uploads retry three times", written)
	assert.Equal(t, 1, te.cache.Len())

	assert.False(t, te.run(t, "set-acceptance-criteria", "AAP-1", "--ai-from-description", "--no-ai"))
}

func TestImportGitHub(t *testing.T) {
	var created []models.NewTicket
	tracker := &MockTracker{
		CreateIssueFunc: func(ctx context.Context, nt models.NewTicket) (string, error) {
			created = append(created, nt)
			return "AAP-7", nil
		},
	}
	var labeled []string
	source := &MockIssueSource{
		ListIssuesFunc: func(ctx context.Context, repo, state string, labels []string) ([]models.GitHubIssue, error) {
			assert.Equal(t, "acme/app", repo)
			assert.Equal(t, "open", state)
			assert.Equal(t, []string{"bug"}, labels)
			return []models.GitHubIssue{
				{Number: 1, Title: "Crash", Description: "trace", URL: "https://github.com/acme/app/issues/1"},
				{Number: 2, Title: "Old", Labels: []string{"jira-id: AAP-3"}},
			}, nil
		},
		AddLabelsFunc: func(ctx context.Context, repo string, number int, labels ...string) error {
			assert.Equal(t, 1, number)
			labeled = labels
			return nil
		},
	}
	te := newTestEnv(t, tracker, nil)
	te.env.GitHub = source

	require.True(t, te.run(t, "import-github", "acme/app", "--label", "bug", "--type", "bug", "--tag", "--no-ai"))
	require.Len(t, created, 1)
	assert.Equal(t, "Crash", created[0].Summary)
	assert.Equal(t, models.TypeBug, created[0].Type)
	assert.True(t, strings.HasSuffix(created[0].Description, "Imported from GitHub issue https://github.com/acme/app/issues/1"))
	assert.Equal(t, []string{"jira-id: AAP-7"}, labeled)
	assert.Contains(t, te.out.String(), "already imported as AAP-3")
}

func TestImportGitHubByNumber(t *testing.T) {
	titles := map[int]string{4: "four", 5: "five"}
	var created []string
	tracker := &MockTracker{
		CreateIssueFunc: func(ctx context.Context, nt models.NewTicket) (string, error) {
			created = append(created, nt.Summary)
			return fmt.Sprintf("AAP-%d", 10+len(created)), nil
		},
	}
	source := &MockIssueSource{
		GetIssueFunc: func(ctx context.Context, repo string, number int) (*models.GitHubIssue, error) {
			title, ok := titles[number]
			if !ok {
				return nil, fmt.Errorf("%s#%d: not found", repo, number)
			}
			return &models.GitHubIssue{Number: number, Title: title}, nil
		},
	}
	te := newTestEnv(t, tracker, nil)
	te.env.GitHub = source

	assert.False(t, te.run(t, "import-github", "acme/app", "4", "9", "5", "--no-ai"))
	assert.Equal(t, []string{"four", "five"}, created)
	assert.Contains(t, te.out.String(), "acme/app#4: created AAP-11")
	assert.Contains(t, te.out.String(), "acme/app#5: created AAP-12")
	assert.Contains(t, te.errOut.String(), "acme/app#9")
	assert.Contains(t, te.errOut.String(), "1 of 3 items failed")
}

func TestCacheClear(t *testing.T) {
	te := newTestEnv(t, nil, nil)
	te.env.Enhancer.Remember("AAP-1", models.FieldDescription, "x")
	te.env.Enhancer.Remember("AAP-2", models.FieldDescription, "y")

	require.True(t, te.run(t, "cache-clear", "AAP-1"))
	assert.Equal(t, 1, cache.Open(te.env.Config.CacheFile).Len())

	require.True(t, te.run(t, "cache-clear", "--all"))
	assert.Equal(t, 0, cache.Open(te.env.Config.CacheFile).Len())

	assert.False(t, te.run(t, "cache-clear"))
}

func TestConfigInit(t *testing.T) {
	te := newTestEnv(t, nil, nil)
	path := filepath.Join(te.env.Config.ConfigDir, config.ConfigFileName)

	require.True(t, te.run(t, "config", "init"))
	assert.FileExists(t, path)
	assert.False(t, te.run(t, "config", "init"))
	assert.Contains(t, te.errOut.String(), "--force")
	assert.True(t, te.run(t, "config", "init", "--force"))

	te.out.Reset()
	require.True(t, te.run(t, "config", "path"))
	assert.Equal(t, path+"\n", te.out.String())
}

func TestSetWorkstreamDefault(t *testing.T) {
	var value any
	tracker := &MockTracker{
		SetFieldFunc: func(ctx context.Context, key, field string, v any) error {
			value = v
			return nil
		},
	}
	te := newTestEnv(t, tracker, nil)

	assert.False(t, te.run(t, "set-workstream", "AAP-1"))
	assert.Contains(t, te.errOut.String(), "JIRA_WORKSTREAM_ID")
	assert.Nil(t, value)

	te.env.Config.Jira.WorkstreamID = "4711"
	require.True(t, te.run(t, "set-workstream", "AAP-1"))
	assert.Equal(t, "4711", value)
}

func TestBoardFlags(t *testing.T) {
	var calls []bool
	tracker := &MockTracker{
		SetFlagFunc: func(ctx context.Context, key string, flagged bool) error {
			assert.Equal(t, "AAP-1", key)
			calls = append(calls, flagged)
			return nil
		},
	}
	te := newTestEnv(t, tracker, nil)

	require.True(t, te.run(t, "add-flag", "AAP-1"))
	require.True(t, te.run(t, "remove-flag", "AAP-1"))
	assert.Equal(t, []bool{true, false}, calls)
	assert.Contains(t, te.out.String(), "Flagged AAP-1")
}

func TestVoteStoryPoints(t *testing.T) {
	var voted int
	tracker := &MockTracker{
		VoteStoryPointsFunc: func(ctx context.Context, key string, points int) error {
			voted = points
			return nil
		},
	}
	te := newTestEnv(t, tracker, nil)

	require.True(t, te.run(t, "vote-story-points", "AAP-1", "5"))
	assert.Equal(t, 5, voted)
	assert.Contains(t, te.out.String(), "Voted 5 points on AAP-1")

	_, err := plugin.ParseFor(find(t, "vote-story-points"), []string{"AAP-1", "five"})
	assert.True(t, config.IsConfigError(err))
}

func TestCloneIssue(t *testing.T) {
	points := 3.0
	var created models.NewTicket
	var linkType, inward, outward string
	var copiedAC string
	tracker := &MockTracker{
		GetIssueFunc: func(ctx context.Context, key string) (*models.Ticket, error) {
			return &models.Ticket{
				Key: key, Type: "Story", Summary: "Retry uploads", Description: "body",
				AcceptanceCriteria: "* retries", Priority: "Major", StoryPoints: &points,
				Epic: "RHEL-1", Components: []string{"Storage"},
			}, nil
		},
		CreateIssueFunc: func(ctx context.Context, nt models.NewTicket) (string, error) {
			created = nt
			return "RHEL-9", nil
		},
		AddLinkFunc: func(ctx context.Context, lt, in, out string) error {
			linkType, inward, outward = lt, in, out
			return nil
		},
		SetFieldFunc: func(ctx context.Context, key, field string, value any) error {
			assert.Equal(t, "RHEL-9", key)
			assert.Equal(t, models.FieldAcceptanceCriteria, field)
			copiedAC, _ = value.(string)
			return nil
		},
	}
	te := newTestEnv(t, tracker, nil)

	require.True(t, te.run(t, "clone-issue", "RHEL-5"))
	assert.Equal(t, models.NewTicket{
		Project: "RHEL", Type: models.TypeStory, Summary: "CLONE - Retry uploads", Description: "body",
		Priority: "Major", StoryPoints: &points, Epic: "RHEL-1", Component: "Storage",
	}, created)
	assert.Equal(t, []string{"Cloners", "RHEL-5", "RHEL-9"}, []string{linkType, inward, outward})
	assert.Equal(t, "* retries", copiedAC)
	assert.Contains(t, te.out.String(), "Cloned RHEL-5 as RHEL-9")

	require.True(t, te.run(t, "clone-issue", "RHEL-5", "--summary", "Retry uploads (2.6)"))
	assert.Equal(t, "Retry uploads (2.6)", created.Summary)
}

func TestCloneIssueLinkFailureOnlyWarns(t *testing.T) {
	tracker := &MockTracker{
		AddLinkFunc: func(ctx context.Context, lt, in, out string) error {
			return errors.New("jira link (HTTP 404): no link type Cloners")
		},
	}
	te := newTestEnv(t, tracker, nil)

	assert.True(t, te.run(t, "clone-issue", "AAP-5"))
	assert.Contains(t, te.errOut.String(), "could not link it to AAP-5")
}

func TestMigrateTo(t *testing.T) {
	var created models.NewTicket
	var comment string
	var tried []string
	tracker := &MockTracker{
		GetIssueFunc: func(ctx context.Context, key string) (*models.Ticket, error) {
			return &models.Ticket{Key: key, Type: "Story", Summary: "Retry uploads", Description: "body", Priority: "Major"}, nil
		},
		CreateIssueFunc: func(ctx context.Context, nt models.NewTicket) (string, error) {
			created = nt
			return "AAP-20", nil
		},
		AddCommentFunc: func(ctx context.Context, key, body string) error {
			assert.Equal(t, "AAP-5", key)
			comment = body
			return nil
		},
		TransitionFunc: func(ctx context.Context, key, status string) error {
			tried = append(tried, status)
			if status == "Closed" {
				return nil
			}
			return fmt.Errorf("jira transition %s: no transition to %q", key, status)
		},
	}
	te := newTestEnv(t, tracker, nil)

	require.True(t, te.run(t, "migrate-to", "epic", "AAP-5"))
	assert.Equal(t, "AAP", created.Project)
	assert.Equal(t, models.TypeEpic, created.Type)
	assert.Equal(t, "Retry uploads", created.Summary)
	assert.Equal(t, "Retry uploads", created.EpicName)
	assert.Equal(t, "body", created.Description)
	assert.Equal(t, "Migrated to [AAP-20|https://issues.example.com/browse/AAP-20] as Epic.", comment)
	assert.Equal(t, []string{"Done", "Closed"}, tried)
	assert.Contains(t, te.out.String(), "Migrated AAP-5 to Epic AAP-20")
	assert.Empty(t, te.errOut.String())
}

func TestMigrateToWithoutClosingTransition(t *testing.T) {
	tracker := &MockTracker{
		GetIssueFunc: func(ctx context.Context, key string) (*models.Ticket, error) {
			return &models.Ticket{Key: key}, nil
		},
		TransitionFunc: func(ctx context.Context, key, status string) error {
			return errors.New("no transition")
		},
	}
	var created models.NewTicket
	tracker.CreateIssueFunc = func(ctx context.Context, nt models.NewTicket) (string, error) {
		created = nt
		return "AAP-21", nil
	}
	te := newTestEnv(t, tracker, nil)

	assert.True(t, te.run(t, "migrate-to", "task", "AAP-6"))
	assert.Equal(t, "Migrated from AAP-6", created.Summary)
	assert.Contains(t, te.errOut.String(), "close it by hand")
}

func TestMigrateToCreateFailure(t *testing.T) {
	tracker := &MockTracker{
		CreateIssueFunc: func(ctx context.Context, nt models.NewTicket) (string, error) {
			return "", errors.New("jira create (HTTP 400): issuetype is required")
		},
		AddCommentFunc: func(ctx context.Context, key, body string) error {
			t.Fatal("old issue must not be touched when create fails")
			return nil
		},
	}
	te := newTestEnv(t, tracker, nil)

	assert.False(t, te.run(t, "migrate-to", "bug", "AAP-7"))
	assert.Contains(t, te.errOut.String(), "issuetype is required")
}

func TestOpenIssue(t *testing.T) {
	var opened string
	original := openURL
	openURL = func(url string) error {
		opened = url
		return nil
	}
	t.Cleanup(func() { openURL = original })

	te := newTestEnv(t, nil, nil)
	require.True(t, te.run(t, "open-issue", "AAP-12"))
	assert.Equal(t, "https://issues.example.com/browse/AAP-12", opened)

	te.env.Config.Jira.URL = ""
	assert.False(t, te.run(t, "open-issue", "AAP-12"))
	assert.Contains(t, te.errOut.String(), "JIRA_URL")
}

func quarterTracker(t *testing.T) *MockTracker {
	return &MockTracker{
		SearchFunc: func(ctx context.Context, jql string, max int) ([]models.Ticket, error) {
			assert.Contains(t, jql, "assignee = currentUser()")
			assert.Contains(t, jql, "updated >= -90d")
			assert.Equal(t, 1000, max)
			return []models.Ticket{
				{Key: "AAP-1", Summary: "Retry uploads", Type: "Story", Status: "Closed"},
				{Key: "AAP-2", Summary: "CVE-2024-1234 in libfoo", Type: "Bug", Status: "New"},
				{Key: "AAP-3", Summary: "Faster login", Type: "Story", Status: "In Progress", Description: "cache tokens"},
			}, nil
		},
	}
}

func TestQuarterlyConnection(t *testing.T) {
	var input string
	p := &MockProvider{ImproveFunc: func(ctx context.Context, prompt, text string) (string, error) {
		assert.Contains(t, prompt, "quarterly")
		input = text
		return "Shipped upload retries; login work continues.", nil
	}}
	te := newTestEnv(t, quarterTracker(t), p)

	require.True(t, te.run(t, "quarterly-connection"))
	assert.Equal(t, 1, p.Calls)
	assert.Contains(t, input, "[AAP-1] Retry uploads")
	assert.Contains(t, input, "Description: cache tokens")
	assert.NotContains(t, input, "CVE")
	assert.Contains(t, te.out.String(), "Shipped upload retries")
	assert.Equal(t, 0, te.cache.Len())
}

func TestQuarterlyConnectionWithoutAI(t *testing.T) {
	tests := []struct {
		name string
		p    *MockProvider
		argv []string
		warn string
	}{
		{name: "no-ai flag", p: &MockProvider{}, argv: []string{"--no-ai"}},
		{
			name: "provider failure",
			p: &MockProvider{ImproveFunc: func(ctx context.Context, prompt, text string) (string, error) {
				return "", &provider.Error{Backend: "ollama", Err: errors.New("connection refused")}
			}},
			warn: "AI summary unavailable",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := newTestEnv(t, quarterTracker(t), tt.p)

			require.True(t, te.run(t, "quarterly-connection", tt.argv...))
			out := te.out.String()
			assert.Contains(t, out, "Status distribution")
			assert.Regexp(t, `Story\s+2`, out)
			assert.Regexp(t, `Closed\s+1`, out)
			assert.NotContains(t, out, "AAP-2")
			if tt.warn != "" {
				assert.Contains(t, te.errOut.String(), tt.warn)
			}
		})
	}
}

func TestQuarterlyConnectionNothingToReport(t *testing.T) {
	te := newTestEnv(t, &MockTracker{}, &MockProvider{})

	require.True(t, te.run(t, "quarterly-connection", "--days", "30"))
	assert.Contains(t, te.out.String(), "No issues to report")
}
