// Package jira implements the ticket tracker on top of go-jira.
//
// Handlers address fields by logical name (models.Field*); the client maps
// those to Jira field ids using the configured custom field table.
package jira

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	jira "github.com/andygrunwald/go-jira"
	"golang.org/x/oauth2"

	"github.com/danielolaszy/rh-issue/internal/config"
	"github.com/danielolaszy/rh-issue/internal/logging"
	"github.com/danielolaszy/rh-issue/pkg/models"
)

// Client handles interactions with the JIRA API
type Client struct {
	client *jira.Client
	fields config.FieldConfig
}

// RequestError is returned for every failed tracker operation.
type RequestError struct {
	Op  string
	Key string
	// StatusCode is zero when no response was received.
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	var b strings.Builder
	b.WriteString("jira ")
	b.WriteString(e.Op)
	if e.Key != "" {
		b.WriteString(" ")
		b.WriteString(e.Key)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.StatusCode)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// NewClient creates a JIRA client. A personal access token is sent as a
// bearer token; otherwise username and token are used for basic auth.
func NewClient(cfg config.JiraConfig, fields config.FieldConfig, timeout time.Duration) (*Client, error) {
	if cfg.URL == "" {
		return nil, config.Errorf("JIRA_URL is not set")
	}

	var httpClient *http.Client
	switch {
	case cfg.PAT != "":
		httpClient = &http.Client{
			Transport: &oauth2.Transport{
				Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.PAT}),
				Base:   http.DefaultTransport,
			},
		}
	case cfg.Username != "" && cfg.Token != "":
		tp := jira.BasicAuthTransport{
			Username: cfg.Username,
			Password: cfg.Token,
		}
		httpClient = tp.Client()
	default:
		return nil, config.Errorf("either JIRA_JPAT or JIRA_USERNAME and JIRA_TOKEN must be set")
	}
	httpClient.Timeout = timeout

	client, err := jira.NewClient(httpClient, cfg.URL)
	if err != nil {
		return nil, &config.Error{Reason: "invalid JIRA_URL", Err: err}
	}

	logging.Debug("jira client ready", "url", cfg.URL, "bearer", cfg.PAT != "")
	return &Client{client: client, fields: fields}, nil
}

// fail builds a RequestError from a go-jira result. go-jira only decodes the
// error body for some calls; decode reports whether this one still needs it.
func fail(op, key string, resp *jira.Response, err error, decode bool) error {
	re := &RequestError{Op: op, Key: key, Err: err}
	if resp != nil && resp.Response != nil {
		re.StatusCode = resp.StatusCode
		if decode {
			re.Err = jira.NewJiraError(resp, err)
		}
	}
	return re
}

func closeBody(resp *jira.Response) {
	if resp != nil && resp.Response != nil && resp.Body != nil {
		resp.Body.Close()
	}
}

// fieldID maps a logical field name to the Jira field id. Names that are not
// logical fields are passed through, so raw ids like "customfield_1" work.
func (c *Client) fieldID(field string) string {
	switch field {
	case models.FieldAcceptanceCriteria:
		return c.fields.AcceptanceCriteria
	case models.FieldStoryPoints:
		return c.fields.StoryPoints
	case models.FieldSprint:
		return c.fields.Sprint
	case models.FieldEpic:
		return c.fields.Epic
	case models.FieldEpicName:
		return c.fields.EpicName
	case models.FieldBlocked:
		return c.fields.Blocked
	case models.FieldBlockedReason:
		return c.fields.BlockedReason
	case models.FieldWorkstream:
		return c.fields.Workstream
	case models.FieldComponent:
		return "components"
	}
	return field
}

// fieldValue shapes value the way Jira expects it for field.
func fieldValue(field string, value any) any {
	switch field {
	case models.FieldPriority:
		return map[string]any{"name": value}
	case models.FieldAssignee:
		if s, ok := value.(string); ok && s == "" {
			return nil
		}
		return map[string]any{"name": value}
	case models.FieldComponent:
		return []map[string]any{{"name": value}}
	case models.FieldWorkstream:
		return []map[string]any{{"id": value}}
	case models.FieldProject:
		return map[string]any{"key": value}
	case models.FieldIssueType:
		if s, ok := value.(string); ok {
			return map[string]any{"name": models.IssueType(s).JiraName()}
		}
		return map[string]any{"name": value}
	case models.FieldBlocked:
		flag := "False"
		if b, ok := value.(bool); ok && b {
			flag = "True"
		}
		return map[string]any{"value": flag}
	}
	return value
}

// SetField writes one field of an issue.
func (c *Client) SetField(ctx context.Context, key, field string, value any) error {
	data := map[string]any{
		"fields": map[string]any{c.fieldID(field): fieldValue(field, value)},
	}
	resp, err := c.client.Issue.UpdateIssueWithContext(ctx, key, data)
	if err != nil {
		return fail("set "+field, key, resp, err, true)
	}
	closeBody(resp)
	logging.Info("updated field", "key", key, "field", field)
	return nil
}

// SetFields writes several fields of an issue in one request.
func (c *Client) SetFields(ctx context.Context, key string, values map[string]any) error {
	fields := make(map[string]any, len(values))
	for field, value := range values {
		fields[c.fieldID(field)] = fieldValue(field, value)
	}
	resp, err := c.client.Issue.UpdateIssueWithContext(ctx, key, map[string]any{"fields": fields})
	if err != nil {
		return fail("update", key, resp, err, true)
	}
	closeBody(resp)
	return nil
}

// GetField returns the text of one field.
func (c *Client) GetField(ctx context.Context, key, field string) (string, error) {
	t, err := c.GetIssue(ctx, key)
	if err != nil {
		return "", err
	}
	if field == models.FieldStoryPoints {
		if t.StoryPoints == nil {
			return "", nil
		}
		return strconv.FormatFloat(*t.StoryPoints, 'f', -1, 64), nil
	}
	return t.Field(field), nil
}

// GetIssue fetches an issue with the fields the CLI knows about.
func (c *Client) GetIssue(ctx context.Context, key string) (*models.Ticket, error) {
	issue, resp, err := c.client.Issue.GetWithContext(ctx, key, &jira.GetQueryOptions{
		Fields: strings.Join(c.searchFields(), ","),
	})
	if err != nil {
		return nil, fail("get", key, resp, err, false)
	}
	t := c.toTicket(issue)
	return &t, nil
}

// CreateIssue creates an issue and returns its key.
func (c *Client) CreateIssue(ctx context.Context, nt models.NewTicket) (string, error) {
	fields := map[string]any{
		"project":     map[string]any{"key": nt.Project},
		"summary":     nt.Summary,
		"description": nt.Description,
		"issuetype":   map[string]any{"name": nt.Type.JiraName()},
	}
	if nt.Priority != "" {
		fields["priority"] = map[string]any{"name": nt.Priority}
	}
	if nt.AffectsVersion != "" {
		fields["versions"] = []map[string]any{{"name": nt.AffectsVersion}}
	}
	if nt.Component != "" {
		fields["components"] = []map[string]any{{"name": nt.Component}}
	}
	if nt.Epic != "" {
		fields[c.fields.Epic] = nt.Epic
	}
	if nt.EpicName != "" {
		fields[c.fields.EpicName] = nt.EpicName
	}
	if nt.StoryPoints != nil {
		fields[c.fields.StoryPoints] = *nt.StoryPoints
	}

	req, err := c.client.NewRequestWithContext(ctx, http.MethodPost, "rest/api/2/issue", map[string]any{"fields": fields})
	if err != nil {
		return "", fail("create", "", nil, err, false)
	}

	var created struct {
		ID  string `json:"id"`
		Key string `json:"key"`
	}
	resp, err := c.client.Do(req, &created)
	if err != nil {
		return "", fail("create", "", resp, err, true)
	}
	if created.Key == "" {
		return "", &RequestError{Op: "create", Err: errors.New("response carried no issue key")}
	}

	logging.Info("created issue", "key", created.Key, "type", nt.Type)
	return created.Key, nil
}

// Search runs a JQL query.
func (c *Client) Search(ctx context.Context, jql string, max int) ([]models.Ticket, error) {
	issues, resp, err := c.client.Issue.SearchWithContext(ctx, jql, &jira.SearchOptions{
		MaxResults: max,
		Fields:     c.searchFields(),
	})
	if err != nil {
		return nil, fail("search", "", resp, err, false)
	}

	tickets := make([]models.Ticket, 0, len(issues))
	for i := range issues {
		tickets = append(tickets, c.toTicket(&issues[i]))
	}
	logging.Debug("search finished", "jql", jql, "count", len(tickets))
	return tickets, nil
}

// AddLink links two issues. For a "Blocks" link the outward issue blocks the
// inward one.
func (c *Client) AddLink(ctx context.Context, linkType, inward, outward string) error {
	// jira.IssueLinkType would also send empty inward and outward names.
	req, err := c.client.NewRequestWithContext(ctx, http.MethodPost, "rest/api/2/issueLink", map[string]any{
		"type":         map[string]string{"name": linkType},
		"inwardIssue":  map[string]string{"key": inward},
		"outwardIssue": map[string]string{"key": outward},
	})
	if err != nil {
		return fail("link", outward, nil, err, false)
	}
	resp, err := c.client.Do(req, nil)
	if err != nil {
		return fail("link", outward, resp, err, true)
	}
	closeBody(resp)
	return nil
}

// Transition moves an issue to status. The status is matched
// case-insensitively against transition names and target statuses.
func (c *Client) Transition(ctx context.Context, key, status string) error {
	transitions, resp, err := c.client.Issue.GetTransitionsWithContext(ctx, key)
	if err != nil {
		return fail("list transitions", key, resp, err, false)
	}

	var names []string
	for _, t := range transitions {
		if strings.EqualFold(t.Name, status) || strings.EqualFold(t.To.Name, status) {
			resp, err := c.client.Issue.DoTransitionWithContext(ctx, key, t.ID)
			if err != nil {
				return fail("transition", key, resp, err, false)
			}
			return nil
		}
		names = append(names, t.Name)
	}

	return &RequestError{
		Op:  "transition",
		Key: key,
		Err: fmt.Errorf("no transition to %q (available: %s)", status, strings.Join(names, ", ")),
	}
}

// AddComment adds a comment to an issue.
func (c *Client) AddComment(ctx context.Context, key, body string) error {
	_, resp, err := c.client.Issue.AddCommentWithContext(ctx, key, &jira.Comment{Body: body})
	if err != nil {
		return fail("comment", key, resp, err, false)
	}
	return nil
}

// Assign sets the assignee by user name. An empty user unassigns.
func (c *Client) Assign(ctx context.Context, key, user string) error {
	if user == "" {
		return c.SetField(ctx, key, models.FieldAssignee, "")
	}
	resp, err := c.client.Issue.UpdateAssigneeWithContext(ctx, key, &jira.User{Name: user})
	if err != nil {
		return fail("assign", key, resp, err, false)
	}
	return nil
}

// AddToSprint moves an issue into a sprint.
func (c *Client) AddToSprint(ctx context.Context, key string, sprintID int) error {
	resp, err := c.client.Sprint.MoveIssuesToSprintWithContext(ctx, sprintID, []string{key})
	if err != nil {
		return fail("add to sprint", key, resp, err, false)
	}
	return nil
}

// RemoveFromSprint moves an issue back to the backlog.
func (c *Client) RemoveFromSprint(ctx context.Context, key string) error {
	req, err := c.client.NewRequestWithContext(ctx, http.MethodPost, "rest/agile/1.0/backlog/issue",
		map[string]any{"issues": []string{key}})
	if err != nil {
		return fail("remove from sprint", key, nil, err, false)
	}
	resp, err := c.client.Do(req, nil)
	if err != nil {
		return fail("remove from sprint", key, resp, err, true)
	}
	closeBody(resp)
	return nil
}

// SetFlag adds or removes the board flag ("impediment") of an issue.
func (c *Client) SetFlag(ctx context.Context, key string, flagged bool) error {
	op := "flag"
	if !flagged {
		op = "unflag"
	}
	req, err := c.client.NewRequestWithContext(ctx, http.MethodPost, "rest/greenhopper/1.0/xboard/issue/flag/flag.json",
		map[string]any{"issueKeys": []string{key}, "flag": flagged})
	if err != nil {
		return fail(op, key, nil, err, false)
	}
	resp, err := c.client.Do(req, nil)
	if err != nil {
		return fail(op, key, resp, err, true)
	}
	closeBody(resp)
	return nil
}

// VoteStoryPoints casts a planning poker vote. The vote endpoint wants the
// numeric issue id, so the issue is fetched first.
func (c *Client) VoteStoryPoints(ctx context.Context, key string, points int) error {
	issue, resp, err := c.client.Issue.GetWithContext(ctx, key, &jira.GetQueryOptions{Fields: "summary"})
	if err != nil {
		return fail("vote", key, resp, err, false)
	}
	if issue.ID == "" {
		return &RequestError{Op: "vote", Key: key, Err: errors.New("response carried no issue id")}
	}

	req, err := c.client.NewRequestWithContext(ctx, http.MethodPut, "rest/eausm/latest/planningPoker/vote",
		map[string]any{"issueId": issue.ID, "vote": points})
	if err != nil {
		return fail("vote", key, nil, err, false)
	}
	resp, err = c.client.Do(req, nil)
	if err != nil {
		return fail("vote", key, resp, err, true)
	}
	closeBody(resp)
	return nil
}

// GetUser looks up an account by user name.
func (c *Client) GetUser(ctx context.Context, username string) (*models.User, error) {
	q := url.Values{"username": {username}}
	var u jira.User
	if err := c.getJSON(ctx, "user", username, "rest/api/2/user?"+q.Encode(), &u); err != nil {
		return nil, err
	}
	user := toUser(u)
	return &user, nil
}

// SearchUsers matches query against user names, display names and email
// addresses.
func (c *Client) SearchUsers(ctx context.Context, query string, max int) ([]models.User, error) {
	// UserService.Find sends the Cloud "query" parameter unescaped.
	q := url.Values{"username": {query}, "maxResults": {strconv.Itoa(max)}}
	var found []jira.User
	if err := c.getJSON(ctx, "search users", "", "rest/api/2/user/search?"+q.Encode(), &found); err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(found))
	for _, u := range found {
		users = append(users, toUser(u))
	}
	return users, nil
}

func (c *Client) getJSON(ctx context.Context, op, key, path string, v any) error {
	req, err := c.client.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return fail(op, key, nil, err, false)
	}
	resp, err := c.client.Do(req, v)
	if err != nil {
		return fail(op, key, resp, err, true)
	}
	return nil
}

func toUser(u jira.User) models.User {
	return models.User{
		Name:        u.Name,
		Key:         u.Key,
		DisplayName: u.DisplayName,
		Email:       u.EmailAddress,
		TimeZone:    u.TimeZone,
		Active:      u.Active,
	}
}

// ListSprints returns the sprints of a board, optionally filtered by state
// ("active", "future", "closed" or a comma separated list).
func (c *Client) ListSprints(ctx context.Context, boardID int, state string) ([]models.Sprint, error) {
	list, resp, err := c.client.Board.GetAllSprintsWithOptionsWithContext(ctx, boardID,
		&jira.GetAllSprintsOptions{State: state})
	if err != nil {
		return nil, fail("list sprints", strconv.Itoa(boardID), resp, err, false)
	}

	sprints := make([]models.Sprint, 0, len(list.Values))
	for _, s := range list.Values {
		sprints = append(sprints, models.Sprint{ID: s.ID, Name: s.Name, State: s.State})
	}
	return sprints, nil
}

func (c *Client) searchFields() []string {
	fields := []string{
		"summary", "description", "status", "issuetype", "priority",
		"assignee", "reporter", "components",
	}
	for _, id := range []string{
		c.fields.AcceptanceCriteria, c.fields.StoryPoints, c.fields.Sprint,
		c.fields.Epic, c.fields.Blocked, c.fields.BlockedReason,
	} {
		if id != "" {
			fields = append(fields, id)
		}
	}
	return fields
}

func (c *Client) toTicket(issue *jira.Issue) models.Ticket {
	t := models.Ticket{Key: issue.Key}
	f := issue.Fields
	if f == nil {
		return t
	}

	t.Summary = f.Summary
	t.Description = f.Description
	t.Type = f.Type.Name
	if f.Status != nil {
		t.Status = f.Status.Name
	}
	if f.Priority != nil {
		t.Priority = f.Priority.Name
	}
	if f.Assignee != nil {
		t.Assignee = displayName(f.Assignee)
	}
	if f.Reporter != nil {
		t.Reporter = displayName(f.Reporter)
	}
	for _, comp := range f.Components {
		if comp != nil {
			t.Components = append(t.Components, comp.Name)
		}
	}

	custom := f.Unknowns
	t.AcceptanceCriteria = stringField(custom[c.fields.AcceptanceCriteria])
	t.Epic = stringField(custom[c.fields.Epic])
	t.BlockedReason = stringField(custom[c.fields.BlockedReason])
	t.Blocked = blockedField(custom[c.fields.Blocked])
	t.Sprint = activeSprint(custom[c.fields.Sprint])
	if n, ok := custom[c.fields.StoryPoints].(float64); ok {
		t.StoryPoints = &n
	}
	return t
}

func displayName(u *jira.User) string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Name
}

func stringField(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		if s, ok := val["value"].(string); ok {
			return s
		}
	}
	return ""
}

// blockedField reads the blocked select field, which Jira returns as
// {"value": "True"}.
func blockedField(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return strings.EqualFold(val, "true")
	case map[string]any:
		return blockedField(val["value"])
	case []any:
		for _, item := range val {
			if blockedField(item) {
				return true
			}
		}
	}
	return false
}

var (
	sprintNamePattern  = regexp.MustCompile(`name\s*=\s*([^,\]]+)`)
	sprintStatePattern = regexp.MustCompile(`state\s*=\s*([A-Za-z]+)`)
)

// activeSprint returns the name of the active sprint in a sprint field
// value. Older servers encode each sprint as a string like
// "...Sprint@1a2b[id=7,state=ACTIVE,name=Sprint 7,...]", newer ones as
// objects.
func activeSprint(v any) string {
	list, ok := v.([]any)
	if !ok {
		return ""
	}
	for _, item := range list {
		var name, state string
		switch s := item.(type) {
		case string:
			if m := sprintNamePattern.FindStringSubmatch(s); m != nil {
				name = strings.TrimSpace(m[1])
			}
			if m := sprintStatePattern.FindStringSubmatch(s); m != nil {
				state = m[1]
			}
		case map[string]any:
			name, _ = s["name"].(string)
			state, _ = s["state"].(string)
		}
		if name != "" && strings.EqualFold(state, "active") {
			return name
		}
	}
	return ""
}
