// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v41/github"
	"golang.org/x/oauth2"

	"github.com/danielolaszy/rh-issue/internal/config"
	"github.com/danielolaszy/rh-issue/internal/logging"
	"github.com/danielolaszy/rh-issue/pkg/models"
)

// Client encapsulates the GitHub API client.
type Client struct {
	client *github.Client
}

// apiURL returns the REST endpoint for a GitHub domain. github.com uses
// api.github.com; any other host is treated as GitHub Enterprise. A value
// with a scheme is used as the endpoint itself.
func apiURL(domain string) string {
	switch {
	case domain == "" || domain == "github.com":
		return "https://api.github.com/"
	case strings.HasPrefix(domain, "http://") || strings.HasPrefix(domain, "https://"):
		return strings.TrimRight(domain, "/") + "/"
	}
	return fmt.Sprintf("https://%s/api/v3/", domain)
}

// NewClient creates a GitHub API client authenticated with cfg.Token.
func NewClient(cfg config.GitHubConfig, timeout time.Duration) (*Client, error) {
	if cfg.Token == "" {
		return nil, config.Errorf("GITHUB_TOKEN is not set")
	}

	endpoint := apiURL(cfg.Domain)
	logging.Debug("github configuration",
		"domain", cfg.Domain,
		"api_url", endpoint,
		"token", logging.MaskSensitive(cfg.Token))

	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}),
			Base:   http.DefaultTransport,
		},
		Timeout: timeout,
	}

	client := github.NewClient(httpClient)
	if endpoint != "https://api.github.com/" {
		parsed, err := url.Parse(endpoint)
		if err != nil {
			return nil, &config.Error{Reason: "invalid GITHUB_DOMAIN", Err: err}
		}
		client.BaseURL = parsed
		client.UploadURL = parsed
	}

	return &Client{client: client}, nil
}

// parseRepository splits "owner/repo".
func parseRepository(repository string) (string, string, error) {
	parts := strings.Split(repository, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository format: %s, expected format: owner/repo", repository)
	}
	return parts[0], parts[1], nil
}

// GetIssue fetches one issue.
func (c *Client) GetIssue(ctx context.Context, repository string, number int) (*models.GitHubIssue, error) {
	owner, repo, err := parseRepository(repository)
	if err != nil {
		return nil, err
	}

	issue, _, err := c.client.Issues.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch GitHub issue %s#%d: %w", repository, number, err)
	}
	if issue.IsPullRequest() {
		return nil, fmt.Errorf("%s#%d is a pull request", repository, number)
	}

	converted := toModel(repository, issue)
	return &converted, nil
}

// ListIssues retrieves the issues of a repository in state ("open", "closed"
// or "all") carrying every one of labels. Pull requests are skipped.
func (c *Client) ListIssues(ctx context.Context, repository, state string, labels []string) ([]models.GitHubIssue, error) {
	owner, repo, err := parseRepository(repository)
	if err != nil {
		return nil, err
	}
	if state == "" {
		state = "open"
	}

	opts := &github.IssueListByRepoOptions{
		State:  state,
		Labels: labels,
		ListOptions: github.ListOptions{
			PerPage: 100,
		},
	}

	var result []models.GitHubIssue
	for {
		issues, resp, err := c.client.Issues.ListByRepo(ctx, owner, repo, opts)
		if err != nil {
			logging.Error("failed to fetch github issues", "repository", repository, "error", err)
			return nil, fmt.Errorf("failed to fetch GitHub issues: %w", err)
		}

		for _, issue := range issues {
			// Pull requests come back from the issues API too.
			if issue.IsPullRequest() {
				continue
			}
			result = append(result, toModel(repository, issue))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	logging.Debug("fetched github issues", "repository", repository, "state", state, "count", len(result))
	return result, nil
}

// AddLabels adds labels to an issue. GitHub creates labels that don't exist
// in the repository.
func (c *Client) AddLabels(ctx context.Context, repository string, number int, labels ...string) error {
	owner, repo, err := parseRepository(repository)
	if err != nil {
		return err
	}

	if _, _, err := c.client.Issues.AddLabelsToIssue(ctx, owner, repo, number, labels); err != nil {
		logging.Error("error adding labels to issue", "repository", repository, "issue_number", number, "error", err)
		return fmt.Errorf("failed to add labels to issue %s#%d: %w", repository, number, err)
	}
	return nil
}

func toModel(repository string, issue *github.Issue) models.GitHubIssue {
	labels := make([]string, 0, len(issue.Labels))
	for _, label := range issue.Labels {
		labels = append(labels, label.GetName())
	}

	converted := models.GitHubIssue{
		Number:      issue.GetNumber(),
		Repository:  repository,
		Title:       issue.GetTitle(),
		Description: issue.GetBody(),
		URL:         issue.GetHTMLURL(),
		State:       issue.GetState(),
		CreatedAt:   issue.GetCreatedAt(),
		UpdatedAt:   issue.GetUpdatedAt(),
		Labels:      labels,
	}
	if issue.ClosedAt != nil {
		closed := *issue.ClosedAt
		converted.ClosedAt = &closed
	}
	return converted
}
