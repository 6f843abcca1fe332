package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"

	"github.com/danielolaszy/rh-issue/internal/logging"
)

// Settings is the on-disk form of config.yaml. Credentials are never part of
// it; they only come from the environment.
type Settings struct {
	Jira        JiraSettings   `yaml:"jira"`
	Fields      FieldSettings  `yaml:"fields"`
	AI          AISettings     `yaml:"ai"`
	GitHub      GitHubSettings `yaml:"github"`
	CacheFile   string         `yaml:"cache_file,omitempty"`
	LogLevel    string         `yaml:"log_level,omitempty"`
	LogFile     string         `yaml:"log_file,omitempty"`
	HTTPTimeout string         `yaml:"http_timeout,omitempty"`
}

type JiraSettings struct {
	URL            string `yaml:"url,omitempty"`
	ProjectKey     string `yaml:"project_key,omitempty"`
	AffectsVersion string `yaml:"affects_version,omitempty"`
	Component      string `yaml:"component,omitempty"`
	Priority       string `yaml:"priority,omitempty"`
	EpicKey        string `yaml:"epic_key,omitempty"`
	BoardID        int    `yaml:"board_id,omitempty"`
	WorkstreamID   string `yaml:"workstream_id,omitempty"`
}

type FieldSettings struct {
	Epic               string `yaml:"epic,omitempty"`
	EpicName           string `yaml:"epic_name,omitempty"`
	Sprint             string `yaml:"sprint,omitempty"`
	StoryPoints        string `yaml:"story_points,omitempty"`
	AcceptanceCriteria string `yaml:"acceptance_criteria,omitempty"`
	Blocked            string `yaml:"blocked,omitempty"`
	BlockedReason      string `yaml:"blocked_reason,omitempty"`
	Workstream         string `yaml:"workstream,omitempty"`
}

type AISettings struct {
	Provider      string `yaml:"provider,omitempty"`
	Model         string `yaml:"model,omitempty"`
	URL           string `yaml:"url,omitempty"`
	Project       string `yaml:"project,omitempty"`
	ClaudeProject string `yaml:"claude_project,omitempty"`
	Location      string `yaml:"location,omitempty"`
	GPT4AllBinary string `yaml:"gpt4all_binary,omitempty"`
	PromptDir     string `yaml:"prompt_dir,omitempty"`
	Timeout       string `yaml:"timeout,omitempty"`
}

type GitHubSettings struct {
	Domain string `yaml:"domain,omitempty"`
}

// Settings returns the secret-free view of c.
func (c *Config) Settings() Settings {
	return Settings{
		Jira: JiraSettings{
			URL:            c.Jira.URL,
			ProjectKey:     c.Jira.ProjectKey,
			AffectsVersion: c.Jira.AffectsVersion,
			Component:      c.Jira.Component,
			Priority:       c.Jira.Priority,
			EpicKey:        c.Jira.EpicKey,
			BoardID:        c.Jira.BoardID,
			WorkstreamID:   c.Jira.WorkstreamID,
		},
		Fields: FieldSettings{
			Epic:               c.Fields.Epic,
			EpicName:           c.Fields.EpicName,
			Sprint:             c.Fields.Sprint,
			StoryPoints:        c.Fields.StoryPoints,
			AcceptanceCriteria: c.Fields.AcceptanceCriteria,
			Blocked:            c.Fields.Blocked,
			BlockedReason:      c.Fields.BlockedReason,
			Workstream:         c.Fields.Workstream,
		},
		AI: AISettings{
			Provider:      c.AI.Provider,
			Model:         c.AI.Model,
			URL:           c.AI.URL,
			Project:       c.AI.Project,
			ClaudeProject: c.AI.ClaudeProject,
			Location:      c.AI.Location,
			GPT4AllBinary: c.AI.GPT4AllBinary,
			PromptDir:     c.AI.PromptDir,
			Timeout:       c.AI.Timeout.String(),
		},
		GitHub: GitHubSettings{
			Domain: c.GitHub.Domain,
		},
		CacheFile:   c.CacheFile,
		LogLevel:    c.LogLevel,
		LogFile:     c.LogFile,
		HTTPTimeout: c.HTTPTimeout.String(),
	}
}

// Secrets returns the credential settings with their values masked, keyed by
// environment variable.
func (c *Config) Secrets() map[string]string {
	return map[string]string{
		"JIRA_JPAT":       logging.MaskSensitive(c.Jira.PAT),
		"JIRA_USERNAME":   logging.MaskSensitive(c.Jira.Username),
		"JIRA_TOKEN":      logging.MaskSensitive(c.Jira.Token),
		"JIRA_AI_API_KEY": logging.MaskSensitive(c.AI.APIKey),
		"GITHUB_TOKEN":    logging.MaskSensitive(c.GitHub.Token),
	}
}

// Marshal renders s as YAML.
func (s Settings) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode settings: %w", err)
	}
	return buf.Bytes(), nil
}

// ErrSettingsExist is returned by WriteSettings when the file already exists
// and overwriting was not requested.
var ErrSettingsExist = errors.New("settings file already exists")

// WriteSettings atomically writes s to path, creating the directory if needed.
func WriteSettings(path string, s Settings, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s: %w", path, ErrSettingsExist)
		}
	}

	data, err := s.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create configuration directory: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}
