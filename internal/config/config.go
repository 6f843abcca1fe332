// Package config provides centralized configuration management for the application.
//
// Values come from an optional config.yaml in the configuration directory,
// overridden by environment variables. LoadConfig is the only place in the program
// that reads the environment; everything else receives the resolved Config.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// AppName names the configuration directory.
	AppName = "rh-issue"

	// ConfigFileName is the optional settings file inside the configuration directory.
	ConfigFileName = "config.yaml"

	// CacheFileName is the default enhancement cache file name.
	CacheFileName = "ai-hashes.json"

	defaultHTTPTimeout = 30 * time.Second
	defaultAITimeout   = 120 * time.Second
)

// Config holds all configuration parameters for the application.
type Config struct {
	Jira   JiraConfig
	Fields FieldConfig
	AI     AIConfig
	GitHub GitHubConfig

	// ConfigDir holds config.yaml and, by default, the enhancement cache.
	ConfigDir string
	// ConfigFile is the settings file that was loaded, empty when none existed.
	ConfigFile string
	CacheFile  string

	LogLevel string
	LogFile  string

	// HTTPTimeout bounds every tracker and GitHub request.
	HTTPTimeout time.Duration
}

// JiraConfig holds JIRA specific configuration.
type JiraConfig struct {
	URL string
	// PAT is a personal access token sent as a bearer token. When empty,
	// Username and Token are used for basic auth.
	PAT      string
	Username string
	Token    string

	ProjectKey     string
	AffectsVersion string
	Component      string
	Priority       string
	EpicKey        string
	BoardID        int
	// WorkstreamID is the default for set-workstream.
	WorkstreamID string
}

// FieldConfig maps logical ticket fields to Jira custom field ids.
type FieldConfig struct {
	Epic               string
	EpicName           string
	Sprint             string
	StoryPoints        string
	AcceptanceCriteria string
	Blocked            string
	BlockedReason      string
	Workstream         string
}

// AIConfig selects and parameterizes the text generation provider.
type AIConfig struct {
	Provider string
	Model    string
	URL      string
	APIKey   string

	// Project is the Google Cloud project; ClaudeProject overrides it for
	// Anthropic models served through Vertex AI.
	Project       string
	ClaudeProject string
	Location      string

	GPT4AllBinary string
	PromptDir     string

	Timeout time.Duration
}

// GitHubConfig holds GitHub specific configuration.
type GitHubConfig struct {
	Token  string
	Domain string
}

// binding ties a viper key to its environment variable and default.
type binding struct {
	key string
	env string
	def any
}

var bindings = []binding{
	{"jira.url", "JIRA_URL", ""},
	{"jira.pat", "JIRA_JPAT", ""},
	{"jira.username", "JIRA_USERNAME", ""},
	{"jira.token", "JIRA_TOKEN", ""},
	{"jira.project_key", "JIRA_PROJECT_KEY", ""},
	{"jira.affects_version", "JIRA_AFFECTS_VERSION", ""},
	{"jira.component", "JIRA_COMPONENT_NAME", ""},
	{"jira.priority", "JIRA_PRIORITY", "Normal"},
	{"jira.epic_key", "JIRA_EPIC_KEY", ""},
	{"jira.board_id", "JIRA_BOARD_ID", 0},
	{"jira.workstream_id", "JIRA_WORKSTREAM_ID", ""},

	{"fields.epic", "JIRA_EPIC_FIELD", "customfield_12311140"},
	{"fields.epic_name", "JIRA_EPIC_NAME_FIELD", "customfield_12311141"},
	{"fields.sprint", "JIRA_SPRINT_FIELD", "customfield_12310940"},
	{"fields.story_points", "JIRA_STORY_POINTS_FIELD", "customfield_12310243"},
	{"fields.acceptance_criteria", "JIRA_ACCEPTANCE_CRITERIA_FIELD", "customfield_12316440"},
	{"fields.blocked", "JIRA_BLOCKED_FIELD", "customfield_12316543"},
	{"fields.blocked_reason", "JIRA_BLOCKED_REASON_FIELD", "customfield_12316544"},
	{"fields.workstream", "JIRA_WORKSTREAM_FIELD", "customfield_12319275"},

	{"ai.provider", "JIRA_AI_PROVIDER", "noop"},
	{"ai.model", "JIRA_AI_MODEL", ""},
	{"ai.url", "JIRA_AI_URL", ""},
	{"ai.api_key", "JIRA_AI_API_KEY", ""},
	{"ai.project", "GOOGLE_CLOUD_PROJECT", ""},
	{"ai.claude_project", "ANTHROPIC_VERTEX_PROJECT_ID", ""},
	{"ai.location", "GOOGLE_CLOUD_LOCATION", "us-central1"},
	{"ai.gpt4all_binary", "JIRA_AI_GPT4ALL_BINARY", "gpt4all"},
	{"ai.prompt_dir", "JIRA_AI_PROMPT_DIR", ""},
	{"ai.timeout", "JIRA_AI_TIMEOUT", ""},

	{"github.token", "GITHUB_TOKEN", ""},
	{"github.domain", "GITHUB_DOMAIN", "github.com"},

	{"cache_file", "JIRA_CACHE_FILE", ""},
	{"log_level", "JIRA_LOG_LEVEL", "warn"},
	{"log_file", "JIRA_LOG_FILE", ""},
	{"http_timeout", "JIRA_HTTP_TIMEOUT", ""},
}

// LoadConfig resolves the configuration from the environment and the
// optional config.yaml.
func LoadConfig() (*Config, error) {
	// Initialize Viper for environment variables
	v := viper.New()

	// Map specific environment variables
	for _, b := range bindings {
		if err := v.BindEnv(b.key, b.env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", b.env, err)
		}
		v.SetDefault(b.key, b.def)
	}
	if err := v.BindEnv("config_dir", "JIRA_CONFIG_DIR"); err != nil {
		return nil, fmt.Errorf("failed to bind JIRA_CONFIG_DIR: %w", err)
	}

	configDir := v.GetString("config_dir")
	if configDir == "" {
		var err error
		configDir, err = defaultConfigDir()
		if err != nil {
			return nil, err
		}
	}

	configFile := filepath.Join(configDir, ConfigFileName)
	if _, err := os.Stat(configFile); err == nil {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, &Error{Reason: "invalid " + configFile, Err: err}
		}
	} else {
		configFile = ""
	}

	httpTimeout, err := parseTimeout(v.GetString("http_timeout"), defaultHTTPTimeout)
	if err != nil {
		return nil, &Error{Reason: "invalid JIRA_HTTP_TIMEOUT", Err: err}
	}
	aiTimeout, err := parseTimeout(v.GetString("ai.timeout"), defaultAITimeout)
	if err != nil {
		return nil, &Error{Reason: "invalid JIRA_AI_TIMEOUT", Err: err}
	}

	cacheFile := v.GetString("cache_file")
	if cacheFile == "" {
		cacheFile = filepath.Join(configDir, CacheFileName)
	}

	// Create config structure
	config := &Config{
		Jira: JiraConfig{
			URL:            strings.TrimRight(v.GetString("jira.url"), "/"),
			PAT:            v.GetString("jira.pat"),
			Username:       v.GetString("jira.username"),
			Token:          v.GetString("jira.token"),
			ProjectKey:     v.GetString("jira.project_key"),
			AffectsVersion: v.GetString("jira.affects_version"),
			Component:      v.GetString("jira.component"),
			Priority:       v.GetString("jira.priority"),
			EpicKey:        v.GetString("jira.epic_key"),
			BoardID:        v.GetInt("jira.board_id"),
			WorkstreamID:   v.GetString("jira.workstream_id"),
		},
		Fields: FieldConfig{
			Epic:               v.GetString("fields.epic"),
			EpicName:           v.GetString("fields.epic_name"),
			Sprint:             v.GetString("fields.sprint"),
			StoryPoints:        v.GetString("fields.story_points"),
			AcceptanceCriteria: v.GetString("fields.acceptance_criteria"),
			Blocked:            v.GetString("fields.blocked"),
			BlockedReason:      v.GetString("fields.blocked_reason"),
			Workstream:         v.GetString("fields.workstream"),
		},
		AI: AIConfig{
			Provider:      v.GetString("ai.provider"),
			Model:         v.GetString("ai.model"),
			URL:           v.GetString("ai.url"),
			APIKey:        v.GetString("ai.api_key"),
			Project:       v.GetString("ai.project"),
			ClaudeProject: v.GetString("ai.claude_project"),
			Location:      v.GetString("ai.location"),
			GPT4AllBinary: v.GetString("ai.gpt4all_binary"),
			PromptDir:     v.GetString("ai.prompt_dir"),
			Timeout:       aiTimeout,
		},
		GitHub: GitHubConfig{
			Token:  v.GetString("github.token"),
			Domain: v.GetString("github.domain"),
		},
		ConfigDir:   configDir,
		ConfigFile:  configFile,
		CacheFile:   cacheFile,
		LogLevel:    v.GetString("log_level"),
		LogFile:     v.GetString("log_file"),
		HTTPTimeout: httpTimeout,
	}

	return config, nil
}

func defaultConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return "", fmt.Errorf("failed to locate configuration directory: %w", errors.Join(err, herr))
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, AppName), nil
}

// parseTimeout accepts either a Go duration ("45s") or a bare number of seconds.
func parseTimeout(value string, def time.Duration) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return def, nil
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("timeout must be positive, got %d", secs)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %s", d)
	}
	return d, nil
}

// ValidateJiraConfig validates JIRA-specific configuration.
func ValidateJiraConfig(config *Config) error {
	var missingVars []string

	// JIRA validation
	if config.Jira.URL == "" {
		missingVars = append(missingVars, "JIRA_URL")
	}
	if config.Jira.PAT == "" {
		if config.Jira.Username == "" {
			missingVars = append(missingVars, "JIRA_JPAT or JIRA_USERNAME")
		}
		if config.Jira.Token == "" {
			missingVars = append(missingVars, "JIRA_JPAT or JIRA_TOKEN")
		}
	}

	if len(missingVars) > 0 {
		return &Error{Reason: fmt.Sprintf("missing required environment variables: %v", missingVars)}
	}

	return nil
}

// ValidateGitHubConfig validates GitHub-specific configuration.
func ValidateGitHubConfig(config *Config) error {
	if config.GitHub.Token == "" {
		return &Error{Reason: "missing required environment variables: [GITHUB_TOKEN]"}
	}
	return nil
}
