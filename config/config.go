package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/spiffcs/vigil/internal/constants"
	"github.com/spiffcs/vigil/internal/credential"
	"github.com/spiffcs/vigil/internal/log"
	"github.com/spiffcs/vigil/internal/model"
)

// Config represents the application configuration
type Config struct {
	// Repos lists watched repositories as "owner/name" strings.
	Repos []string `yaml:"repos,omitempty"`

	// PollIntervalMinutes is the watch schedule period. Non-positive
	// values fall back to the default.
	PollIntervalMinutes int `yaml:"poll_interval_minutes,omitempty"`

	DefaultFormat string `yaml:"default_format,omitempty"`

	// ListenAddr enables the local HTTP API when non-empty,
	// e.g. "127.0.0.1:7117".
	ListenAddr string `yaml:"listen_addr,omitempty"`

	// Top-level config sections
	Notify *NotifyOverrides `yaml:"notify,omitempty"`
}

// NotifyOverrides allows toggling individual notification kinds.
// Unset values keep the default (enabled).
type NotifyOverrides struct {
	NewItems       *bool `yaml:"new_items,omitempty"`
	Mentions       *bool `yaml:"mentions,omitempty"`
	MentionThreads *bool `yaml:"mention_threads,omitempty"`
	Assigned       *bool `yaml:"assigned,omitempty"`
}

// NotifyFlags is the resolved set of per-kind enable switches.
type NotifyFlags struct {
	NewItems       bool
	Mentions       bool
	MentionThreads bool
	Assigned       bool
}

// DefaultNotifyFlags returns the default switches (everything enabled).
func DefaultNotifyFlags() NotifyFlags {
	return NotifyFlags{
		NewItems:       true,
		Mentions:       true,
		MentionThreads: true,
		Assigned:       true,
	}
}

// Enabled reports whether the given notification kind is switched on.
func (f NotifyFlags) Enabled(kind model.Kind) bool {
	switch kind {
	case model.KindNew:
		return f.NewItems
	case model.KindMention:
		return f.Mentions
	case model.KindThread:
		return f.MentionThreads
	case model.KindAssignee:
		return f.Assigned
	default:
		return false
	}
}

// GetNotifyFlags returns notify switches with user overrides merged with defaults
func (c *Config) GetNotifyFlags() NotifyFlags {
	flags := DefaultNotifyFlags()

	if c.Notify != nil {
		n := c.Notify
		if n.NewItems != nil {
			flags.NewItems = *n.NewItems
		}
		if n.Mentions != nil {
			flags.Mentions = *n.Mentions
		}
		if n.MentionThreads != nil {
			flags.MentionThreads = *n.MentionThreads
		}
		if n.Assigned != nil {
			flags.Assigned = *n.Assigned
		}
	}

	return flags
}

// GetPollInterval returns the schedule period, defaulting when the config
// does not set a positive minute count.
func (c *Config) GetPollInterval() time.Duration {
	if c.PollIntervalMinutes <= 0 {
		return constants.DefaultPollInterval
	}
	return time.Duration(c.PollIntervalMinutes) * time.Minute
}

// RepoRefs parses the configured repo strings. Values are taken literally;
// no validation beyond the owner/name split.
func (c *Config) RepoRefs() []model.RepoRef {
	refs := make([]model.RepoRef, 0, len(c.Repos))
	for _, r := range c.Repos {
		refs = append(refs, model.ParseRepo(r))
	}
	return refs
}

// DefaultConfigDir returns the default config directory
func DefaultConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "." + constants.AppName
	}
	return filepath.Join(configDir, constants.AppName)
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LocalConfigPath returns the path to the local config file in the current directory
func LocalConfigPath() string {
	return "." + constants.AppName + ".yaml"
}

// ConfigFileExists returns true if the config file exists on disk
func ConfigFileExists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// Load loads the configuration from disk.
// It first loads the global config from XDG config directory, then merges
// any local .vigil.yaml config on top (local values take precedence).
func Load() (*Config, error) {
	// Start with defaults
	cfg := &Config{
		DefaultFormat: "table",
	}

	// Load global config if it exists
	globalPath := ConfigPath()
	if _, err := os.Stat(globalPath); err == nil {
		data, err := os.ReadFile(globalPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read global config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse global config file: %w", err)
		}
	}

	// Load local config if it exists and merge on top
	localPath := LocalConfigPath()
	if _, err := os.Stat(localPath); err == nil {
		data, err := os.ReadFile(localPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read local config file: %w", err)
		}

		var localCfg Config
		if err := yaml.Unmarshal(data, &localCfg); err != nil {
			return nil, fmt.Errorf("failed to parse local config file: %w", err)
		}

		cfg = mergeConfig(cfg, &localCfg)
	}

	// Set defaults if still empty
	if cfg.DefaultFormat == "" {
		cfg.DefaultFormat = "table"
	}

	return cfg, nil
}

// mergeConfig merges local config on top of global config.
// Local values take precedence; unset local values preserve global values.
func mergeConfig(global, local *Config) *Config {
	result := &Config{}

	// Merge simple fields (local wins if set)
	if local.DefaultFormat != "" {
		result.DefaultFormat = local.DefaultFormat
	} else {
		result.DefaultFormat = global.DefaultFormat
	}

	if local.PollIntervalMinutes > 0 {
		result.PollIntervalMinutes = local.PollIntervalMinutes
	} else {
		result.PollIntervalMinutes = global.PollIntervalMinutes
	}

	if local.ListenAddr != "" {
		result.ListenAddr = local.ListenAddr
	} else {
		result.ListenAddr = global.ListenAddr
	}

	// Merge arrays (local replaces if non-empty)
	if len(local.Repos) > 0 {
		result.Repos = local.Repos
	} else {
		result.Repos = global.Repos
	}

	// Merge Notify
	result.Notify = mergeNotify(global.Notify, local.Notify)

	return result
}

func mergeNotify(global, local *NotifyOverrides) *NotifyOverrides {
	if global == nil && local == nil {
		return nil
	}
	result := &NotifyOverrides{}

	if global != nil {
		result.NewItems = global.NewItems
		result.Mentions = global.Mentions
		result.MentionThreads = global.MentionThreads
		result.Assigned = global.Assigned
	}

	if local != nil {
		if local.NewItems != nil {
			result.NewItems = local.NewItems
		}
		if local.Mentions != nil {
			result.Mentions = local.Mentions
		}
		if local.MentionThreads != nil {
			result.MentionThreads = local.MentionThreads
		}
		if local.Assigned != nil {
			result.Assigned = local.Assigned
		}
	}

	// Return nil if all fields are nil
	if result.NewItems == nil && result.Mentions == nil &&
		result.MentionThreads == nil && result.Assigned == nil {
		return nil
	}

	return result
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	configDir := DefaultConfigDir()

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := ConfigPath()
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetGitHubToken returns the GitHub token. The GITHUB_TOKEN environment
// variable wins; otherwise the OS keyring entry written by `vigil auth
// set-token` is consulted. An empty result means no credential is
// configured, which the watch cycle treats as a silent no-op.
func (c *Config) GetGitHubToken() string {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token
	}
	token, err := credential.Get(credential.KeyGitHubToken)
	if err != nil {
		log.Debug("no keyring token", "error", err)
		return ""
	}
	return token
}

// ToYAML returns the config as a YAML string
func (c *Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// ConfigPathInfo contains information about config file paths
type ConfigPathInfo struct {
	GlobalPath   string
	GlobalExists bool
	LocalPath    string
	LocalExists  bool
}

// GetConfigPaths returns path info for both global and local configs
func GetConfigPaths() ConfigPathInfo {
	globalPath := ConfigPath()
	localPath := LocalConfigPath()

	// Get absolute path for local config
	absLocalPath, err := filepath.Abs(localPath)
	if err != nil {
		absLocalPath = localPath
	}

	_, globalErr := os.Stat(globalPath)
	_, localErr := os.Stat(localPath)

	return ConfigPathInfo{
		GlobalPath:   globalPath,
		GlobalExists: globalErr == nil,
		LocalPath:    absLocalPath,
		LocalExists:  localErr == nil,
	}
}

// MinimalConfig returns a minimal config template with comments
func MinimalConfig() string {
	return `# Vigil configuration file

# Repositories to watch
repos:
  - owner/repo

# Minutes between watch cycles
poll_interval_minutes: 5

# Output format: table, json or markdown
default_format: table

# Serve the local notification API while watching (optional)
# listen_addr: 127.0.0.1:7117

# Toggle notification kinds (all enabled by default)
# notify:
#   new_items: true
#   mentions: true
#   mention_threads: true
#   assigned: true

# The GitHub token comes from the GITHUB_TOKEN environment variable,
# or from the OS keyring via: vigil auth set-token
`
}

// SaveTo writes content to a specific path, creating directories as needed
func SaveTo(path string, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}
