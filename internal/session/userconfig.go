package session

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// UserConfigFileName is the TOML config file for user preferences.
const UserConfigFileName = "config.toml"

// UserConfig is the user-facing configuration, read from
// ~/.config/ccs/config.toml. Every field is optional; zero values fall
// back to the defaults below.
type UserConfig struct {
	// Claude defines how the external agent CLI is invoked.
	Claude ClaudeSettings `toml:"claude"`

	// Selector defines the external fuzzy-selection front end.
	Selector SelectorSettings `toml:"selector"`

	// DataDir overrides where overlays, cache and logs live
	// (default: ~/.config/ccs).
	DataDir string `toml:"data_dir"`

	// Logs defines structured-log settings.
	Logs LogSettings `toml:"logs"`
}

// ClaudeSettings defines Claude Code integration settings.
type ClaudeSettings struct {
	// Command is the claude binary or alias to launch (default: "claude").
	Command string `toml:"command"`

	// ConfigDir overrides the Claude config directory holding the
	// projects/ log tree. CLAUDE_CONFIG_DIR takes priority over this.
	ConfigDir string `toml:"config_dir"`
}

// SelectorSettings defines the external fuzzy selector.
type SelectorSettings struct {
	// Command is the selector binary (default: "fzf").
	Command string `toml:"command"`

	// Args are extra arguments appended to the selector invocation.
	Args []string `toml:"args"`
}

// LogSettings defines structured-log behavior.
type LogSettings struct {
	// Level is "debug", "info", "warn" or "error" (default: "info").
	Level string `toml:"level"`

	// Enabled turns file logging on (default: true).
	// Set to false to discard all logs.
	Enabled *bool `toml:"enabled"`
}

// LoadUserConfig reads the config file from dir (the data dir). A missing
// or unparseable file yields the zero config: configuration is a
// convenience, never a prerequisite.
func LoadUserConfig(dir string) *UserConfig {
	cfg := &UserConfig{}
	path := filepath.Join(dir, UserConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return &UserConfig{}
	}
	return cfg
}

// ClaudeCommand returns the configured claude command, or "claude".
func (c *UserConfig) ClaudeCommand() string {
	if c.Claude.Command != "" {
		return c.Claude.Command
	}
	return "claude"
}

// SelectorCommand returns the configured selector command, or "fzf".
func (c *UserConfig) SelectorCommand() string {
	if c.Selector.Command != "" {
		return c.Selector.Command
	}
	return "fzf"
}

// LogsEnabled reports whether file logging is on.
func (c *UserConfig) LogsEnabled() bool {
	return c.Logs.Enabled == nil || *c.Logs.Enabled
}

// DefaultDataDir is where ccs keeps its overlays, cache and logs.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ccs"
	}
	return filepath.Join(home, ".config", "ccs")
}

// ProjectsDir resolves the Claude log root.
// Priority: CLAUDE_CONFIG_DIR env var, then [claude].config_dir, then
// ~/.claude — each with "projects" appended.
func (c *UserConfig) ProjectsDir() string {
	if env := os.Getenv("CLAUDE_CONFIG_DIR"); env != "" {
		return filepath.Join(expandTilde(env), "projects")
	}
	if c.Claude.ConfigDir != "" {
		return filepath.Join(expandTilde(c.Claude.ConfigDir), "projects")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude", "projects")
}

// expandTilde replaces a leading ~ with the home directory.
func expandTilde(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return path
}
