package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadUserConfigMissing(t *testing.T) {
	cfg := LoadUserConfig(t.TempDir())
	if cfg.ClaudeCommand() != "claude" {
		t.Errorf("ClaudeCommand() = %q", cfg.ClaudeCommand())
	}
	if cfg.SelectorCommand() != "fzf" {
		t.Errorf("SelectorCommand() = %q", cfg.SelectorCommand())
	}
	if !cfg.LogsEnabled() {
		t.Error("logs should default to enabled")
	}
}

func TestLoadUserConfig(t *testing.T) {
	dir := t.TempDir()
	content := `
data_dir = "/custom/data"

[claude]
command = "claude-dev"
config_dir = "/custom/claude"

[selector]
command = "sk"
args = ["--height", "50%"]

[logs]
level = "debug"
enabled = false
`
	if err := os.WriteFile(filepath.Join(dir, UserConfigFileName), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg := LoadUserConfig(dir)
	if cfg.ClaudeCommand() != "claude-dev" {
		t.Errorf("ClaudeCommand() = %q", cfg.ClaudeCommand())
	}
	if cfg.SelectorCommand() != "sk" {
		t.Errorf("SelectorCommand() = %q", cfg.SelectorCommand())
	}
	if len(cfg.Selector.Args) != 2 || cfg.Selector.Args[0] != "--height" {
		t.Errorf("Selector.Args = %v", cfg.Selector.Args)
	}
	if cfg.DataDir != "/custom/data" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.Logs.Level != "debug" {
		t.Errorf("Logs.Level = %q", cfg.Logs.Level)
	}
	if cfg.LogsEnabled() {
		t.Error("logs should be disabled")
	}
}

func TestLoadUserConfigUnparseable(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, UserConfigFileName), []byte("[[[ not toml"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg := LoadUserConfig(dir)
	if cfg.ClaudeCommand() != "claude" {
		t.Errorf("broken config should fall back to defaults, got %q", cfg.ClaudeCommand())
	}
}

func TestProjectsDirPriority(t *testing.T) {
	cfg := &UserConfig{}
	cfg.Claude.ConfigDir = "/from/config"

	t.Setenv("CLAUDE_CONFIG_DIR", "/from/env")
	if got := cfg.ProjectsDir(); got != filepath.Join("/from/env", "projects") {
		t.Errorf("env should win: %q", got)
	}

	t.Setenv("CLAUDE_CONFIG_DIR", "")
	if got := cfg.ProjectsDir(); got != filepath.Join("/from/config", "projects") {
		t.Errorf("config_dir should win without env: %q", got)
	}

	cfg.Claude.ConfigDir = ""
	home, _ := os.UserHomeDir()
	if got := cfg.ProjectsDir(); got != filepath.Join(home, ".claude", "projects") {
		t.Errorf("default should be ~/.claude/projects: %q", got)
	}
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	if got := expandTilde("~/x"); got != filepath.Join(home, "x") {
		t.Errorf("expandTilde(~/x) = %q", got)
	}
	if got := expandTilde("/abs/path"); got != "/abs/path" {
		t.Errorf("absolute path must pass through: %q", got)
	}
}
