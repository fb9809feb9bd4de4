package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ccs-tools/ccs/internal/launcher"
	"github.com/ccs-tools/ccs/internal/logging"
	"github.com/ccs-tools/ccs/internal/selector"
	"github.com/ccs-tools/ccs/internal/session"
)

const Version = "1.2.0"

var cliLog = logging.ForComponent(logging.CompCLI)

// app wires the components together for one dispatch. Paths are resolved
// once here and passed down; nothing below holds global path state.
type app struct {
	cfg         *session.UserConfig
	projectsDir string
	overlays    *session.Store
	cache       *session.Cache
	scanner     *session.Scanner
	reaper      *session.Reaper
	selector    *selector.Selector
	launcher    *launcher.Launcher
}

func newApp() *app {
	dataDir := session.DefaultDataDir()
	cfg := session.LoadUserConfig(dataDir)
	if cfg.DataDir != "" {
		dataDir = cfg.DataDir
	}

	logDir := ""
	if cfg.LogsEnabled() {
		logDir = dataDir
	}
	logging.Init(logging.Config{
		LogDir: logDir,
		Level:  cfg.Logs.Level,
	})

	overlays := session.NewStore(dataDir)
	projectsDir := cfg.ProjectsDir()

	cache, err := session.OpenCache(filepath.Join(dataDir, "session_cache.db"))
	if err != nil {
		// The cache only saves re-parsing; scans work without it.
		cliLog.Warn("scan cache unavailable", "error", err)
		cache = nil
	}

	return &app{
		cfg:         cfg,
		projectsDir: projectsDir,
		overlays:    overlays,
		cache:       cache,
		scanner:     session.NewScanner(projectsDir, overlays, cache),
		reaper:      &session.Reaper{ProjectsDir: projectsDir, Overlays: overlays},
		selector: &selector.Selector{
			Command:        cfg.SelectorCommand(),
			ExtraArgs:      cfg.Selector.Args,
			PreviewCommand: selfCommand(),
		},
		launcher: &launcher.Launcher{Command: cfg.ClaudeCommand()},
	}
}

func (a *app) close() {
	if a.cache != nil {
		a.cache.Close()
	}
	logging.Shutdown()
}

// selfCommand returns how the selector should invoke this binary for the
// preview callback.
func selfCommand() string {
	exe, err := os.Executable()
	if err != nil {
		return "ccs"
	}
	return exe
}

func main() {
	initColorProfile()

	args := os.Args[1:]
	a := newApp()
	defer a.close()

	// The preview callback runs inside the selector, once per highlighted
	// line. It is not a user command: no reaping, no scanning.
	if len(args) > 0 && args[0] == "preview" {
		a.handlePreview(args[1:])
		return
	}

	// Every real dispatch purges ephemeral leftovers before scanning.
	a.reaper.Reap()

	if len(args) == 0 {
		a.handleResume(nil, false)
		return
	}

	switch args[0] {
	case "version", "--version", "-v":
		fmt.Printf("ccs v%s\n", Version)
	case "help", "--help", "-h":
		printHelp()
	case "resume":
		a.handleResume(args[1:], true)
	case "new":
		a.handleNew(args[1:])
	case "tmp":
		a.handleTmp(args[1:])
	case "tag":
		a.handleTag(args[1:])
	case "untag":
		a.handleUntag()
	case "pin":
		a.handlePin()
	case "rm":
		a.handleRm()
	case "list", "ls":
		a.handleList()
	case "search":
		a.handleSearch(args[1:])
	default:
		// Bare words resolve as a session id, tag, or id prefix;
		// anything unresolvable falls back to the resume picker.
		a.handleResume(args, false)
	}
}

// fatalf prints an error and exits. Used for usage errors only; runtime
// failures degrade per the best-effort policy instead.
func fatalf(format string, args ...any) {
	fmt.Fprintln(os.Stderr, warnStyle.Render(fmt.Sprintf(format, args...)))
	os.Exit(1)
}
