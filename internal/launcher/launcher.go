// Package launcher starts the external agent CLI. Launches are foreground
// and block until the agent exits; interrupt handling belongs to the child.
package launcher

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"

	"github.com/ccs-tools/ccs/internal/logging"
)

var launchLog = logging.ForComponent(logging.CompLauncher)

// Launcher builds and runs agent CLI invocations.
type Launcher struct {
	// Command is the agent binary or alias (e.g. "claude").
	Command string
}

// Resume launches the agent resuming an existing session. When dir exists
// it becomes the working directory; when it is recorded but gone, the
// launch falls back to the home directory with a warning rather than
// resuming inside a vanished checkout.
func (l *Launcher) Resume(id, dir string, extra []string) error {
	if dir != "" {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			home, herr := os.UserHomeDir()
			if herr == nil {
				fmt.Fprintf(os.Stderr, "Warning: directory no longer exists: %s\n", dir)
				fmt.Fprintf(os.Stderr, "  Falling back to: %s\n", home)
				dir = home
			} else {
				dir = ""
			}
		}
	}
	args := append([]string{"--resume", id}, extra...)
	return l.run(dir, args)
}

// StartNew launches the agent bound to a fresh session identifier.
func (l *Launcher) StartNew(id string, extra []string) error {
	args := append([]string{"--session-id", id}, extra...)
	return l.run("", args)
}

// run executes the agent with inherited stdio and waits for it to exit.
// SIGINT is ignored in the parent while the child runs so an interrupt
// reaches only the agent; cleanup after the launch still happens.
func (l *Launcher) run(dir string, args []string) error {
	launchLog.Info("launching agent", "command", l.Command, "args", args, "dir", dir)

	cmd := exec.Command(l.Command, args...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	signal.Ignore(os.Interrupt)
	defer signal.Reset(os.Interrupt)

	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			// The agent's own exit status is not our error to report.
			launchLog.Debug("agent exited non-zero", "error", err)
			return nil
		}
		return fmt.Errorf("launcher: run %s: %w", l.Command, err)
	}
	return nil
}
