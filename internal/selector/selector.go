package selector

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/ccs-tools/ccs/internal/logging"
)

var selLog = logging.ForComponent(logging.CompSelector)

// Selector runs the external interactive fuzzy-selection process. The
// handler blocks while it runs; there is no timeout — the selector is a
// foreground, user-driven subprocess.
type Selector struct {
	// Command is the selector binary (e.g. "fzf").
	Command string

	// ExtraArgs are user-configured arguments appended after the
	// protocol arguments.
	ExtraArgs []string

	// PreviewCommand is the executable the selector invokes per
	// highlighted line to render the detail view. Empty disables the
	// preview pane.
	PreviewCommand string
}

// Pick feeds the index lines to the selector and returns the full lines
// the user chose, one per slice element. A cancelled or empty selection
// returns nil with no error: cancellation is a no-op, not a failure.
func (s *Selector) Pick(lines []string, prompt string, multi bool) ([]string, error) {
	args := []string{
		"--ansi",
		"--delimiter", "\t",
		"--with-nth", "1,4,6",
		"--prompt", prompt,
	}
	if multi {
		args = append(args, "--multi")
	}
	if s.PreviewCommand != "" {
		args = append(args,
			"--preview", s.PreviewCommand+" preview {}",
			"--preview-window", "down,12,wrap",
		)
	}
	args = append(args, s.ExtraArgs...)

	cmd := exec.Command(s.Command, args...)
	cmd.Stdin = strings.NewReader(strings.Join(lines, "\n") + "\n")
	cmd.Stderr = os.Stderr

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Non-zero exit signals cancellation (esc, ctrl-c, no match).
			selLog.Debug("selector cancelled", "code", exitErr.ExitCode())
			return nil, nil
		}
		return nil, fmt.Errorf("selector: run %s: %w", s.Command, err)
	}

	var picked []string
	for _, line := range strings.Split(out.String(), "\n") {
		if strings.TrimSpace(line) != "" {
			picked = append(picked, line)
		}
	}
	return picked, nil
}

// PickOne is Pick restricted to a single selection.
func (s *Selector) PickOne(lines []string, prompt string) (string, bool, error) {
	picked, err := s.Pick(lines, prompt, false)
	if err != nil || len(picked) == 0 {
		return "", false, err
	}
	return picked[0], true, nil
}
