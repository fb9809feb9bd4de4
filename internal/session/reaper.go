package session

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ccs-tools/ccs/internal/logging"
)

var reapLog = logging.ForComponent(logging.CompReaper)

// Reaper deletes the log files of sessions registered as ephemeral.
// It runs at the start of every command dispatch, before the scanner.
type Reaper struct {
	ProjectsDir string
	Overlays    *Store
}

// Reap drains the ephemeral registry and removes every directory entry
// whose name (minus extension) matches a drained id, both directly under
// the log root and inside each project subdirectory. Missing targets are
// not errors: the session may already be gone, or a zero-turn session may
// never have produced a file. The registry is cleared by the drain
// regardless of per-id outcomes.
func (r *Reaper) Reap() {
	ids := r.Overlays.DrainEphemeral()
	if len(ids) == 0 {
		return
	}

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	patterns := []string{
		filepath.Join(r.ProjectsDir, "*"),
		filepath.Join(r.ProjectsDir, "*", "*"),
	}
	removed := 0
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		for _, path := range matches {
			base := filepath.Base(path)
			name := strings.TrimSuffix(base, filepath.Ext(base))
			if !wanted[name] {
				continue
			}
			if err := os.RemoveAll(path); err != nil {
				reapLog.Warn("failed to remove ephemeral session", "path", path, "error", err)
				continue
			}
			removed++
		}
	}
	if removed > 0 {
		reapLog.Debug("purged ephemeral sessions", "ids", len(ids), "removed", removed)
	}
}
