package selector

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ccs-tools/ccs/internal/session"
)

// recentSummaryCount caps how many summaries the detail view lists.
const recentSummaryCount = 10

var (
	pinStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	tagStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	projectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
)

// Preview expands one index line into the multi-line detail view. It
// re-derives the session from the line, re-reads the overlays, and
// re-reads the full log file; the index line itself carries no state
// beyond the three identifying fields.
func Preview(line string, overlays *session.Store, projectsDir string) (string, error) {
	sel, err := ParseLine(line)
	if err != nil {
		return "", err
	}

	logPath := filepath.Join(projectsDir, sel.ProjectKey, sel.ID+session.LogExt)
	detail := session.ReadDetail(logPath)

	var b strings.Builder
	if overlays.IsPinned(sel.ID) {
		b.WriteString(pinStyle.Render("★ PINNED") + "\n")
	}
	if tag := overlays.GetTag(sel.ID); tag != "" {
		b.WriteString(tagStyle.Render("Tag:     "+tag) + "\n")
	}
	b.WriteString(dimStyle.Render("Session: "+sel.ID) + "\n")
	b.WriteString(projectStyle.Render("Project: "+session.DecodeProjectKey(sel.ProjectKey, session.EncodedHome())) + "\n")
	if sel.WorkingDir != "" {
		b.WriteString(dimStyle.Render("CWD:     "+sel.WorkingDir) + "\n")
	}

	if detail.FirstMessage != "" {
		b.WriteString("\n" + headerStyle.Render("First message:") + "\n")
		b.WriteString("  " + detail.FirstMessage + "\n")
	}

	b.WriteString("\n" + headerStyle.Render("Topics:") + "\n")
	recent := detail.RecentSummaries(recentSummaryCount)
	if len(recent) == 0 {
		b.WriteString(dimStyle.Render("  (no summaries)") + "\n")
	} else {
		for _, s := range recent {
			b.WriteString("  • " + s + "\n")
		}
	}
	return b.String(), nil
}
