// Package selector implements the selection protocol between the session
// index and the external fuzzy-selection front end: a stable tab-delimited
// line format fed to the selector, and the preview (detail) renderer the
// selector calls back into per highlighted line.
package selector

import (
	"fmt"
	"strings"

	"github.com/ccs-tools/ccs/internal/session"
)

// fieldCount is the number of tab-separated fields per index line.
// The order — timestamp, session id, project key, project display, working
// directory, label — is part of the external contract: the selector is
// configured to display fields 1, 4 and 6, and the preview re-derives the
// session from fields 2, 3 and 5. Change it in both places or not at all.
const fieldCount = 6

// Selection is what a chosen index line decodes back into.
type Selection struct {
	ID         string
	ProjectKey string
	WorkingDir string
}

// FormatLine renders one record as an index line.
func FormatLine(r session.Record) string {
	fields := []string{
		r.Timestamp(),
		r.ID,
		r.ProjectKey,
		r.ProjectDisplay,
		r.WorkingDir,
		r.Label(),
	}
	for i, f := range fields {
		fields[i] = sanitizeField(f)
	}
	return strings.Join(fields, "\t")
}

// FormatIndex renders the whole index, one line per record, in order.
func FormatIndex(records []session.Record) []string {
	lines := make([]string, len(records))
	for i, r := range records {
		lines[i] = FormatLine(r)
	}
	return lines
}

// ParseLine decodes a selector result line back into a selection.
func ParseLine(line string) (Selection, error) {
	fields := strings.SplitN(strings.TrimSuffix(line, "\n"), "\t", fieldCount)
	if len(fields) != fieldCount {
		return Selection{}, fmt.Errorf("selector: malformed line: %d fields, want %d", len(fields), fieldCount)
	}
	return Selection{
		ID:         fields[1],
		ProjectKey: fields[2],
		WorkingDir: fields[4],
	}, nil
}

// sanitizeField keeps a field from breaking the line format.
func sanitizeField(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
